package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"hrmgo/internal/domain/attendance"
	"hrmgo/internal/domain/audit"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/core"
	"hrmgo/internal/domain/performance"
	"hrmgo/internal/domain/policies"
	"hrmgo/internal/domain/recruitment"
	"hrmgo/internal/platform/config"
	"hrmgo/internal/platform/crypto"
	"hrmgo/internal/platform/db"
	"hrmgo/internal/platform/db/seed"
	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/platform/logger"
	"hrmgo/internal/platform/metrics"
	attendancehandler "hrmgo/internal/transport/http/handlers/attendance"
	audithandler "hrmgo/internal/transport/http/handlers/audit"
	authhandler "hrmgo/internal/transport/http/handlers/auth"
	corehandler "hrmgo/internal/transport/http/handlers/core"
	i18nhandler "hrmgo/internal/transport/http/handlers/i18n"
	performancehandler "hrmgo/internal/transport/http/handlers/performance"
	policieshandler "hrmgo/internal/transport/http/handlers/policies"
	recruitmenthandler "hrmgo/internal/transport/http/handlers/recruitment"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

// Conn is the database surface the router needs: stores, transactions and
// the readiness probe. *pgxpool.Pool and pgxmock pools satisfy it.
type Conn interface {
	db.TxBeginner
	Ping(ctx context.Context) error
}

type App struct {
	Config  config.Config
	DB      Conn
	Log     *logger.Logger
	Metrics *metrics.Collector
	Bundle  *i18n.Bundle
	Cipher  *crypto.Cipher

	pool *pgxpool.Pool
}

// New connects to the database, applies migrations and the seed as
// configured, and builds the router.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	if !cipher.Configured() {
		log.Warnw("DATA_ENCRYPTION_KEY not set, bank accounts are stored in plain text")
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, db.Migrations()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		err := seed.Run(ctx, pool, seed.Options{
			TenantName:    cfg.SeedTenantName,
			AdminEmail:    cfg.SeedAdminEmail,
			AdminPassword: cfg.SeedAdminPassword,
			Language:      cfg.DefaultLanguage,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	bundle, err := i18n.Default()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}
	if !bundle.Has(cfg.DefaultLanguage) {
		log.Warnw("default language has no catalog, using baseline", "language", cfg.DefaultLanguage)
	}

	return &App{Config: cfg, DB: pool, Log: log, Metrics: metrics.New(), Bundle: bundle, Cipher: cipher, pool: pool}, nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log.Zap())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("hrmgo server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Router wires every store and handler onto one chi router.
func (a *App) Router() http.Handler {
	cfg := a.Config
	limits := shared.PageLimits{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize}

	authStore := auth.NewStore(a.DB)
	coreStore := core.NewStore(a.DB, a.Cipher)
	auditService := audit.New(a.DB)

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Log))
	if cfg.MetricsEnabled && a.Metrics != nil {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Language(a.Bundle))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			zap.L().Warn("readiness ping failed", zap.Error(err))
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && a.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		r.Use(middleware.Auth(cfg.JWTSecret, authStore))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authStore, coreStore, cfg.JWTSecret, a.Bundle, auditService).RegisterRoutes(r)
		i18nhandler.NewHandler(a.Bundle).RegisterRoutes(r)

		corehandler.NewHandler(coreStore, authStore, auditService, a.Metrics, limits).RegisterRoutes(r)
		performancehandler.NewHandler(
			performance.NewService(performance.NewStore(a.DB)), authStore, auditService, a.Metrics, limits,
		).RegisterRoutes(r)
		recruitmenthandler.NewHandler(recruitment.NewStore(a.DB), authStore, auditService, a.Metrics, limits).RegisterRoutes(r)
		attendancehandler.NewHandler(attendance.NewStore(a.DB), coreStore, authStore, auditService, a.Metrics, limits).RegisterRoutes(r)
		policieshandler.NewHandler(policies.NewStore(a.DB), authStore, auditService, a.Metrics, limits).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore, a.Metrics, limits).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if err == nil || os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
