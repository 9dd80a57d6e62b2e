package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/core"
	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Users interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	Permissions(ctx context.Context, roleID string) ([]string, error)
	UserLanguage(ctx context.Context, userID string) (string, error)
	SetUserLanguage(ctx context.Context, userID, lang string) error
}

type Profiles interface {
	GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (core.Employee, error)
}

type Handler struct {
	Users    Users
	Profiles Profiles
	Secret   string
	Bundle   *i18n.Bundle
	Audit    shared.Auditor
}

func NewHandler(users Users, profiles Profiles, secret string, bundle *i18n.Bundle, auditor shared.Auditor) *Handler {
	return &Handler{Users: users, Profiles: profiles, Secret: secret, Bundle: bundle, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/me", h.HandleMe)
	r.Get("/me/language", h.HandleGetLanguage)
	r.Put("/me/language", h.HandleSetLanguage)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	TenantID string `json:"tenantId"`
	RoleID   string `json:"roleId"`
	RoleName string `json:"role"`
	Language string `json:"language,omitempty"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Users.FindActiveUserByEmail(r.Context(), email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	claims := auth.Claims{UserID: user.ID, TenantID: user.TenantID, RoleID: user.RoleID, RoleName: user.RoleName}
	token, err := auth.GenerateToken(h.Secret, claims, auth.TokenTTL)
	if err != nil {
		zap.L().Error("token issue failed", zap.String("userId", user.ID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		zap.L().Warn("update last_login failed", zap.String("userId", user.ID), zap.Error(err))
	}
	shared.RecordAudit(r, h.Audit, claims.User(), "auth.login", "user", user.ID, nil, nil)

	api.Success(w, map[string]any{
		"token": token,
		"user": userView{
			ID:       user.ID,
			Email:    user.Email,
			TenantID: user.TenantID,
			RoleID:   user.RoleID,
			RoleName: user.RoleName,
			Language: user.Language,
		},
	}, middleware.GetRequestID(r.Context()))
}

// HandleLogout is stateless: tokens expire on their own and clients drop them.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		shared.RecordAudit(r, h.Audit, user, "auth.logout", "user", user.UserID, nil, nil)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	perms, err := h.Users.Permissions(r.Context(), user.RoleID)
	if err != nil {
		zap.L().Warn("permission lookup failed", zap.String("roleId", user.RoleID), zap.Error(err))
		perms = []string{}
	}
	lang, err := h.Users.UserLanguage(r.Context(), user.UserID)
	if err != nil {
		zap.L().Warn("language lookup failed", zap.String("userId", user.UserID), zap.Error(err))
	}

	var employee *core.Employee
	if h.Profiles != nil {
		emp, err := h.Profiles.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
		switch {
		case err == nil:
			core.FilterEmployeeFields(&emp, user, true)
			employee = &emp
		case !errors.Is(err, core.ErrNotFound):
			zap.L().Warn("profile lookup failed", zap.String("userId", user.UserID), zap.Error(err))
		}
	}

	api.Success(w, map[string]any{
		"user": userView{
			ID:       user.UserID,
			TenantID: user.TenantID,
			RoleID:   user.RoleID,
			RoleName: user.RoleName,
			Language: lang,
		},
		"permissions": perms,
		"employee":    employee,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGetLanguage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	lang, err := h.Users.UserLanguage(r.Context(), user.UserID)
	if err != nil || lang == "" {
		lang = i18n.Baseline
	}
	api.Success(w, map[string]string{"language": lang}, middleware.GetRequestID(r.Context()))
}

// HandleSetLanguage stores the user's language and mirrors it in the
// language cookie so the next request negotiates it.
func (h *Handler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	lang := strings.TrimSpace(payload.Language)
	if h.Bundle != nil {
		if _, err := h.Bundle.Catalog(lang); err != nil {
			api.Fail(w, http.StatusBadRequest, "unknown_language", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		lang = h.Bundle.Translator(lang).Language()
	}

	before, _ := h.Users.UserLanguage(r.Context(), user.UserID)
	if err := h.Users.SetUserLanguage(r.Context(), user.UserID, lang); err != nil {
		zap.L().Error("language update failed", zap.String("userId", user.UserID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "language_update_failed", "failed to update language", middleware.GetRequestID(r.Context()))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	shared.RecordAudit(r, h.Audit, user, "auth.language.update", "user", user.UserID,
		map[string]string{"language": before}, map[string]string{"language": lang})
	api.Success(w, map[string]string{"language": lang}, middleware.GetRequestID(r.Context()))
}
