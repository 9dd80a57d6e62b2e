package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrmgo/internal/domain/auth"
	"hrmgo/internal/platform/db"
)

// Options names the bootstrap tenant and its first HR account.
type Options struct {
	TenantName    string
	AdminEmail    string
	AdminPassword string
	Language      string
}

// Run inserts the static permission list, the default roles and the admin
// user. Every statement is idempotent so Run executes on each startup.
func Run(ctx context.Context, conn db.DBTX, opts Options) error {
	tenantID, err := ensureTenant(ctx, conn, opts.TenantName)
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	if err := ensurePermissions(ctx, conn); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	roleIDs, err := ensureRoles(ctx, conn, tenantID)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	if err := ensureRolePermissions(ctx, conn, roleIDs); err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}

	if err := ensureAdminUser(ctx, conn, tenantID, roleIDs[auth.RoleHR], opts); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func ensureTenant(ctx context.Context, conn db.DBTX, name string) (string, error) {
	var id string
	err := conn.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = conn.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, conn db.DBTX) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := conn.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return fmt.Errorf("%s: %w", perm, err)
		}
	}
	return nil
}

func roleNames() []string {
	names := make([]string, 0, len(auth.RolePermissions))
	for name := range auth.RolePermissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ensureRoles(ctx context.Context, conn db.DBTX, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for _, roleName := range roleNames() {
		var id string
		err := conn.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		err = conn.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, conn db.DBTX, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := conn.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return err
		}
		permMap[key] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, roleName := range roleNames() {
		roleID := roleIDs[roleName]
		for _, permKey := range auth.RolePermissions[roleName] {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := conn.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, conn db.DBTX, tenantID, roleID string, opts Options) error {
	if strings.TrimSpace(opts.AdminEmail) == "" || strings.TrimSpace(opts.AdminPassword) == "" {
		return nil
	}

	var id string
	err := conn.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, opts.AdminEmail).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}

	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	_, err = conn.Exec(ctx, "INSERT INTO users (tenant_id, email, password_hash, role_id, language) VALUES ($1, $2, $3, $4, $5)", tenantID, opts.AdminEmail, hash, roleID, lang)
	return err
}
