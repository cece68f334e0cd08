package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.PermissionOverrideRepository = (*PermissionOverrideRepo)(nil)

// PermissionOverrideRepo overrides por usuario y defaults por rol (base core).
type PermissionOverrideRepo struct {
	q Querier
}

// NewPermissionOverrideRepository construye el adaptador.
func NewPermissionOverrideRepository(q Querier) *PermissionOverrideRepo {
	return &PermissionOverrideRepo{q: q}
}

// ListByUser clave -> concedido para el usuario.
func (r *PermissionOverrideRepo) ListByUser(ctx context.Context, userID int64) (map[string]bool, error) {
	rows, err := r.q.Query(ctx, `SELECT permission_key, granted FROM user_permissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user permissions: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var key string
		var granted bool
		if err := rows.Scan(&key, &granted); err != nil {
			return nil, fmt.Errorf("scan user permission: %w", err)
		}
		out[key] = granted
	}
	return out, rows.Err()
}

// Upsert una fila por (usuario, clave).
func (r *PermissionOverrideRepo) Upsert(ctx context.Context, userID int64, key string, granted bool) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_permissions (user_id, permission_key, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, permission_key) DO UPDATE SET granted = EXCLUDED.granted`,
		userID, key, granted)
	if err != nil {
		return fmt.Errorf("upsert user permission: %w", err)
	}
	return nil
}

// Delete elimina el override (el usuario vuelve a heredar del rol).
func (r *PermissionOverrideRepo) Delete(ctx context.Context, userID int64, key string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission_key = $2`, userID, key)
	if err != nil {
		return fmt.Errorf("delete user permission: %w", err)
	}
	return nil
}

// beginner lo cumplen *pgxpool.Pool y pgx.Tx (este último abre un savepoint).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Apply upserts y borrados de un guardado de permisos en una transacción.
func (r *PermissionOverrideRepo) Apply(ctx context.Context, userID int64, set map[string]bool, clear []string) error {
	b, ok := r.q.(beginner)
	if !ok {
		return fmt.Errorf("apply user permissions: el querier no admite transacciones")
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin user permissions: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inTx := &PermissionOverrideRepo{q: tx}
	for _, key := range clear {
		if err := inTx.Delete(ctx, userID, key); err != nil {
			return err
		}
	}
	for key, granted := range set {
		if err := inTx.Upsert(ctx, userID, key, granted); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit user permissions: %w", err)
	}
	return nil
}

// RoleDefaults filas de role_permissions.
func (r *PermissionOverrideRepo) RoleDefaults(ctx context.Context) (map[string]map[string]bool, error) {
	rows, err := r.q.Query(ctx, `SELECT role_slug, permission_key, granted FROM role_permissions`)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()
	out := map[string]map[string]bool{}
	for rows.Next() {
		var role, key string
		var granted bool
		if err := rows.Scan(&role, &key, &granted); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		if out[role] == nil {
			out[role] = map[string]bool{}
		}
		out[role][key] = granted
	}
	return out, rows.Err()
}
