package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.UserMirrorRepository = (*UserMirrorRepo)(nil)

// UserMirrorRepo espejo de usuarios en la base apps. Mismo ID que en core.
type UserMirrorRepo struct {
	q Querier
}

// NewUserMirrorRepository construye el adaptador del espejo (base apps).
func NewUserMirrorRepository(q Querier) *UserMirrorRepo {
	return &UserMirrorRepo{q: q}
}

const mirrorSelect = `
	SELECT id, email, name, password_hash, role, sector_id, suspended_at, created_at
	FROM users`

// Upsert inserta o reemplaza la fila espejo del usuario.
func (r *UserMirrorRepo) Upsert(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, sector_id, suspended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			sector_id = EXCLUDED.sector_id,
			suspended_at = EXCLUDED.suspended_at,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.SectorID, u.SuspendedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("upsert user mirror: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *UserMirrorRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, mirrorSelect+` WHERE id = $1`, id)
}

// GetByEmail (nil, nil) si no existe.
func (r *UserMirrorRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, mirrorSelect+` WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *UserMirrorRepo) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.SectorID, &u.SuspendedAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user mirror: %w", err)
	}
	return &u, nil
}
