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

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo registro autoritativo de usuarios en la base core.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios (base core).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const coreUserSelect = `
	SELECT u.id, u.email, u.name, u.password_hash, r.key_slug, u.sector_id,
		u.suspended_at, u.suspended_by, u.created_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// Create persiste un nuevo usuario. El rol se resuelve por slug.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role_id, sector_id)
		SELECT $1, $2, $3, r.id, $5 FROM roles r WHERE r.key_slug = $4
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role, user.SectorID,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.ValidationErrors{"Invalid role."}
		case isUniqueViolation(err):
			return domain.ErrEmailAlreadyExists
		case isForeignKeyViolation(err):
			return domain.ValidationErrors{"Invalid sector."}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanCoreUser(r.q.QueryRow(ctx, coreUserSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanCoreUser(r.q.QueryRow(ctx, coreUserSelect+` WHERE lower(u.email) = lower($1) LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza email, nombre, rol, sector y hash de contraseña.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users u
		SET email = $2, name = $3, password_hash = $4, sector_id = $6, updated_at = now(),
			role_id = (SELECT id FROM roles WHERE key_slug = $5)
		WHERE u.id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.SectorID,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrEmailAlreadyExists
		case isForeignKeyViolation(err):
			return domain.ValidationErrors{"Invalid sector."}
		case hasCode(err, "23502"): // role_id NULL: slug inexistente
			return domain.ValidationErrors{"Invalid role."}
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetSuspended marca o limpia la suspensión con fecha y actor.
func (r *UserRepo) SetSuspended(ctx context.Context, id int64, suspended bool, by *int64) error {
	var query string
	var args []any
	if suspended {
		query = `UPDATE users SET suspended_at = now(), suspended_by = $2, updated_at = now() WHERE id = $1`
		args = []any{id, by}
	} else {
		query = `UPDATE users SET suspended_at = NULL, suspended_by = NULL, updated_at = now() WHERE id = $1`
		args = []any{id}
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios con filtros opcionales de rol y sector.
func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	query := coreUserSelect + ` WHERE 1=1`
	var args []any
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(` AND r.key_slug = $%d`, len(args))
	}
	if filter.SectorID != nil {
		args = append(args, *filter.SectorID)
		query += fmt.Sprintf(` AND u.sector_id = $%d`, len(args))
	}
	query += ` ORDER BY u.name, u.email`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanCoreUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Delete elimina un usuario por ID. Se usa como compensación al fallar el alta en el espejo.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CountBySector cuántos usuarios pertenecen al sector.
func (r *UserRepo) CountBySector(ctx context.Context, sectorID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE sector_id = $1`, sectorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users by sector: %w", err)
	}
	return n, nil
}

// ListRoles catálogo de roles ordenado por etiqueta.
func (r *UserRepo) ListRoles(ctx context.Context) ([]entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, key_slug, label FROM roles ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Slug, &role.Label); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

func scanCoreUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.SectorID,
		&u.SuspendedAt, &u.SuspendedBy, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
