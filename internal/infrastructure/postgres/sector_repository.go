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

var _ repository.SectorRepository = (*SectorRepo)(nil)

// SectorRepo directorio de sectores (base core).
type SectorRepo struct {
	q Querier
}

// NewSectorRepository construye el adaptador.
func NewSectorRepository(q Querier) *SectorRepo {
	return &SectorRepo{q: q}
}

const sectorSelect = `
	SELECT id, key_slug, name, description, contact_email, contact_phone, color_hex, manager_user_id
	FROM sectors`

// Create inserta el sector. Slug duplicado -> ErrDuplicate.
func (r *SectorRepo) Create(ctx context.Context, s *entity.Sector) error {
	query := `
		INSERT INTO sectors (key_slug, name, description, contact_email, contact_phone, color_hex, manager_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.Slug, s.Name, nullIfEmpty(s.Description), nullIfEmpty(s.ContactEmail),
		nullIfEmpty(s.ContactPhone), nullIfEmpty(s.ColorHex), s.ManagerUserID,
	).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q", domain.ErrDuplicate, s.Slug)
		}
		return fmt.Errorf("create sector: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *SectorRepo) GetByID(ctx context.Context, id int64) (*entity.Sector, error) {
	s, err := scanSector(r.q.QueryRow(ctx, sectorSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return s, nil
}

// Update reemplaza todos los campos editables.
func (r *SectorRepo) Update(ctx context.Context, s *entity.Sector) error {
	query := `
		UPDATE sectors
		SET key_slug = $2, name = $3, description = $4, contact_email = $5, contact_phone = $6,
			color_hex = $7, manager_user_id = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Slug, s.Name, nullIfEmpty(s.Description), nullIfEmpty(s.ContactEmail),
		nullIfEmpty(s.ContactPhone), nullIfEmpty(s.ColorHex), s.ManagerUserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q", domain.ErrDuplicate, s.Slug)
		}
		return fmt.Errorf("update sector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el sector. Si hay usuarios que lo referencian -> ErrInUse.
func (r *SectorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete sector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List sectores ordenados por nombre.
func (r *SectorRepo) List(ctx context.Context) ([]*entity.Sector, error) {
	rows, err := r.q.Query(ctx, sectorSelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// NamesByIDs id -> nombre para los ids pedidos. Ids inexistentes no aparecen.
func (r *SectorRepo) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, name FROM sectors WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("sector names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan sector name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

func scanSector(row pgx.Row) (*entity.Sector, error) {
	var s entity.Sector
	var desc, email, phone, color *string
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &desc, &email, &phone, &color, &s.ManagerUserID); err != nil {
		return nil, err
	}
	s.Description = deref(desc)
	s.ContactEmail = deref(email)
	s.ContactPhone = deref(phone)
	s.ColorHex = deref(color)
	return &s, nil
}
