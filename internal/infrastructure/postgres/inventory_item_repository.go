package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, sku, name, sector_id, quantity, location, created_at, updated_at`

// Create persiste un artículo y completa ID y timestamps.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (sku, name, sector_id, quantity, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		nullIfEmpty(item.SKU), item.Name, item.SectorID, item.Quantity, nullIfEmpty(item.Location),
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ValidationErrors{"Quantity cannot be negative."}
		}
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID. (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryItemRepo) getOne(ctx context.Context, query string, id int64) (*entity.InventoryItem, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// Update actualiza los campos descriptivos y el sector. La cantidad solo cambia vía ApplyDelta.
func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $2, sku = $3, location = $4, sector_id = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		item.ID, item.Name, nullIfEmpty(item.SKU), nullIfEmpty(item.Location), item.SectorID,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

// ApplyDelta suma delta en una sola sentencia condicionada a que el resultado no sea negativo.
func (r *InventoryItemRepo) ApplyDelta(ctx context.Context, id int64, delta int) (int, error) {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity`
	var qty int
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Sin fila: o no existe o la cantidad quedaría negativa.
			var exists bool
			if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)`, id).Scan(&exists); err != nil {
				return 0, fmt.Errorf("apply delta: %w", err)
			}
			if !exists {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInsufficientStock
		}
		if isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("apply delta: %w", err)
	}
	return qty, nil
}

// List lista artículos visibles según el filtro de sector, ordenados por nombre.
func (r *InventoryItemRepo) List(ctx context.Context, filter access.SectorFilter) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	var args []any
	switch {
	case filter.All:
	case filter.Unassigned:
		query += ` WHERE sector_id IS NULL`
	case filter.SectorID != nil:
		query += ` WHERE sector_id = $1`
		args = append(args, *filter.SectorID)
	default:
		return nil, nil
	}
	query += ` ORDER BY name, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// CountBySector cuántos artículos referencian el sector.
func (r *InventoryItemRepo) CountBySector(ctx context.Context, sectorID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items WHERE sector_id = $1`, sectorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items by sector: %w", err)
	}
	return n, nil
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	var sku, location *string
	if err := row.Scan(&it.ID, &sku, &it.Name, &it.SectorID, &it.Quantity, &location, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.SKU = deref(sku)
	it.Location = deref(location)
	return &it, nil
}
