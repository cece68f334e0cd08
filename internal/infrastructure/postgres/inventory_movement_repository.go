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

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `m.id, m.item_id, m.direction, m.amount, m.reason, m.notes, m.user_id,
	m.source_sector_id, m.target_sector_id, m.source_location, m.target_location,
	m.requires_signature, m.transfer_status, m.transfer_form_key, m.transfer_form_url, m.ts`

// Create persiste un movimiento y completa ID y CreatedAt.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (item_id, direction, amount, reason, notes, user_id,
			source_sector_id, target_sector_id, source_location, target_location,
			requires_signature, transfer_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, ts`
	err := r.q.QueryRow(ctx, query,
		m.ItemID, m.Direction, m.Amount, nullIfEmpty(m.Reason), nullIfEmpty(m.Notes), m.UserID,
		m.SourceSectorID, m.TargetSectorID, nullIfEmpty(m.SourceLocation), nullIfEmpty(m.TargetLocation),
		m.RequiresSignature, m.TransferStatus,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetDetail movimiento con datos del artículo. (nil, nil) si no existe.
func (r *InventoryMovementRepo) GetDetail(ctx context.Context, id int64) (*entity.MovementDetail, error) {
	query := `
		SELECT ` + movementColumns + `, i.name, i.sku, i.location, i.sector_id
		FROM inventory_movements m
		JOIN inventory_items i ON i.id = m.item_id
		WHERE m.id = $1`
	d, err := scanDetail(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement detail: %w", err)
	}
	return d, nil
}

// ListRecentByItem últimos movimientos de un artículo, más recientes primero.
func (r *InventoryMovementRepo) ListRecentByItem(ctx context.Context, itemID int64, limit int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements m
		WHERE m.item_id = $1
		ORDER BY m.ts DESC, m.id DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListPendingTransfers traslados que requieren firma y siguen pendientes, visibles con el filtro.
// El filtro aplica al sector del artículo.
func (r *InventoryMovementRepo) ListPendingTransfers(ctx context.Context, filter access.SectorFilter, limit int) ([]*entity.MovementDetail, error) {
	query := `
		SELECT ` + movementColumns + `, i.name, i.sku, i.location, i.sector_id
		FROM inventory_movements m
		JOIN inventory_items i ON i.id = m.item_id
		WHERE m.requires_signature AND m.transfer_status = 'pending'`
	args := []any{}
	switch {
	case filter.All:
	case filter.Unassigned:
		query += ` AND i.sector_id IS NULL`
	case filter.SectorID != nil:
		args = append(args, *filter.SectorID)
		query += fmt.Sprintf(` AND i.sector_id = $%d`, len(args))
	default:
		return nil, nil
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY m.ts DESC, m.id DESC LIMIT $%d`, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transfer: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// MarkSigned avanza pending -> signed. Nunca retrocede: la condición en el WHERE hace la
// operación idempotente.
func (r *InventoryMovementRepo) MarkSigned(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_movements SET transfer_status = 'signed'
		WHERE id = $1 AND transfer_status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("mark movement signed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetTransferForm guarda la referencia al último formulario generado. No toca cantidades ni estado.
func (r *InventoryMovementRepo) SetTransferForm(ctx context.Context, id int64, key, url string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_movements SET transfer_form_key = $2, transfer_form_url = $3
		WHERE id = $1`, id, key, url)
	if err != nil {
		return fmt.Errorf("set transfer form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	dst, finish := movementDest(&m)
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	finish()
	return &m, nil
}

func scanDetail(row pgx.Row) (*entity.MovementDetail, error) {
	var d entity.MovementDetail
	dst, finish := movementDest(&d.InventoryMovement)
	var sku, location *string
	dst = append(dst, &d.ItemName, &sku, &location, &d.ItemSectorID)
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	finish()
	d.ItemSKU = deref(sku)
	d.ItemLocation = deref(location)
	return &d, nil
}

// movementDest destinos de Scan para movementColumns; finish copia los nullables al struct.
func movementDest(m *entity.InventoryMovement) ([]any, func()) {
	var reason, notes, srcLoc, dstLoc, formKey, formURL *string
	dst := []any{
		&m.ID, &m.ItemID, &m.Direction, &m.Amount, &reason, &notes, &m.UserID,
		&m.SourceSectorID, &m.TargetSectorID, &srcLoc, &dstLoc,
		&m.RequiresSignature, &m.TransferStatus, &formKey, &formURL, &m.CreatedAt,
	}
	return dst, func() {
		m.Reason = deref(reason)
		m.Notes = deref(notes)
		m.SourceLocation = deref(srcLoc)
		m.TargetLocation = deref(dstLoc)
		m.TransferFormKey = deref(formKey)
		m.TransferFormURL = deref(formURL)
	}
}
