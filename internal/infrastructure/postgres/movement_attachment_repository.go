package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.MovementAttachmentRepository = (*MovementAttachmentRepo)(nil)

// MovementAttachmentRepo adjuntos de movimientos (tabla inventory_movement_files).
type MovementAttachmentRepo struct {
	q Querier
}

// NewMovementAttachmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementAttachmentRepository(q Querier) *MovementAttachmentRepo {
	return &MovementAttachmentRepo{q: q}
}

// Create inserta el adjunto.
func (r *MovementAttachmentRepo) Create(ctx context.Context, a *entity.MovementAttachment) error {
	query := `
		INSERT INTO inventory_movement_files (movement_id, file_key, file_url, mime, label, kind, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at`
	err := r.q.QueryRow(ctx, query,
		a.MovementID, a.FileKey, a.FileURL, a.Mime, nullIfEmpty(a.Label), a.Kind, a.UploadedBy,
	).Scan(&a.ID, &a.UploadedAt)
	if err != nil {
		return fmt.Errorf("create movement attachment: %w", err)
	}
	return nil
}

// ListByMovement adjuntos en orden de carga.
func (r *MovementAttachmentRepo) ListByMovement(ctx context.Context, movementID int64) ([]entity.MovementAttachment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, movement_id, file_key, file_url, mime, label, kind, uploaded_by, uploaded_at
		FROM inventory_movement_files
		WHERE movement_id = $1
		ORDER BY uploaded_at, id`, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement attachments: %w", err)
	}
	defer rows.Close()
	var list []entity.MovementAttachment
	for rows.Next() {
		var a entity.MovementAttachment
		var label *string
		if err := rows.Scan(&a.ID, &a.MovementID, &a.FileKey, &a.FileURL, &a.Mime, &label, &a.Kind, &a.UploadedBy, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan movement attachment: %w", err)
		}
		a.Label = deref(label)
		list = append(list, a)
	}
	return list, rows.Err()
}
