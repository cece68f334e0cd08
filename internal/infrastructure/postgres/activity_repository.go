package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo bitácora activity_log (base core).
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador.
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Record inserta una entrada.
func (r *ActivityRepo) Record(ctx context.Context, e *entity.ActivityEntry) error {
	var meta []byte
	if len(e.Meta) > 0 {
		b, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("marshal activity meta: %w", err)
		}
		meta = b
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO activity_log (user_id, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.UserID, e.Action, e.EntityType, e.EntityID, meta,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}
