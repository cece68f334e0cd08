package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

const contentTypePDF = "application/pdf"

// DocumentService genera el formulario de confirmación de un traslado y lo guarda en el
// blob storage. Nunca toca la cantidad ni el estado del movimiento.
type DocumentService struct {
	movements repository.InventoryMovementRepository
	renderer  FormRenderer
	store     BlobStore
	labels    *Labeler
	log       *logger.Logger
	now       func() time.Time
}

// NewDocumentService construye el servicio.
func NewDocumentService(
	movements repository.InventoryMovementRepository,
	renderer FormRenderer,
	store BlobStore,
	labels *Labeler,
	log *logger.Logger,
) *DocumentService {
	if log == nil {
		log = logger.Nop()
	}
	if labels == nil {
		labels = NewLabeler(nil, nil, log)
	}
	return &DocumentService{
		movements: movements,
		renderer:  renderer,
		store:     store,
		labels:    labels,
		log:       log,
		now:       time.Now,
	}
}

// GenerateForMovement renderiza, sube y registra un formulario nuevo para el movimiento.
// Devuelve (nil, nil) si el movimiento no requiere firma. Cada llamada produce una clave
// nueva; los fallos se reportan como ErrDocumentGenerationFailed.
func (s *DocumentService) GenerateForMovement(ctx context.Context, movementID int64) (*entity.TransferForm, error) {
	mov, err := s.movements.GetDetail(ctx, movementID)
	if err != nil {
		return nil, s.fail(movementID, "cargar movimiento", err)
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if !mov.RequiresSignature {
		return nil, nil
	}
	if s.renderer == nil || s.store == nil {
		return nil, s.fail(movementID, "configuración", fmt.Errorf("renderer o storage no configurado"))
	}

	data := s.formData(ctx, mov)
	pdf, err := s.renderer.RenderTransferForm(ctx, data)
	if err != nil {
		return nil, s.fail(movementID, "renderizar", err)
	}

	key := FormKey(movementID, data.GeneratedAt)
	if err := s.store.Put(ctx, key, pdf, contentTypePDF); err != nil {
		return nil, s.fail(movementID, "subir", err)
	}
	url := s.store.URL(key)
	if err := s.movements.SetTransferForm(ctx, movementID, key, url); err != nil {
		return nil, s.fail(movementID, "registrar", err)
	}
	s.log.Info().Int64("movement_id", movementID).Str("key", key).Msg("formulario de traslado generado")
	return &entity.TransferForm{MovementID: movementID, Key: key, URL: url}, nil
}

func (s *DocumentService) formData(ctx context.Context, mov *entity.MovementDetail) *FormData {
	names := s.labels.SectorNames(ctx, mov.SourceSectorID, mov.TargetSectorID)
	return &FormData{
		MovementID:     mov.ID,
		ItemName:       mov.ItemName,
		ItemSKU:        mov.ItemSKU,
		Direction:      mov.Direction,
		Amount:         mov.Amount,
		SourceSector:   SectorLabel(names, mov.SourceSectorID),
		TargetSector:   SectorLabel(names, mov.TargetSectorID),
		SourceLocation: mov.SourceLocation,
		TargetLocation: mov.TargetLocation,
		Reason:         mov.Reason,
		Notes:          mov.Notes,
		Actor:          s.labels.UserLabel(ctx, mov.UserID),
		MovedAt:        mov.CreatedAt,
		GeneratedAt:    s.now(),
	}
}

func (s *DocumentService) fail(movementID int64, step string, cause error) error {
	s.log.Error().Err(cause).Int64("movement_id", movementID).Str("step", step).Msg("generación de formulario fallida")
	return fmt.Errorf("%w: %s", domain.ErrDocumentGenerationFailed, step)
}

// FormKey clave del PDF: única por generación.
func FormKey(movementID int64, at time.Time) string {
	return fmt.Sprintf("inventory/transfers/%d/transfer-%s-%s.pdf",
		movementID, at.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}
