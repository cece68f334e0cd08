// Package activity registra eventos de auditoría en activity_log. Es best effort: un fallo
// se loguea y nunca hace fallar la operación de negocio.
package activity

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// Acciones registradas.
const (
	ActionInventoryAdd            = "inventory.add"
	ActionInventoryUpdate         = "inventory.update"
	ActionInventoryMove           = "inventory.move"
	ActionInventoryTransferUpload = "inventory.transfer_upload"
	ActionInventoryTransferForm   = "inventory.transfer_form"
	ActionUserCreate              = "user.create"
	ActionUserUpdate              = "user.update"
	ActionUserSuspend             = "user.suspend"
	ActionUserUnsuspend           = "user.unsuspend"
	ActionUserPermissions         = "user.permissions"
	ActionSectorCreate            = "sector.create"
	ActionSectorUpdate            = "sector.update"
	ActionSectorDelete            = "sector.delete"
	ActionTaskCreate              = "task.create"
	ActionTaskUpdate              = "task.update"
	ActionBuildingCreate          = "building.create"
	ActionBuildingDelete          = "building.delete"
	ActionRoomCreate              = "room.create"
	ActionRoomUpdate              = "room.update"
	ActionRoomDelete              = "room.delete"
)

// Recorder escribe en la bitácora. Un Recorder nil o sin repositorio no hace nada.
type Recorder struct {
	repo repository.ActivityRepository
	log  *logger.Logger
}

// NewRecorder construye el recorder. repo puede ser nil (base core no disponible).
func NewRecorder(repo repository.ActivityRepository, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, log: log}
}

// Record registra la acción.
func (r *Recorder) Record(ctx context.Context, userID *int64, action, entityType string, entityID int64, meta map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	entry := &entity.ActivityEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       meta,
	}
	if err := r.repo.Record(ctx, entry); err != nil {
		r.log.Warn().Err(err).Str("action", action).Int64("entity_id", entityID).Msg("activity log: no se pudo registrar")
	}
}
