package transfer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// DefaultMaxUploadBytes límite por archivo (80 MiB).
const DefaultMaxUploadBytes int64 = 80 << 20

// allowedTypes mime aceptado -> extensión almacenada.
var allowedTypes = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/heic":      "heic",
	"image/heif":      "heic",
}

// extensionTypes extensión del nombre de archivo -> mime, usado si el sniffing no es concluyente.
var extensionTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heic",
}

// UploadInput archivo recibido para un movimiento.
type UploadInput struct {
	MovementID int64
	Filename   string
	Data       []byte
	Kind       string // signature (por defecto) | photo | other
	Label      string
}

// UseCase flujo de traslados: carga de adjuntos (firma) y regeneración del formulario.
type UseCase struct {
	movements repository.InventoryMovementRepository
	txRunner  TxRunner
	store     BlobStore
	documents *DocumentService
	activity  *activity.Recorder
	log       *logger.Logger
	maxBytes  int64
}

// NewUseCase construye el caso de uso. maxBytes <= 0 usa DefaultMaxUploadBytes.
func NewUseCase(
	movements repository.InventoryMovementRepository,
	txRunner TxRunner,
	store BlobStore,
	documents *DocumentService,
	recorder *activity.Recorder,
	log *logger.Logger,
	maxBytes int64,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UseCase{
		movements: movements,
		txRunner:  txRunner,
		store:     store,
		documents: documents,
		activity:  recorder,
		log:       log,
		maxBytes:  maxBytes,
	}
}

// MaxBytes límite configurado por archivo.
func (uc *UseCase) MaxBytes() int64 { return uc.maxBytes }

// UploadAttachment autoriza contra el sector del ítem antes de mirar el archivo; después lo
// valida, lo guarda, registra el adjunto y, si es una firma, avanza el traslado de pending a
// signed en la misma transacción. Es la única operación que firma un traslado.
func (uc *UseCase) UploadAttachment(ctx context.Context, actor *access.Actor, in UploadInput) (*dto.UploadAttachmentResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanSign() {
		uc.log.Warn().Int64("actor_id", actor.ID()).Int64("movement_id", in.MovementID).Msg("forbidden: carga de adjunto sin permiso de firma")
		return nil, domain.ErrForbidden
	}
	if in.MovementID <= 0 {
		return nil, domain.ErrNotFound
	}
	mov, err := uc.movements.GetDetail(ctx, in.MovementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.AuthorizeSectorAccess(actor, mov.ItemSectorID, access.ActionWrite); err != nil {
		uc.log.Warn().Int64("actor_id", actor.ID()).Int64("movement_id", mov.ID).
			Str("sector", access.SectorLabel(mov.ItemSectorID)).Msg("forbidden: adjunto de otro sector")
		return nil, err
	}

	kind := strings.TrimSpace(in.Kind)
	if kind == "" {
		kind = entity.AttachmentSignature
	}
	if !entity.IsValidAttachmentKind(kind) {
		return nil, domain.ValidationErrors{"Invalid attachment kind."}
	}
	size := int64(len(in.Data))
	if size == 0 {
		return nil, domain.ValidationErrors{"No file uploaded."}
	}
	if size > uc.maxBytes {
		return nil, fmt.Errorf("%w: máximo %d bytes", domain.ErrUploadTooLarge, uc.maxBytes)
	}
	contentType, ext, err := DetectType(in.Data, in.Filename)
	if err != nil {
		return nil, err
	}

	key := attachmentKey(mov.ID, ext)
	if err := uc.store.Put(ctx, key, in.Data, contentType); err != nil {
		uc.log.Error().Err(err).Int64("movement_id", mov.ID).Msg("no se pudo subir el adjunto")
		return nil, fmt.Errorf("no se pudo subir el adjunto: %w", err)
	}

	att := &entity.MovementAttachment{
		MovementID: mov.ID,
		FileKey:    key,
		FileURL:    uc.store.URL(key),
		Mime:       contentType,
		Label:      strings.TrimSpace(in.Label),
		Kind:       kind,
		UploadedBy: actor.UserIDPtr(),
	}
	signed := false
	err = uc.txRunner.Run(ctx, func(_ repository.InventoryItemRepository, movRepo repository.InventoryMovementRepository, attRepo repository.MovementAttachmentRepository) error {
		if err := attRepo.Create(ctx, att); err != nil {
			return err
		}
		if kind != entity.AttachmentSignature {
			return nil
		}
		var err error
		signed, err = movRepo.MarkSigned(ctx, mov.ID)
		return err
	})
	if err != nil {
		if delErr := uc.store.Delete(ctx, key); delErr != nil {
			uc.log.Warn().Err(delErr).Str("key", key).Msg("adjunto huérfano en storage")
		}
		uc.log.Error().Err(err).Int64("movement_id", mov.ID).Msg("no se pudo registrar el adjunto")
		return nil, fmt.Errorf("no se pudo registrar el adjunto: %w", err)
	}

	status := mov.TransferStatus
	if signed {
		status = entity.TransferSigned
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionInventoryTransferUpload, "inventory_movement", mov.ID,
		map[string]any{"kind": kind, "file": key})
	return &dto.UploadAttachmentResponse{
		Attachment:     ToAttachmentResponse(*att),
		TransferStatus: status,
		Signed:         signed,
		Message:        "Attachment uploaded",
	}, nil
}

// RegenerateForm genera una revisión nueva del formulario de traslado. No cambia cantidades
// ni el estado del traslado.
func (uc *UseCase) RegenerateForm(ctx context.Context, actor *access.Actor, movementID int64) (*dto.TransferFormResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanSign() {
		uc.log.Warn().Int64("actor_id", actor.ID()).Int64("movement_id", movementID).Msg("forbidden: regenerar formulario")
		return nil, domain.ErrForbidden
	}
	mov, err := uc.movements.GetDetail(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.AuthorizeSectorAccess(actor, mov.ItemSectorID, access.ActionWrite); err != nil {
		uc.log.Warn().Int64("actor_id", actor.ID()).Int64("movement_id", mov.ID).Msg("forbidden: formulario de otro sector")
		return nil, err
	}
	if !mov.RequiresSignature {
		return nil, domain.ValidationErrors{"Movement does not require a signature."}
	}
	form, err := uc.documents.GenerateForMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.New("formulario no generado")
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionInventoryTransferForm, "inventory_movement", movementID,
		map[string]any{"file": form.Key})
	return &dto.TransferFormResponse{MovementID: form.MovementID, Key: form.Key, URL: form.URL}, nil
}

// DetectType devuelve (mime, extensión) para contenido permitido. Detecta por contenido y,
// si no es concluyente o no está en la lista, por la extensión del nombre.
func DetectType(data []byte, filename string) (string, string, error) {
	detected := mimetype.Detect(data).String()
	if base, _, err := mime.ParseMediaType(detected); err == nil {
		detected = base
	}
	if ext, ok := allowedTypes[detected]; ok {
		return detected, ext, nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	contentType, ok := extensionTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, detected)
	}
	return contentType, allowedTypes[contentType], nil
}

func attachmentKey(movementID int64, ext string) string {
	return fmt.Sprintf("inventory/transfers/%d/attachments/%s.%s", movementID, uuid.NewString(), ext)
}

// ToAttachmentResponse mapea entidad -> DTO.
func ToAttachmentResponse(a entity.MovementAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         a.ID,
		FileURL:    a.FileURL,
		Mime:       a.Mime,
		Label:      a.Label,
		Kind:       a.Kind,
		UploadedBy: a.UploadedBy,
		UploadedAt: a.UploadedAt,
	}
}
