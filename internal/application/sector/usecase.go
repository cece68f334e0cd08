// Package sector directorio de sectores (base core).
package sector

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// ItemCounter cuenta artículos de inventario por sector (base apps).
type ItemCounter interface {
	CountBySector(ctx context.Context, sectorID int64) (int, error)
}

// UseCase alta, edición y baja de sectores (requiere manage_sectors para escribir).
type UseCase struct {
	sectors  repository.SectorRepository
	users    repository.UserRepository
	items    ItemCounter
	activity *activity.Recorder
	log      *logger.Logger
}

// NewUseCase construye el caso de uso. users e items pueden ser nil.
func NewUseCase(sectors repository.SectorRepository, users repository.UserRepository, items ItemCounter, recorder *activity.Recorder, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{sectors: sectors, users: users, items: items, activity: recorder, log: log}
}

func (uc *UseCase) authorize(actor *access.Actor, op string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Can(entity.PermManageSectors) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Str("op", op).Msg("forbidden: manage_sectors requerido")
		return domain.ErrForbidden
	}
	if uc.sectors == nil {
		return fmt.Errorf("%w: base core no disponible", domain.ErrConflict)
	}
	return nil
}

// List sectores ordenados por nombre. Cualquier usuario autenticado puede listarlos.
// Sin base core la lista es vacía.
func (uc *UseCase) List(ctx context.Context, actor *access.Actor) ([]dto.SectorResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if uc.sectors == nil {
		return []dto.SectorResponse{}, nil
	}
	rows, err := uc.sectors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectorResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, ToSectorResponse(s))
	}
	return out, nil
}

// Create alta de sector. Slug vacío se deriva del nombre.
func (uc *UseCase) Create(ctx context.Context, actor *access.Actor, in dto.SectorRequest) (*dto.SectorResponse, error) {
	if err := uc.authorize(actor, "create"); err != nil {
		return nil, err
	}
	s, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := uc.sectors.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionSectorCreate, "sector", s.ID, map[string]any{"slug": s.Slug})
	resp := ToSectorResponse(s)
	return &resp, nil
}

// Update edición de sector.
func (uc *UseCase) Update(ctx context.Context, actor *access.Actor, id int64, in dto.SectorRequest) (*dto.SectorResponse, error) {
	if err := uc.authorize(actor, "update"); err != nil {
		return nil, err
	}
	current, err := uc.sectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	s, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	s.ID = id
	if err := uc.sectors.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionSectorUpdate, "sector", id, map[string]any{"slug": s.Slug})
	resp := ToSectorResponse(s)
	return &resp, nil
}

// Delete baja de sector. ErrInUse si hay artículos o usuarios que lo referencian.
func (uc *UseCase) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if err := uc.authorize(actor, "delete"); err != nil {
		return err
	}
	if uc.items != nil {
		n, err := uc.items.CountBySector(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInUse
		}
	}
	if err := uc.sectors.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionSectorDelete, "sector", id, nil)
	return nil
}

func (uc *UseCase) build(ctx context.Context, in dto.SectorRequest) (*entity.Sector, error) {
	name := strings.TrimSpace(in.Name)
	slug := NormalizeSlug(in.Slug)
	if slug == "" {
		slug = SuggestSlug(name)
	}
	email := strings.TrimSpace(in.ContactEmail)

	var verr domain.ValidationErrors
	if !ValidSlug(slug) {
		verr.Add("Slug must be lowercase letters, numbers, dashes, or underscores.")
	}
	if name == "" {
		verr.Add("Name is required.")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("Contact email is invalid.")
		}
	}
	color, ok := NormalizeColor(in.ColorHex)
	if !ok {
		verr.Add("Color must be a 6-digit hex code.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	return &entity.Sector{
		Slug:          slug,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		ContactEmail:  email,
		ContactPhone:  strings.TrimSpace(in.ContactPhone),
		ColorHex:      color,
		ManagerUserID: uc.existingManager(ctx, in.ManagerUserID),
	}, nil
}

// existingManager el responsable es una referencia débil: si el usuario no existe se descarta.
func (uc *UseCase) existingManager(ctx context.Context, id *int64) *int64 {
	if id == nil || uc.users == nil {
		return nil
	}
	u, err := uc.users.GetByID(ctx, *id)
	if err != nil {
		uc.log.Warn().Err(err).Int64("user_id", *id).Msg("no se pudo verificar el responsable del sector")
		return nil
	}
	if u == nil {
		return nil
	}
	v := *id
	return &v
}

// ToSectorResponse mapea entidad -> DTO.
func ToSectorResponse(s *entity.Sector) dto.SectorResponse {
	return dto.SectorResponse{
		ID:            s.ID,
		Slug:          s.Slug,
		Name:          s.Name,
		Description:   s.Description,
		ContactEmail:  s.ContactEmail,
		ContactPhone:  s.ContactPhone,
		ColorHex:      s.ColorHex,
		ManagerUserID: s.ManagerUserID,
	}
}
