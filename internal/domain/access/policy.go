package access

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/punchlist-api/internal/domain"
)

// Action tipo de acceso sobre un recurso con sector.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// AuthorizeSectorAccess única política de acceso por sector. Root accede a todo; el resto solo
// a recursos de su propio sector, o a recursos sin sector si no tiene sector asignado.
func AuthorizeSectorAccess(actor *Actor, resourceSectorID *int64, action Action) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.IsRoot() {
		return nil
	}
	if sameSector(actor.SectorID, resourceSectorID) {
		return nil
	}
	return fmt.Errorf("%w: %s sobre sector %s", domain.ErrForbidden, action, SectorLabel(resourceSectorID))
}

func sameSector(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SectorFilter filtro de visibilidad para consultas.
type SectorFilter struct {
	All        bool
	Unassigned bool
	SectorID   *int64
}

// String representación usada en la respuesta ("all", "unassigned" o el id).
func (f SectorFilter) String() string {
	switch {
	case f.All:
		return "all"
	case f.Unassigned:
		return "unassigned"
	case f.SectorID != nil:
		return strconv.FormatInt(*f.SectorID, 10)
	}
	return "all"
}

// Matches indica si un recurso con ese sector es visible con el filtro.
func (f SectorFilter) Matches(sectorID *int64) bool {
	switch {
	case f.All:
		return true
	case f.Unassigned:
		return sectorID == nil
	case f.SectorID != nil:
		return sectorID != nil && *sectorID == *f.SectorID
	}
	return false
}

// ScopeFor construye el filtro de visibilidad. Solo root elige ("", "all", "unassigned"/"null"
// o un id); el resto queda fijado a su sector, o a "sin asignar" si no tiene.
func ScopeFor(actor *Actor, requested string) (SectorFilter, error) {
	if actor == nil {
		return SectorFilter{}, domain.ErrUnauthorized
	}
	if !actor.IsRoot() {
		if actor.SectorID == nil {
			return SectorFilter{Unassigned: true}, nil
		}
		id := *actor.SectorID
		return SectorFilter{SectorID: &id}, nil
	}
	requested = strings.ToLower(strings.TrimSpace(requested))
	switch requested {
	case "", "all":
		return SectorFilter{All: true}, nil
	case "unassigned", "null":
		return SectorFilter{Unassigned: true}, nil
	}
	id, err := strconv.ParseInt(requested, 10, 64)
	if err != nil || id <= 0 {
		return SectorFilter{}, domain.ValidationErrors{"Invalid sector filter."}
	}
	return SectorFilter{SectorID: &id}, nil
}

// CoerceSector sector efectivo para altas/ediciones: root conserva el solicitado, el resto
// recibe su propio sector aunque haya pedido otro.
func CoerceSector(actor *Actor, requested *int64) *int64 {
	if actor.IsRoot() {
		return requested
	}
	if actor.SectorID == nil {
		return nil
	}
	id := *actor.SectorID
	return &id
}

// SectorLabel etiqueta para logs.
func SectorLabel(id *int64) string {
	if id == nil {
		return "unassigned"
	}
	return strconv.FormatInt(*id, 10)
}
