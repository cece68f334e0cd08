package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// Etiquetas de respaldo cuando la base core no responde o el dato es nulo.
const (
	LabelUnassigned = "Unassigned"
	LabelSystem     = "System"
)

// Labeler resuelve nombres legibles de sectores y usuarios. Ningún fallo es fatal: se
// degrada a etiquetas genéricas.
type Labeler struct {
	sectors SectorDirectory
	users   UserDirectory
	log     *logger.Logger
}

// NewLabeler construye el resolvedor; sectors y users pueden ser nil.
func NewLabeler(sectors SectorDirectory, users UserDirectory, log *logger.Logger) *Labeler {
	if log == nil {
		log = logger.Nop()
	}
	return &Labeler{sectors: sectors, users: users, log: log}
}

// SectorNames id -> nombre para los ids no nulos. Un fallo devuelve un mapa vacío.
func (l *Labeler) SectorNames(ctx context.Context, ids ...*int64) map[int64]string {
	seen := map[int64]bool{}
	var want []int64
	for _, id := range ids {
		if id != nil && !seen[*id] {
			seen[*id] = true
			want = append(want, *id)
		}
	}
	if len(want) == 0 || l.sectors == nil {
		return map[int64]string{}
	}
	names, err := l.sectors.NamesByIDs(ctx, want)
	if err != nil {
		l.log.Warn().Err(err).Msg("directorio de sectores no disponible; se usan etiquetas genéricas")
		return map[int64]string{}
	}
	return names
}

// SectorLabel "Unassigned" si es nulo, el nombre si se conoce, "Sector #id" si no.
func SectorLabel(names map[int64]string, id *int64) string {
	if id == nil {
		return LabelUnassigned
	}
	if name, ok := names[*id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Sector #%d", *id)
}

// UserLabel "System" si no hay actor; nombre o email si se encuentra; "User #id" si no.
func (l *Labeler) UserLabel(ctx context.Context, id *int64) string {
	if id == nil {
		return LabelSystem
	}
	if l.users != nil {
		u, err := l.users.GetByID(ctx, *id)
		if err != nil {
			l.log.Warn().Err(err).Int64("user_id", *id).Msg("no se pudo resolver el usuario")
		} else if u != nil {
			return u.DisplayName()
		}
	}
	return fmt.Sprintf("User #%d", *id)
}

// UserLabels versión por lote de UserLabel (una consulta por id distinto).
func (l *Labeler) UserLabels(ctx context.Context, ids []*int64) map[int64]string {
	out := map[int64]string{}
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, ok := out[*id]; ok {
			continue
		}
		out[*id] = l.UserLabel(ctx, id)
	}
	return out
}

// ActorLabel etiqueta a partir de un mapa precalculado por UserLabels.
func ActorLabel(labels map[int64]string, id *int64) string {
	if id == nil {
		return LabelSystem
	}
	if s, ok := labels[*id]; ok {
		return s
	}
	return fmt.Sprintf("User #%d", *id)
}
