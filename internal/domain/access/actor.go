// Package access contiene el actor resuelto por request y la política de acceso por sector.
package access

import "github.com/jhoicas/punchlist-api/internal/domain/entity"

// Actor usuario autenticado con su rol, sector y permisos efectivos. Vive lo que dura un request.
type Actor struct {
	UserID      int64
	Email       string
	Name        string
	Role        string
	SectorID    *int64
	Permissions map[string]bool
}

// Can indica si el actor tiene el permiso.
func (a *Actor) Can(key string) bool {
	if a == nil {
		return false
	}
	return a.Permissions[key]
}

// IsRoot indica si el actor ignora el alcance por sector.
func (a *Actor) IsRoot() bool {
	return a != nil && a.Role == entity.RoleRoot
}

// CanSign indica si puede adjuntar documentos y firmar traslados.
func (a *Actor) CanSign() bool {
	return a.Can(entity.PermInventoryManage) || a.Can(entity.PermInventoryTransfers)
}

// UserIDPtr id del actor como puntero (para columnas nullable).
func (a *Actor) UserIDPtr() *int64 {
	if a == nil || a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// ID id del actor; 0 si es nil (para logs).
func (a *Actor) ID() int64 {
	if a == nil {
		return 0
	}
	return a.UserID
}
