package entity

// Sector partición organizacional (departamento) que acota la visibilidad del inventario.
// ManagerUserID es una referencia débil: puede apuntar a un usuario inexistente.
type Sector struct {
	ID            int64
	Slug          string
	Name          string
	Description   string
	ContactEmail  string
	ContactPhone  string
	ColorHex      string
	ManagerUserID *int64
}
