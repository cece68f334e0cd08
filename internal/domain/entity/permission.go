package entity

import "sort"

// Claves de permiso conocidas.
const (
	PermViewTasks          = "view_tasks"
	PermManageTasks        = "manage_tasks"
	PermInventoryView      = "inventory_view"
	PermInventoryManage    = "inventory_manage"
	PermInventoryTransfers = "inventory_transfers"
	PermManageUsers        = "manage_users"
	PermManageSectors      = "manage_sectors"
)

// Modos de override por usuario.
const (
	OverrideAllow   = "allow"
	OverrideDeny    = "deny"
	OverrideInherit = "inherit"
)

// PermissionOverride excepción explícita de un usuario sobre el default de su rol.
type PermissionOverride struct {
	UserID  int64
	Key     string
	Granted bool
}

// PermissionDef describe una clave del catálogo.
type PermissionDef struct {
	Key   string
	Label string
}

// PermissionCatalog claves conocidas y defaults por rol. Se construye una vez al arrancar
// y se comparte como valor inmutable.
type PermissionCatalog struct {
	defs     map[string]PermissionDef
	defaults map[string]map[string]bool // rol -> clave -> concedido
}

// DefaultPermissionCatalog catálogo base definido en código.
func DefaultPermissionCatalog() *PermissionCatalog {
	c := &PermissionCatalog{
		defs:     map[string]PermissionDef{},
		defaults: map[string]map[string]bool{},
	}
	for _, d := range []PermissionDef{
		{Key: PermViewTasks, Label: "View tasks"},
		{Key: PermManageTasks, Label: "Manage tasks"},
		{Key: PermInventoryView, Label: "View inventory"},
		{Key: PermInventoryManage, Label: "Manage inventory"},
		{Key: PermInventoryTransfers, Label: "Sign inventory transfers"},
		{Key: PermManageUsers, Label: "Manage users"},
		{Key: PermManageSectors, Label: "Manage sectors"},
	} {
		c.defs[d.Key] = d
	}
	all := c.Keys()
	c.grant(RoleRoot, all...)
	c.grant(RoleAdmin, all...)
	c.grant(RoleManager, PermViewTasks, PermManageTasks, PermInventoryView, PermInventoryManage, PermInventoryTransfers)
	c.grant(RoleTechnician, PermViewTasks, PermManageTasks, PermInventoryView)
	c.grant(RoleViewer, PermViewTasks, PermInventoryView)
	return c
}

func (c *PermissionCatalog) grant(role string, keys ...string) {
	if c.defaults[role] == nil {
		c.defaults[role] = map[string]bool{}
	}
	for _, k := range keys {
		c.defaults[role][k] = true
	}
}

// WithRoleDefaults devuelve una copia del catálogo con los defaults de rol sobrescritos
// (por ejemplo, filas de role_permissions). Claves desconocidas se ignoran.
func (c *PermissionCatalog) WithRoleDefaults(rows map[string]map[string]bool) *PermissionCatalog {
	out := &PermissionCatalog{
		defs:     c.defs,
		defaults: map[string]map[string]bool{},
	}
	for role, perms := range c.defaults {
		out.defaults[role] = map[string]bool{}
		for k, v := range perms {
			out.defaults[role][k] = v
		}
	}
	for role, perms := range rows {
		if role == RoleRoot {
			continue
		}
		if out.defaults[role] == nil {
			out.defaults[role] = map[string]bool{}
		}
		for k, v := range perms {
			if c.Has(k) {
				out.defaults[role][k] = v
			}
		}
	}
	return out
}

// Has indica si la clave existe en el catálogo.
func (c *PermissionCatalog) Has(key string) bool {
	_, ok := c.defs[key]
	return ok
}

// HasRole indica si el rol existe en el catálogo.
func (c *PermissionCatalog) HasRole(role string) bool {
	_, ok := c.defaults[role]
	return ok
}

// Keys claves ordenadas.
func (c *PermissionCatalog) Keys() []string {
	keys := make([]string, 0, len(c.defs))
	for k := range c.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Definitions definiciones ordenadas por clave.
func (c *PermissionCatalog) Definitions() []PermissionDef {
	out := make([]PermissionDef, 0, len(c.defs))
	for _, k := range c.Keys() {
		out = append(out, c.defs[k])
	}
	return out
}

// RoleDefault valor por defecto del rol para la clave.
func (c *PermissionCatalog) RoleDefault(role, key string) bool {
	return c.defaults[role][key]
}

// Effective resuelve el mapa de permisos: el override gana; si no hay, el default del rol.
func (c *PermissionCatalog) Effective(role string, overrides map[string]bool) map[string]bool {
	out := make(map[string]bool, len(c.defs))
	for k := range c.defs {
		if v, ok := overrides[k]; ok {
			out[k] = v
			continue
		}
		out[k] = c.RoleDefault(role, k)
	}
	return out
}
