package entity

import "time"

// InventoryItem artículo de inventario. Quantity nunca es negativa y equivale a la suma
// de los movimientos aplicados.
type InventoryItem struct {
	ID        int64
	SKU       string
	Name      string
	SectorID  *int64 // nil = sin asignar
	Quantity  int
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
