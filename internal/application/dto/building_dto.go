package dto

// BuildingRequest alta de edificio.
type BuildingRequest struct {
	Name string `json:"name"`
}

// BuildingResponse salida de un edificio.
type BuildingResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateRoomRequest alta de sala. Capacity negativa se guarda como 0.
type CreateRoomRequest struct {
	BuildingID int64  `json:"building_id"`
	RoomNumber string `json:"room_number"`
	Label      string `json:"label,omitempty"`
	SectorID   *int64 `json:"sector_id,omitempty"`
	FloorLabel string `json:"floor_label,omitempty"`
	Capacity   *int   `json:"capacity,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// UpdateRoomRequest detalles editables de una sala (edificio y número no cambian).
type UpdateRoomRequest struct {
	Label      string `json:"label,omitempty"`
	SectorID   *int64 `json:"sector_id,omitempty"`
	FloorLabel string `json:"floor_label,omitempty"`
	Capacity   *int   `json:"capacity,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// RoomListQuery filtros del listado de salas.
type RoomListQuery struct {
	BuildingID int64
	Search     string
}

// RoomResponse salida de una sala. Label es "número - etiqueta" para selectores.
type RoomResponse struct {
	ID           int64  `json:"id"`
	BuildingID   int64  `json:"building_id"`
	BuildingName string `json:"building_name,omitempty"`
	RoomNumber   string `json:"room_number"`
	Label        string `json:"label"`
	RoomLabel    string `json:"room_label,omitempty"`
	SectorID     *int64 `json:"sector_id"`
	FloorLabel   string `json:"floor_label,omitempty"`
	Capacity     *int   `json:"capacity"`
	Notes        string `json:"notes,omitempty"`
}
