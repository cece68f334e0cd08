package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// RoomFilter filtros del listado de salas. BuildingID 0 = todos los edificios.
type RoomFilter struct {
	BuildingID int64
	Search     string
}

// BuildingRepository edificios y salas (base apps). Borrar un edificio borra sus salas;
// edificios o salas con tareas devuelven ErrInUse.
type BuildingRepository interface {
	ListBuildings(ctx context.Context) ([]*entity.Building, error)
	GetBuilding(ctx context.Context, id int64) (*entity.Building, error)
	CreateBuilding(ctx context.Context, b *entity.Building) error
	DeleteBuilding(ctx context.Context, id int64) error

	ListRooms(ctx context.Context, filter RoomFilter) ([]*entity.Room, error)
	GetRoom(ctx context.Context, id int64) (*entity.Room, error)
	CreateRoom(ctx context.Context, room *entity.Room) error
	UpdateRoom(ctx context.Context, room *entity.Room) error
	DeleteRoom(ctx context.Context, id int64) error
	RoomBelongsTo(ctx context.Context, buildingID, roomID int64) (bool, error)
}
