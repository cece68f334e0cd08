// Package building edificios y salas donde se ubican las tareas.
package building

import (
	"context"
	"strings"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// UseCase lectura con view_tasks, escritura con manage_tasks.
type UseCase struct {
	repo     repository.BuildingRepository
	activity *activity.Recorder
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.BuildingRepository, recorder *activity.Recorder, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, activity: recorder, log: log}
}

func (uc *UseCase) require(actor *access.Actor, key, op string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Can(key) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Str("op", op).Str("permission", key).Msg("forbidden: edificios y salas")
		return domain.ErrForbidden
	}
	return nil
}

// ListBuildings edificios ordenados por nombre.
func (uc *UseCase) ListBuildings(ctx context.Context, actor *access.Actor) ([]dto.BuildingResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "list_buildings"); err != nil {
		return nil, err
	}
	rows, err := uc.repo.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BuildingResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, dto.BuildingResponse{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

// CreateBuilding alta de edificio.
func (uc *UseCase) CreateBuilding(ctx context.Context, actor *access.Actor, in dto.BuildingRequest) (*dto.BuildingResponse, error) {
	if err := uc.require(actor, entity.PermManageTasks, "create_building"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ValidationErrors{"Name required."}
	}
	b := &entity.Building{Name: name}
	if err := uc.repo.CreateBuilding(ctx, b); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionBuildingCreate, "building", b.ID, map[string]any{"name": name})
	return &dto.BuildingResponse{ID: b.ID, Name: b.Name}, nil
}

// DeleteBuilding borra el edificio y sus salas. ErrInUse si alguna sala tiene tareas.
func (uc *UseCase) DeleteBuilding(ctx context.Context, actor *access.Actor, id int64) error {
	if err := uc.require(actor, entity.PermManageTasks, "delete_building"); err != nil {
		return err
	}
	if err := uc.repo.DeleteBuilding(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionBuildingDelete, "building", id, nil)
	return nil
}

// ListRooms salas, opcionalmente de un edificio y filtradas por texto.
func (uc *UseCase) ListRooms(ctx context.Context, actor *access.Actor, q dto.RoomListQuery) ([]dto.RoomResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "list_rooms"); err != nil {
		return nil, err
	}
	rows, err := uc.repo.ListRooms(ctx, repository.RoomFilter{BuildingID: q.BuildingID, Search: strings.TrimSpace(q.Search)})
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoomResponse, 0, len(rows))
	for _, room := range rows {
		out = append(out, ToRoomResponse(room))
	}
	return out, nil
}

// RoomsByBuilding salas de un edificio para el selector de tareas. Edificio inexistente -> ErrNotFound.
func (uc *UseCase) RoomsByBuilding(ctx context.Context, actor *access.Actor, buildingID int64) ([]dto.RoomResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "rooms_by_building"); err != nil {
		return nil, err
	}
	b, err := uc.repo.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return uc.ListRooms(ctx, actor, dto.RoomListQuery{BuildingID: buildingID})
}

// CreateRoom alta de sala. Número repetido en el edificio -> ErrDuplicate.
func (uc *UseCase) CreateRoom(ctx context.Context, actor *access.Actor, in dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if err := uc.require(actor, entity.PermManageTasks, "create_room"); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.RoomNumber)
	if in.BuildingID <= 0 || number == "" {
		return nil, domain.ValidationErrors{"Building and room number required."}
	}
	room := &entity.Room{BuildingID: in.BuildingID, Number: number}
	applyDetails(room, in.Label, in.SectorID, in.FloorLabel, in.Capacity, in.Notes)
	if err := uc.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionRoomCreate, "room", room.ID,
		map[string]any{"building_id": room.BuildingID, "room_number": number})
	return uc.reload(ctx, room)
}

// UpdateRoom edita etiqueta, sector, planta, capacidad y notas.
func (uc *UseCase) UpdateRoom(ctx context.Context, actor *access.Actor, id int64, in dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	if err := uc.require(actor, entity.PermManageTasks, "update_room"); err != nil {
		return nil, err
	}
	current, err := uc.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	applyDetails(current, in.Label, in.SectorID, in.FloorLabel, in.Capacity, in.Notes)
	if err := uc.repo.UpdateRoom(ctx, current); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionRoomUpdate, "room", id, nil)
	return uc.reload(ctx, current)
}

// DeleteRoom baja de sala. ErrInUse si tiene tareas.
func (uc *UseCase) DeleteRoom(ctx context.Context, actor *access.Actor, id int64) error {
	if err := uc.require(actor, entity.PermManageTasks, "delete_room"); err != nil {
		return err
	}
	if err := uc.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionRoomDelete, "room", id, nil)
	return nil
}

func (uc *UseCase) reload(ctx context.Context, room *entity.Room) (*dto.RoomResponse, error) {
	fresh, err := uc.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		fresh = room
	}
	resp := ToRoomResponse(fresh)
	return &resp, nil
}

func applyDetails(room *entity.Room, label string, sectorID *int64, floor string, capacity *int, notes string) {
	room.Label = strings.TrimSpace(label)
	room.SectorID = nil
	if sectorID != nil && *sectorID > 0 {
		v := *sectorID
		room.SectorID = &v
	}
	room.FloorLabel = strings.TrimSpace(floor)
	room.Capacity = nil
	if capacity != nil {
		c := *capacity
		if c < 0 {
			c = 0
		}
		room.Capacity = &c
	}
	room.Notes = strings.TrimSpace(notes)
}

// ToRoomResponse mapea entidad -> DTO.
func ToRoomResponse(r *entity.Room) dto.RoomResponse {
	return dto.RoomResponse{
		ID:           r.ID,
		BuildingID:   r.BuildingID,
		BuildingName: r.BuildingName,
		RoomNumber:   r.Number,
		Label:        r.DisplayLabel(),
		RoomLabel:    r.Label,
		SectorID:     r.SectorID,
		FloorLabel:   r.FloorLabel,
		Capacity:     r.Capacity,
		Notes:        r.Notes,
	}
}
