package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// BuildingRepo edificios y salas en memoria. TasksByRoom simula la FK de tareas.
type BuildingRepo struct {
	mu        sync.Mutex
	buildings map[int64]entity.Building
	rooms     map[int64]entity.Room
	nextID    int64

	TasksByRoom map[int64]int
	FailList    error
}

var _ repository.BuildingRepository = (*BuildingRepo)(nil)

// NewBuildingRepo repo vacío.
func NewBuildingRepo() *BuildingRepo {
	return &BuildingRepo{
		buildings:   map[int64]entity.Building{},
		rooms:       map[int64]entity.Room{},
		TasksByRoom: map[int64]int{},
	}
}

func (r *BuildingRepo) id(want int64) int64 {
	if want == 0 {
		r.nextID++
		return r.nextID
	}
	if want > r.nextID {
		r.nextID = want
	}
	return want
}

// SeedBuilding inserta un edificio tal cual.
func (r *BuildingRepo) SeedBuilding(b entity.Building) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id(b.ID)
	r.buildings[b.ID] = b
	return b.ID
}

// SeedRoom inserta una sala tal cual.
func (r *BuildingRepo) SeedRoom(room entity.Room) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.ID = r.id(room.ID)
	r.rooms[room.ID] = room
	return room.ID
}

func (r *BuildingRepo) ListBuildings(context.Context) ([]*entity.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailList != nil {
		return nil, r.FailList
	}
	out := make([]*entity.Building, 0, len(r.buildings))
	for _, b := range r.buildings {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BuildingRepo) GetBuilding(_ context.Context, id int64) (*entity.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buildings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BuildingRepo) CreateBuilding(_ context.Context, b *entity.Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id(0)
	r.buildings[b.ID] = *b
	return nil
}

func (r *BuildingRepo) DeleteBuilding(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buildings[id]; !ok {
		return domain.ErrNotFound
	}
	for roomID, room := range r.rooms {
		if room.BuildingID == id && r.TasksByRoom[roomID] > 0 {
			return fmt.Errorf("%w: el edificio tiene tareas", domain.ErrInUse)
		}
	}
	for roomID, room := range r.rooms {
		if room.BuildingID == id {
			delete(r.rooms, roomID)
		}
	}
	delete(r.buildings, id)
	return nil
}

func (r *BuildingRepo) ListRooms(_ context.Context, f repository.RoomFilter) ([]*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailList != nil {
		return nil, r.FailList
	}
	needle := strings.ToLower(f.Search)
	var out []*entity.Room
	for _, room := range r.rooms {
		if f.BuildingID > 0 && room.BuildingID != f.BuildingID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(room.Number+" "+room.Label+" "+room.Notes), needle) {
			continue
		}
		room.BuildingName = r.buildings[room.BuildingID].Name
		room := room
		out = append(out, &room)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingName != out[j].BuildingName {
			return out[i].BuildingName < out[j].BuildingName
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *BuildingRepo) GetRoom(_ context.Context, id int64) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	room.BuildingName = r.buildings[room.BuildingID].Name
	return &room, nil
}

func (r *BuildingRepo) CreateRoom(_ context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buildings[room.BuildingID]; !ok {
		return fmt.Errorf("%w: edificio %d", domain.ErrNotFound, room.BuildingID)
	}
	for _, other := range r.rooms {
		if other.BuildingID == room.BuildingID && other.Number == room.Number {
			return fmt.Errorf("%w: sala %q", domain.ErrDuplicate, room.Number)
		}
	}
	room.ID = r.id(0)
	r.rooms[room.ID] = *room
	return nil
}

func (r *BuildingRepo) UpdateRoom(_ context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rooms[room.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Label = room.Label
	current.SectorID = room.SectorID
	current.FloorLabel = room.FloorLabel
	current.Capacity = room.Capacity
	current.Notes = room.Notes
	r.rooms[room.ID] = current
	return nil
}

func (r *BuildingRepo) DeleteRoom(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	if r.TasksByRoom[id] > 0 {
		return fmt.Errorf("%w: la sala tiene tareas", domain.ErrInUse)
	}
	delete(r.rooms, id)
	return nil
}

func (r *BuildingRepo) RoomBelongsTo(_ context.Context, buildingID, roomID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	return ok && room.BuildingID == buildingID, nil
}
