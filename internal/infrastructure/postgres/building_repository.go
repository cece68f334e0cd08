package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.BuildingRepository = (*BuildingRepo)(nil)

// BuildingRepo edificios y salas (base apps).
type BuildingRepo struct {
	q Querier
}

// NewBuildingRepository construye el adaptador.
func NewBuildingRepository(q Querier) *BuildingRepo {
	return &BuildingRepo{q: q}
}

// ListBuildings ordenados por nombre.
func (r *BuildingRepo) ListBuildings(ctx context.Context) ([]*entity.Building, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM buildings ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()
	var out []*entity.Building
	for rows.Next() {
		var b entity.Building
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// GetBuilding (nil, nil) si no existe.
func (r *BuildingRepo) GetBuilding(ctx context.Context, id int64) (*entity.Building, error) {
	var b entity.Building
	err := r.q.QueryRow(ctx, `SELECT id, name FROM buildings WHERE id = $1`, id).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get building: %w", err)
	}
	return &b, nil
}

func (r *BuildingRepo) CreateBuilding(ctx context.Context, b *entity.Building) error {
	if err := r.q.QueryRow(ctx, `INSERT INTO buildings (name) VALUES ($1) RETURNING id`, b.Name).Scan(&b.ID); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// DeleteBuilding borra el edificio y sus salas (cascade). Con tareas -> ErrInUse.
func (r *BuildingRepo) DeleteBuilding(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el edificio tiene tareas", domain.ErrInUse)
		}
		return fmt.Errorf("delete building: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const roomSelect = `
	SELECT r.id, r.building_id, b.name, r.room_number, r.label, r.sector_id, r.floor_label, r.capacity, r.notes
	FROM rooms r
	JOIN buildings b ON b.id = r.building_id`

// ListRooms ordenadas por edificio y número. Search busca en número, etiqueta y notas.
func (r *BuildingRepo) ListRooms(ctx context.Context, f repository.RoomFilter) ([]*entity.Room, error) {
	query := roomSelect + ` WHERE ($1::bigint = 0 OR r.building_id = $1)
		AND ($2::text = '' OR r.room_number ILIKE '%' || $2::text || '%'
			OR COALESCE(r.label, '') ILIKE '%' || $2::text || '%' OR COALESCE(r.notes, '') ILIKE '%' || $2::text || '%')
		ORDER BY b.name, r.room_number`
	rows, err := r.q.Query(ctx, query, f.BuildingID, f.Search)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	var out []*entity.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// GetRoom (nil, nil) si no existe.
func (r *BuildingRepo) GetRoom(ctx context.Context, id int64) (*entity.Room, error) {
	room, err := scanRoom(r.q.QueryRow(ctx, roomSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// CreateRoom número repetido en el mismo edificio -> ErrDuplicate; edificio inexistente -> ErrNotFound.
func (r *BuildingRepo) CreateRoom(ctx context.Context, room *entity.Room) error {
	query := `
		INSERT INTO rooms (building_id, room_number, label, sector_id, floor_label, capacity, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		room.BuildingID, room.Number, nullIfEmpty(room.Label), room.SectorID,
		nullIfEmpty(room.FloorLabel), room.Capacity, nullIfEmpty(room.Notes),
	).Scan(&room.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%w: sala %q", domain.ErrDuplicate, room.Number)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: edificio %d", domain.ErrNotFound, room.BuildingID)
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// UpdateRoom solo los detalles; edificio y número no cambian.
func (r *BuildingRepo) UpdateRoom(ctx context.Context, room *entity.Room) error {
	query := `
		UPDATE rooms
		SET label = $2, sector_id = $3, floor_label = $4, capacity = $5, notes = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		room.ID, nullIfEmpty(room.Label), room.SectorID, nullIfEmpty(room.FloorLabel), room.Capacity, nullIfEmpty(room.Notes),
	)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteRoom con tareas -> ErrInUse.
func (r *BuildingRepo) DeleteRoom(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la sala tiene tareas", domain.ErrInUse)
		}
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RoomBelongsTo indica si la sala pertenece al edificio.
func (r *BuildingRepo) RoomBelongsTo(ctx context.Context, buildingID, roomID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1 AND building_id = $2)`, roomID, buildingID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("room belongs to building: %w", err)
	}
	return ok, nil
}

func scanRoom(row pgx.Row) (*entity.Room, error) {
	var (
		room                     entity.Room
		label, floorLabel, notes *string
		capacity                 *int32
	)
	if err := row.Scan(&room.ID, &room.BuildingID, &room.BuildingName, &room.Number, &label,
		&room.SectorID, &floorLabel, &capacity, &notes); err != nil {
		return nil, err
	}
	room.Label = deref(label)
	room.FloorLabel = deref(floorLabel)
	room.Notes = deref(notes)
	if capacity != nil {
		c := int(*capacity)
		room.Capacity = &c
	}
	return &room, nil
}
