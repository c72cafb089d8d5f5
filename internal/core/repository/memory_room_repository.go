package repository

import (
	"context"
	"fmt"
	"sync"

	"indoors/internal/core/model"
)

type inMemoryRoomRepository struct {
	rooms     map[string]*model.Room
	order     []string
	tolerance float64
	mutex     sync.RWMutex
}

// NewInMemoryRoomRepository returns a process-local room store. Location
// writes are serialized by a single lock, which gives CreateLocation the same
// insert-if-absent guarantee as the MongoDB store.
func NewInMemoryRoomRepository(tolerance float64) RoomRepository {
	return &inMemoryRoomRepository{
		rooms:     make(map[string]*model.Room),
		tolerance: tolerance,
	}
}

func (r *inMemoryRoomRepository) Create(ctx context.Context, room *model.Room) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return &model.StoreError{Op: "create_room", Err: fmt.Errorf("room with ID %s already exists", room.ID)}
	}

	r.rooms[room.ID] = cloneRoom(room)
	r.order = append(r.order, room.ID)
	return nil
}

func (r *inMemoryRoomRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.rooms[id]; !exists {
		return model.ErrRoomNotFound
	}

	delete(r.rooms, id)
	for i, roomID := range r.order {
		if roomID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *inMemoryRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if room, exists := r.rooms[id]; exists {
		return cloneRoom(room), nil
	}
	return nil, model.ErrRoomNotFound
}

func (r *inMemoryRoomRepository) FindAll(ctx context.Context, limit, offset int) ([]*model.Room, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rooms := []*model.Room{}
	for i := max(offset, 0); i < len(r.order) && len(rooms) < limit; i++ {
		rooms = append(rooms, cloneRoom(r.rooms[r.order[i]]))
	}
	return rooms, nil
}

func (r *inMemoryRoomRepository) ClearLocations(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[id]
	if !exists {
		return model.ErrRoomNotFound
	}
	room.Locations = []model.Location{}
	return nil
}

func (r *inMemoryRoomRepository) FindLocation(ctx context.Context, roomID string, coord model.Coordinate) (*model.Location, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return nil, model.ErrRoomNotFound
	}
	i := room.FindLocation(coord, r.tolerance)
	if i < 0 {
		return nil, nil
	}
	loc := cloneLocation(room.Locations[i])
	return &loc, nil
}

func (r *inMemoryRoomRepository) AppendSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	loc := r.locationLocked(roomID, coord)
	if loc == nil {
		return false, nil
	}
	loc.Samples = append(loc.Samples, samples...)
	return true, nil
}

func (r *inMemoryRoomRepository) ReplaceSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	loc := r.locationLocked(roomID, coord)
	if loc == nil {
		return false, nil
	}
	loc.Samples = append(model.SampleSet(nil), samples...)
	return true, nil
}

func (r *inMemoryRoomRepository) CreateLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[roomID]
	if !exists || room.FindLocation(coord, r.tolerance) >= 0 {
		return false, nil
	}
	room.Locations = append(room.Locations, model.NewLocation(coord, samples))
	return true, nil
}

func (r *inMemoryRoomRepository) PushLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return model.ErrRoomNotFound
	}
	room.Locations = append(room.Locations, model.NewLocation(coord, samples))
	return nil
}

func (r *inMemoryRoomRepository) locationLocked(roomID string, coord model.Coordinate) *model.Location {
	room, exists := r.rooms[roomID]
	if !exists {
		return nil
	}
	i := room.FindLocation(coord, r.tolerance)
	if i < 0 {
		return nil
	}
	return &room.Locations[i]
}

func cloneRoom(room *model.Room) *model.Room {
	c := *room
	c.Locations = make([]model.Location, len(room.Locations))
	for i, loc := range room.Locations {
		c.Locations[i] = cloneLocation(loc)
	}
	return &c
}

func cloneLocation(loc model.Location) model.Location {
	c := loc
	c.Samples = append(model.SampleSet(nil), loc.Samples...)
	return c
}
