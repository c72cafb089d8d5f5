package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"indoors/internal/cache"
	"indoors/internal/core/model"
	"indoors/internal/core/repository"
)

const DefaultListLimit = 10

type RoomService interface {
	CreateRoom(ctx context.Context, name string, width, height float64, imageURL string) (*model.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, limit, offset int) ([]*model.Room, error)
	ClearPositions(ctx context.Context, id string) error
}

type roomService struct {
	roomRepo  repository.RoomRepository
	roomCache *cache.RoomCache
	rooms     *roomLoader
	logger    zerolog.Logger
}

func NewRoomService(roomRepo repository.RoomRepository, roomCache *cache.RoomCache, logger zerolog.Logger) RoomService {
	return &roomService{
		roomRepo:  roomRepo,
		roomCache: roomCache,
		rooms:     &roomLoader{roomRepo: roomRepo, roomCache: roomCache},
		logger:    logger,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, name string, width, height float64, imageURL string) (*model.Room, error) {
	if name == "" {
		return nil, errors.New("invalid room name")
	}

	room := model.NewRoom(name, width, height, imageURL)
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info().Str("room_id", room.ID).Str("name", name).Msg("Room created")
	return room, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, id string) error {
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.roomCache.InvalidateRoom(ctx, id)
	s.logger.Info().Str("room_id", id).Msg("Room deleted")
	return nil
}

func (s *roomService) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	return s.rooms.load(ctx, id)
}

// ListRooms pages through rooms. A non-positive limit falls back to
// DefaultListLimit so a request never scans the whole collection.
func (s *roomService) ListRooms(ctx context.Context, limit, offset int) ([]*model.Room, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.roomRepo.FindAll(ctx, limit, offset)
}

func (s *roomService) ClearPositions(ctx context.Context, id string) error {
	if err := s.roomRepo.ClearLocations(ctx, id); err != nil {
		return err
	}
	s.roomCache.InvalidateRoom(ctx, id)
	s.logger.Info().Str("room_id", id).Msg("Room positions cleared")
	return nil
}
