package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"indoors/internal/cache"
	"indoors/internal/core/model"
	"indoors/internal/core/positioning"
	"indoors/internal/core/repository"
	"indoors/internal/metrics"
)

type PositionService interface {
	// Locate estimates where sample was captured inside the room.
	Locate(ctx context.Context, roomID string, sample model.FingerprintSample) (model.Coordinate, error)
}

type positionService struct {
	rooms  *roomLoader
	logger zerolog.Logger
}

func NewPositionService(roomRepo repository.RoomRepository, roomCache *cache.RoomCache, logger zerolog.Logger) PositionService {
	return &positionService{
		rooms:  &roomLoader{roomRepo: roomRepo, roomCache: roomCache},
		logger: logger,
	}
}

func (s *positionService) Locate(ctx context.Context, roomID string, sample model.FingerprintSample) (model.Coordinate, error) {
	if err := sample.Validate(); err != nil {
		return model.Coordinate{}, err
	}

	room, err := s.rooms.load(ctx, roomID)
	if err != nil {
		recordEstimate(err)
		return model.Coordinate{}, err
	}

	coord, err := positioning.Estimate(sample, positioning.CandidatesFromRoom(room))
	recordEstimate(err)
	if err != nil {
		return model.Coordinate{}, err
	}

	s.logger.Debug().
		Str("room_id", roomID).
		Float64("x", coord.X).
		Float64("y", coord.Y).
		Int("locations", len(room.Locations)).
		Msg("Position estimated")
	return coord, nil
}

func recordEstimate(err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNoCandidates):
		result = "no_candidates"
	case errors.Is(err, model.ErrRoomNotFound):
		result = "room_not_found"
	default:
		result = "failed"
	}
	metrics.EstimateTotal.WithLabelValues(result).Inc()
}

// roomLoader reads rooms through the cache.
type roomLoader struct {
	roomRepo  repository.RoomRepository
	roomCache *cache.RoomCache
}

func (l *roomLoader) load(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty room ID", model.ErrRoomNotFound)
	}
	if room, ok := l.roomCache.GetRoom(ctx, id); ok {
		return room, nil
	}

	room, err := l.roomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.roomCache.SetRoom(ctx, room)
	return room, nil
}
