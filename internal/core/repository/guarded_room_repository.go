package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"indoors/internal/core/model"
)

type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// GuardedRoomRepository fails fast with ErrStoreUnavailable once the wrapped
// store has failed FailureThreshold times in a row. Only storage failures trip
// the breaker; a missing room or a caller giving up is an ordinary answer.
type GuardedRoomRepository struct {
	inner   RoomRepository
	breaker *gobreaker.CircuitBreaker[any]
}

func NewGuardedRoomRepository(inner RoomRepository, cfg BreakerConfig, logger zerolog.Logger) *GuardedRoomRepository {
	if cfg.Name == "" {
		cfg.Name = "room-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return !isStoreFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Room store circuit breaker changed state")
		},
	}

	return &GuardedRoomRepository{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func isStoreFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var storeErr *model.StoreError
	return errors.Is(err, model.ErrStoreUnavailable) || errors.As(err, &storeErr)
}

func guard[T any](g *GuardedRoomRepository, fn func() (T, error)) (T, error) {
	v, err := g.breaker.Execute(func() (any, error) {
		result, err := fn()
		return result, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	result, _ := v.(T)
	return result, err
}

func (g *GuardedRoomRepository) State() string {
	return g.breaker.State().String()
}

func (g *GuardedRoomRepository) Create(ctx context.Context, room *model.Room) error {
	_, err := guard(g, func() (struct{}, error) {
		return struct{}{}, g.inner.Create(ctx, room)
	})
	return err
}

func (g *GuardedRoomRepository) Delete(ctx context.Context, id string) error {
	_, err := guard(g, func() (struct{}, error) {
		return struct{}{}, g.inner.Delete(ctx, id)
	})
	return err
}

func (g *GuardedRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	return guard(g, func() (*model.Room, error) {
		return g.inner.FindByID(ctx, id)
	})
}

func (g *GuardedRoomRepository) FindAll(ctx context.Context, limit, offset int) ([]*model.Room, error) {
	return guard(g, func() ([]*model.Room, error) {
		return g.inner.FindAll(ctx, limit, offset)
	})
}

func (g *GuardedRoomRepository) ClearLocations(ctx context.Context, id string) error {
	_, err := guard(g, func() (struct{}, error) {
		return struct{}{}, g.inner.ClearLocations(ctx, id)
	})
	return err
}

func (g *GuardedRoomRepository) FindLocation(ctx context.Context, roomID string, coord model.Coordinate) (*model.Location, error) {
	return guard(g, func() (*model.Location, error) {
		return g.inner.FindLocation(ctx, roomID, coord)
	})
}

func (g *GuardedRoomRepository) AppendSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	return guard(g, func() (bool, error) {
		return g.inner.AppendSamples(ctx, roomID, coord, samples)
	})
}

func (g *GuardedRoomRepository) ReplaceSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	return guard(g, func() (bool, error) {
		return g.inner.ReplaceSamples(ctx, roomID, coord, samples)
	})
}

func (g *GuardedRoomRepository) CreateLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	return guard(g, func() (bool, error) {
		return g.inner.CreateLocation(ctx, roomID, coord, samples)
	})
}

func (g *GuardedRoomRepository) PushLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) error {
	_, err := guard(g, func() (struct{}, error) {
		return struct{}{}, g.inner.PushLocation(ctx, roomID, coord, samples)
	})
	return err
}
