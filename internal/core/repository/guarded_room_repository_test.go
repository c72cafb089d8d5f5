package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"indoors/internal/core/model"
)

// failingRoomRepository fails every FindByID with the configured error.
type failingRoomRepository struct {
	RoomRepository
	err   error
	calls int
}

func (f *failingRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	f.calls++
	return nil, f.err
}

func TestGuardedRoomRepositoryOpensOnStoreFailures(t *testing.T) {
	inner := &failingRoomRepository{err: &model.StoreError{Op: "find_room", Err: errors.New("boom")}}
	repo := NewGuardedRoomRepository(inner, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.FindByID(ctx, "r1")
		var storeErr *model.StoreError
		if !errors.As(err, &storeErr) {
			t.Fatalf("call %d: error = %v, want *StoreError", i, err)
		}
	}

	_, err := repo.FindByID(ctx, "r1")
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("error with open breaker = %v, want ErrStoreUnavailable", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
	if repo.State() != "open" {
		t.Errorf("State() = %q, want open", repo.State())
	}
}

func TestGuardedRoomRepositoryIgnoresMissingRooms(t *testing.T) {
	inner := &failingRoomRepository{err: model.ErrRoomNotFound}
	repo := NewGuardedRoomRepository(inner, BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := repo.FindByID(context.Background(), "r1"); !errors.Is(err, model.ErrRoomNotFound) {
			t.Fatalf("call %d: error = %v, want ErrRoomNotFound", i, err)
		}
	}
	if repo.State() != "closed" {
		t.Errorf("State() = %q, want closed", repo.State())
	}
}

func TestGuardedRoomRepositoryIgnoresCanceledCallers(t *testing.T) {
	inner := &failingRoomRepository{err: fmt.Errorf("find_room: %w", context.Canceled)}
	repo := NewGuardedRoomRepository(inner, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := repo.FindByID(context.Background(), "r1")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: error = %v, want context.Canceled", i, err)
		}
		if errors.Is(err, model.ErrStoreUnavailable) {
			t.Fatalf("call %d: canceled call reported as ErrStoreUnavailable", i)
		}
	}
	if inner.calls != 5 {
		t.Errorf("inner called %d times, want 5", inner.calls)
	}
	if repo.State() != "closed" {
		t.Errorf("State() = %q, want closed", repo.State())
	}
}

func TestGuardedRoomRepositoryPassesResults(t *testing.T) {
	ctx := context.Background()
	repo := NewGuardedRoomRepository(NewInMemoryRoomRepository(0), BreakerConfig{}, zerolog.Nop())
	room := model.NewRoom("lab", 1, 1, "")
	if err := repo.Create(ctx, room); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	created, err := repo.CreateLocation(ctx, room.ID, model.Coordinate{X: 1}, testSamples(testSample("a", -30)))
	if err != nil || !created {
		t.Fatalf("CreateLocation() = (%v, %v), want (true, nil)", created, err)
	}
	loc, err := repo.FindLocation(ctx, room.ID, model.Coordinate{X: 1})
	if err != nil || loc == nil {
		t.Fatalf("FindLocation() = (%v, %v), want a location", loc, err)
	}
	missing, err := repo.FindLocation(ctx, room.ID, model.Coordinate{X: 2})
	if err != nil || missing != nil {
		t.Fatalf("FindLocation() = (%v, %v), want (nil, nil)", missing, err)
	}
}
