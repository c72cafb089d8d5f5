package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"indoors/internal/core/model"
	"indoors/internal/core/repository"
)

func TestRoomService(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryRoomRepository(0)
	svc := NewRoomService(repo, nil, zerolog.Nop())
	ingest := NewIngestionService(repo, nil, "", zerolog.Nop())

	if _, err := svc.CreateRoom(ctx, "", 1, 1, ""); err == nil {
		t.Error("CreateRoom() with empty name succeeded")
	}

	room, err := svc.CreateRoom(ctx, "hall", 20, 5, "https://example.com/hall.png")
	if err != nil {
		t.Fatalf("CreateRoom() unexpected error: %v", err)
	}
	for i := 0; i < 12; i++ {
		if _, err := svc.CreateRoom(ctx, "extra", 1, 1, ""); err != nil {
			t.Fatalf("CreateRoom() unexpected error: %v", err)
		}
	}

	rooms, err := svc.ListRooms(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListRooms() unexpected error: %v", err)
	}
	if len(rooms) != DefaultListLimit {
		t.Errorf("ListRooms(0, 0) returned %d rooms, want %d", len(rooms), DefaultListLimit)
	}

	_, _ = ingest.Ingest(ctx, room.ID, &model.Coordinate{X: 1, Y: 1}, newSample(reading("a", -40)))
	if err := svc.ClearPositions(ctx, room.ID); err != nil {
		t.Fatalf("ClearPositions() unexpected error: %v", err)
	}
	got, err := svc.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom() unexpected error: %v", err)
	}
	if len(got.Locations) != 0 {
		t.Errorf("len(Locations) after clear = %d, want 0", len(got.Locations))
	}

	if err := svc.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("DeleteRoom() unexpected error: %v", err)
	}
	if _, err := svc.GetRoom(ctx, room.ID); !errors.Is(err, model.ErrRoomNotFound) {
		t.Errorf("GetRoom() after delete error = %v, want ErrRoomNotFound", err)
	}
	if err := svc.ClearPositions(ctx, room.ID); !errors.Is(err, model.ErrRoomNotFound) {
		t.Errorf("ClearPositions() after delete error = %v, want ErrRoomNotFound", err)
	}
}
