package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"indoors/internal/cache"
	"indoors/internal/config"
	"indoors/internal/core/model"
	"indoors/internal/core/repository"
	"indoors/internal/metrics"
)

// MergeOutcome tells whether an upload joined an existing location or created one.
type MergeOutcome string

const (
	OutcomeMerged   MergeOutcome = "merged"
	OutcomeAppended MergeOutcome = "appended"
)

// maxIngestAttempts bounds how often an upload re-probes when the location it
// saw changes before its write lands (created by a concurrent upload, or
// removed by a clear).
const maxIngestAttempts = 3

var errLocationContended = errors.New("location changed concurrently during ingestion")

type IngestionService interface {
	// Ingest records the samples of one upload for coord in the room as a
	// single store write. A nil coord always creates a new location at the
	// origin. Either every sample is stored or none is.
	Ingest(ctx context.Context, roomID string, coord *model.Coordinate, samples ...model.FingerprintSample) (MergeOutcome, error)
}

type ingestionService struct {
	roomRepo    repository.RoomRepository
	roomCache   *cache.RoomCache
	mergePolicy string
	logger      zerolog.Logger
}

func NewIngestionService(roomRepo repository.RoomRepository, roomCache *cache.RoomCache, mergePolicy string, logger zerolog.Logger) IngestionService {
	if mergePolicy == "" {
		mergePolicy = config.MergePolicyAppend
	}
	return &ingestionService{
		roomRepo:    roomRepo,
		roomCache:   roomCache,
		mergePolicy: mergePolicy,
		logger:      logger,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, roomID string, coord *model.Coordinate, samples ...model.FingerprintSample) (MergeOutcome, error) {
	if roomID == "" {
		return "", fmt.Errorf("%w: empty room ID", model.ErrRoomNotFound)
	}
	if len(samples) == 0 {
		metrics.IngestTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: no samples", model.ErrMalformedSample)
	}
	for _, sample := range samples {
		if err := sample.Validate(); err != nil {
			metrics.IngestTotal.WithLabelValues("rejected").Inc()
			return "", err
		}
	}

	set := model.SampleSet(samples)
	var outcome MergeOutcome
	var err error
	if coord == nil {
		outcome, err = s.appendNew(ctx, roomID, set)
	} else {
		outcome, err = s.mergeOrAppend(ctx, roomID, *coord, set)
	}

	if err != nil {
		metrics.IngestTotal.WithLabelValues("failed").Inc()
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Fingerprint ingestion failed")
		return "", err
	}

	s.roomCache.InvalidateRoom(ctx, roomID)
	metrics.IngestTotal.WithLabelValues(string(outcome)).Inc()
	s.logger.Debug().
		Str("room_id", roomID).
		Str("outcome", string(outcome)).
		Int("samples", len(samples)).
		Msg("Fingerprint ingested")
	return outcome, nil
}

func (s *ingestionService) appendNew(ctx context.Context, roomID string, samples model.SampleSet) (MergeOutcome, error) {
	if err := s.roomRepo.PushLocation(ctx, roomID, model.Coordinate{}, samples); err != nil {
		return "", err
	}
	return OutcomeAppended, nil
}

func (s *ingestionService) mergeOrAppend(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (MergeOutcome, error) {
	for attempt := 0; attempt < maxIngestAttempts; attempt++ {
		loc, err := s.roomRepo.FindLocation(ctx, roomID, coord)
		if err != nil {
			return "", err
		}

		if loc != nil {
			merged, err := s.merge(ctx, roomID, coord, samples)
			if err != nil {
				return "", err
			}
			if merged {
				return OutcomeMerged, nil
			}
			continue
		}

		created, err := s.roomRepo.CreateLocation(ctx, roomID, coord, samples)
		if err != nil {
			return "", err
		}
		if created {
			return OutcomeAppended, nil
		}
		// Another upload created this coordinate between our probe and insert,
		// or the room is gone. The next probe tells which.
	}

	return "", &model.StoreError{Op: "ingest", Err: errLocationContended}
}

func (s *ingestionService) merge(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error) {
	if s.mergePolicy == config.MergePolicyReplace {
		return s.roomRepo.ReplaceSamples(ctx, roomID, coord, samples)
	}
	return s.roomRepo.AppendSamples(ctx, roomID, coord, samples)
}
