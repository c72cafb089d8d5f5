package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"indoors/internal/core/model"
	"indoors/internal/metrics"
)

// RoomRepository is the document store holding rooms and their sampled locations.
// Every call is a single document operation; nothing spans two calls.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindAll(ctx context.Context, limit, offset int) ([]*model.Room, error)
	ClearLocations(ctx context.Context, id string) error

	// FindLocation returns nil, nil when the room exists but has no location at coord.
	FindLocation(ctx context.Context, roomID string, coord model.Coordinate) (*model.Location, error)
	// AppendSamples adds samples to the location at coord in one write. It
	// reports false when no such location (or room) exists.
	AppendSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error)
	// ReplaceSamples overwrites the sample set of the location at coord with samples.
	ReplaceSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error)
	// CreateLocation atomically adds a location at coord only if none matches yet.
	// It reports false when a matching location already exists or the room is gone.
	CreateLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (bool, error)
	// PushLocation adds a location unconditionally.
	PushLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) error
}

type RoomStoreConfig struct {
	Collection string
	Timeout    time.Duration
	Tolerance  float64
}

type MongoRoomRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	tolerance  float64
}

func NewMongoRoomRepository(db *mongo.Database, cfg RoomStoreConfig) *MongoRoomRepository {
	if cfg.Collection == "" {
		cfg.Collection = "room"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &MongoRoomRepository{
		collection: db.Collection(cfg.Collection),
		timeout:    cfg.Timeout,
		tolerance:  cfg.Tolerance,
	}
}

func (r *MongoRoomRepository) Create(ctx context.Context, room *model.Room) (err error) {
	defer observe("create_room", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if room.Locations == nil {
		room.Locations = []model.Location{}
	}
	if _, err := r.collection.InsertOne(ctx, room); err != nil {
		return storeError("create_room", err)
	}
	return nil
}

func (r *MongoRoomRepository) Delete(ctx context.Context, id string) (err error) {
	defer observe("delete_room", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete_room", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrRoomNotFound
	}
	return nil
}

func (r *MongoRoomRepository) FindByID(ctx context.Context, id string) (_ *model.Room, err error) {
	defer observe("find_room", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var room model.Room
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, storeError("find_room", err)
	}
	return &room, nil
}

func (r *MongoRoomRepository) FindAll(ctx context.Context, limit, offset int) (_ []*model.Room, err error) {
	defer observe("list_rooms", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeError("list_rooms", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.Room{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, storeError("list_rooms", err)
	}
	return rooms, nil
}

func (r *MongoRoomRepository) ClearLocations(ctx context.Context, id string) (err error) {
	defer observe("clear_locations", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"positions": []model.Location{}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return storeError("clear_locations", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrRoomNotFound
	}
	return nil
}

func (r *MongoRoomRepository) FindLocation(ctx context.Context, roomID string, coord model.Coordinate) (_ *model.Location, err error) {
	defer observe("find_location", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"positions": bson.M{"$elemMatch": r.coordinateFilter(coord)},
	})

	var room model.Room
	err = r.collection.FindOne(ctx, bson.M{"_id": roomID}, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, storeError("find_location", err)
	}
	if len(room.Locations) == 0 {
		return nil, nil
	}
	return &room.Locations[0], nil
}

func (r *MongoRoomRepository) AppendSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (_ bool, err error) {
	defer observe("append_samples", time.Now(), &err)
	update := bson.M{"$push": bson.M{"positions.$.wifi_stats": bson.M{"$each": samples}}}
	return r.updateLocation(ctx, "append_samples", roomID, coord, update)
}

func (r *MongoRoomRepository) ReplaceSamples(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (_ bool, err error) {
	defer observe("replace_samples", time.Now(), &err)
	update := bson.M{"$set": bson.M{"positions.$.wifi_stats": samples}}
	return r.updateLocation(ctx, "replace_samples", roomID, coord, update)
}

func (r *MongoRoomRepository) updateLocation(ctx context.Context, op, roomID string, coord model.Coordinate, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"_id":       roomID,
		"positions": bson.M{"$elemMatch": r.coordinateFilter(coord)},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, storeError(op, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRoomRepository) CreateLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (_ bool, err error) {
	defer observe("create_location", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The negated $elemMatch and the $push are applied to one document, so two
	// uploads racing on the same coordinate cannot both insert.
	filter := bson.M{
		"_id":       roomID,
		"positions": bson.M{"$not": bson.M{"$elemMatch": r.coordinateFilter(coord)}},
	}
	update := bson.M{"$push": bson.M{"positions": model.NewLocation(coord, samples)}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, storeError("create_location", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRoomRepository) PushLocation(ctx context.Context, roomID string, coord model.Coordinate, samples model.SampleSet) (err error) {
	defer observe("push_location", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$push": bson.M{"positions": model.NewLocation(coord, samples)}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return storeError("push_location", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrRoomNotFound
	}
	return nil
}

func (r *MongoRoomRepository) coordinateFilter(coord model.Coordinate) bson.M {
	if r.tolerance <= 0 {
		return bson.M{"x": coord.X, "y": coord.Y}
	}
	return bson.M{
		"x": bson.M{"$gte": coord.X - r.tolerance, "$lte": coord.X + r.tolerance},
		"y": bson.M{"$gte": coord.Y - r.tolerance, "$lte": coord.Y + r.tolerance},
	}
}

// storeError classifies driver failures. Timeouts and lost connections become
// ErrStoreUnavailable. A caller that went away gets context.Canceled back
// unchanged; anything else is reported as a *model.StoreError.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %s: %v", model.ErrStoreUnavailable, op, err)
	}
	return &model.StoreError{Op: op, Err: err}
}

func observe(op string, start time.Time, err *error) {
	var failure error
	if *err != nil && !errors.Is(*err, model.ErrRoomNotFound) && !errors.Is(*err, context.Canceled) {
		failure = *err
	}
	metrics.ObserveStoreOperation(op, start, failure)
}
