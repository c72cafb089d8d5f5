package model

import (
	"math"

	"indoors/internal/core/util"
)

// Coordinate is a point on the room's floor plan.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Matches reports whether c and other name the same sampling location.
// A zero tolerance means exact equality on both axes.
func (c Coordinate) Matches(other Coordinate, tolerance float64) bool {
	if tolerance <= 0 {
		return c.X == other.X && c.Y == other.Y
	}
	return math.Abs(c.X-other.X) <= tolerance && math.Abs(c.Y-other.Y) <= tolerance
}

// Location is a sampled coordinate together with every fingerprint uploaded for it.
type Location struct {
	X       float64   `bson:"x" json:"x"`
	Y       float64   `bson:"y" json:"y"`
	Samples SampleSet `bson:"wifi_stats" json:"wifi_stats"`
}

func NewLocation(coord Coordinate, samples SampleSet) Location {
	return Location{
		X:       coord.X,
		Y:       coord.Y,
		Samples: append(SampleSet(nil), samples...),
	}
}

func (l Location) Coordinate() Coordinate {
	return Coordinate{X: l.X, Y: l.Y}
}

type Room struct {
	ID        string     `bson:"_id" json:"_id"`
	Name      string     `bson:"room_name" json:"room_name"`
	Width     float64    `bson:"width" json:"width"`
	Height    float64    `bson:"height" json:"height"`
	ImageURL  string     `bson:"image_url" json:"image_url"`
	Locations []Location `bson:"positions" json:"positions"`
}

func NewRoom(name string, width, height float64, imageURL string) *Room {
	return &Room{
		ID:        util.GenerateID(),
		Name:      name,
		Width:     width,
		Height:    height,
		ImageURL:  imageURL,
		Locations: []Location{},
	}
}

// FindLocation returns the index of the first location matching coord, or -1.
func (r *Room) FindLocation(coord Coordinate, tolerance float64) int {
	for i, loc := range r.Locations {
		if loc.Coordinate().Matches(coord, tolerance) {
			return i
		}
	}
	return -1
}
