package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFingerprintSampleValidate(t *testing.T) {
	tests := []struct {
		name     string
		readings []AccessPointReading
		wantErr  bool
	}{
		{"valid", []AccessPointReading{{BSSID: "a", RSSI: -40}, {BSSID: "b", RSSI: -70}}, false},
		{"empty", nil, true},
		{"missing bssid", []AccessPointReading{{RSSI: -40}}, true},
		{"duplicate bssid", []AccessPointReading{{BSSID: "a", RSSI: -40}, {BSSID: "a", RSSI: -41}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFingerprintSample(tt.readings, time.Time{}).Validate()
			if tt.wantErr && !errors.Is(err, ErrMalformedSample) {
				t.Errorf("Validate() error = %v, want ErrMalformedSample", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestCoordinateMatches(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinate
		tolerance float64
		want      bool
	}{
		{"exact equal", Coordinate{1, 2}, Coordinate{1, 2}, 0, true},
		{"exact differs", Coordinate{1, 2}, Coordinate{1.0000001, 2}, 0, false},
		{"within tolerance", Coordinate{1, 2}, Coordinate{1.04, 1.97}, 0.05, true},
		{"outside tolerance on one axis", Coordinate{1, 2}, Coordinate{1.04, 2.2}, 0.05, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Matches(tt.b, tt.tolerance); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoomFindLocation(t *testing.T) {
	room := NewRoom("lab", 10, 8, "")
	room.Locations = append(room.Locations,
		Location{X: 1, Y: 1},
		Location{X: 2, Y: 3},
	)

	if got := room.FindLocation(Coordinate{X: 2, Y: 3}, 0); got != 1 {
		t.Errorf("FindLocation() = %d, want 1", got)
	}
	if got := room.FindLocation(Coordinate{X: 5, Y: 5}, 0); got != -1 {
		t.Errorf("FindLocation() = %d, want -1", got)
	}
	if room.ID == "" {
		t.Error("NewRoom() did not assign an ID")
	}
}

func TestFingerprintSampleJSONUsesEpochMillis(t *testing.T) {
	sample := NewFingerprintSample([]AccessPointReading{{BSSID: "a", RSSI: -40}}, time.UnixMilli(1700000000123))

	data, err := json.Marshal(sample)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"upload_time":1700000000123`) {
		t.Errorf("Marshal() = %s, want upload_time in epoch milliseconds", data)
	}

	var decoded FingerprintSample
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if !decoded.CapturedAt.Equal(sample.CapturedAt) || decoded.Readings[0].BSSID != "a" {
		t.Errorf("Unmarshal() = %+v, want %+v", decoded, sample)
	}
}
