package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// AccessPointReading is one access point seen in a WiFi scan.
type AccessPointReading struct {
	BSSID string `bson:"BSSID" json:"BSSID"`
	RSSI  int    `bson:"RSSI" json:"RSSI"`
	SSID  string `bson:"SSID" json:"SSID"`
}

// FingerprintSample is a single scan captured at one instant.
type FingerprintSample struct {
	Readings   []AccessPointReading `bson:"wifi_stat" json:"wifi_stat"`
	CapturedAt time.Time            `bson:"upload_time"`
}

type fingerprintSampleJSON struct {
	Readings   []AccessPointReading `json:"wifi_stat"`
	UploadTime int64                `json:"upload_time"`
}

// MarshalJSON writes upload_time as epoch milliseconds, the form clients upload.
func (s FingerprintSample) MarshalJSON() ([]byte, error) {
	return json.Marshal(fingerprintSampleJSON{
		Readings:   s.Readings,
		UploadTime: s.CapturedAt.UnixMilli(),
	})
}

func (s *FingerprintSample) UnmarshalJSON(data []byte) error {
	var raw fingerprintSampleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Readings = raw.Readings
	s.CapturedAt = time.UnixMilli(raw.UploadTime).UTC()
	return nil
}

// SampleSet holds every sample recorded at one coordinate, oldest first.
type SampleSet []FingerprintSample

func NewFingerprintSample(readings []AccessPointReading, capturedAt time.Time) FingerprintSample {
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	return FingerprintSample{
		Readings:   readings,
		CapturedAt: capturedAt.UTC(),
	}
}

// Validate rejects samples that would skew a signal profile: empty scans,
// readings without a BSSID and repeated BSSIDs.
func (s FingerprintSample) Validate() error {
	if len(s.Readings) == 0 {
		return fmt.Errorf("%w: no readings", ErrMalformedSample)
	}

	seen := make(map[string]struct{}, len(s.Readings))
	for i, reading := range s.Readings {
		if reading.BSSID == "" {
			return fmt.Errorf("%w: reading %d has no BSSID", ErrMalformedSample, i)
		}
		if _, dup := seen[reading.BSSID]; dup {
			return fmt.Errorf("%w: duplicate access point %s", ErrMalformedSample, reading.BSSID)
		}
		seen[reading.BSSID] = struct{}{}
	}
	return nil
}
