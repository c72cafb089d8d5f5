// Package positioning turns stored fingerprint samples into per-location
// signal profiles and matches a live scan against them.
package positioning

import "indoors/internal/core/model"

// SignalProfile maps a BSSID to its representative RSSI at one location.
type SignalProfile map[string]int

// Aggregate averages every access point's RSSI over the samples that saw it.
// Access points missing from a sample are not imputed. The mean uses integer
// division, truncating toward zero.
func Aggregate(samples model.SampleSet) SignalProfile {
	type accumulator struct {
		sum   int
		count int
	}

	acc := make(map[string]*accumulator)
	for _, sample := range samples {
		for _, reading := range sample.Readings {
			a, ok := acc[reading.BSSID]
			if !ok {
				a = &accumulator{}
				acc[reading.BSSID] = a
			}
			a.sum += reading.RSSI
			a.count++
		}
	}

	profile := make(SignalProfile, len(acc))
	for bssid, a := range acc {
		profile[bssid] = a.sum / a.count
	}
	return profile
}
