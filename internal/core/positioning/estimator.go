package positioning

import (
	"indoors/internal/core/model"
)

// Candidate is a known location offered to the estimator.
type Candidate struct {
	Coordinate model.Coordinate
	Profile    SignalProfile
}

// CandidatesFromRoom aggregates every location of room, keeping stored order.
func CandidatesFromRoom(room *model.Room) []Candidate {
	candidates := make([]Candidate, 0, len(room.Locations))
	for _, loc := range room.Locations {
		candidates = append(candidates, Candidate{
			Coordinate: loc.Coordinate(),
			Profile:    Aggregate(loc.Samples),
		})
	}
	return candidates
}

// Distance is the mean squared RSSI difference over the access points seen
// by both the query and the profile. ok is false when they share none.
func Distance(query model.FingerprintSample, profile SignalProfile) (distance float64, ok bool) {
	var sum, shared int
	for _, reading := range query.Readings {
		rssi, found := profile[reading.BSSID]
		if !found {
			continue
		}
		diff := reading.RSSI - rssi
		sum += diff * diff
		shared++
	}
	if shared == 0 {
		return 0, false
	}
	return float64(sum) / float64(shared), true
}

// Estimate returns the coordinate of the closest candidate. Candidates without
// a common access point are skipped, and on equal distance the earlier one wins.
func Estimate(query model.FingerprintSample, candidates []Candidate) (model.Coordinate, error) {
	best := -1
	var bestDistance float64

	for i, candidate := range candidates {
		d, ok := Distance(query, candidate.Profile)
		if !ok {
			continue
		}
		if best < 0 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	if best < 0 {
		return model.Coordinate{}, model.ErrNoCandidates
	}
	return candidates[best].Coordinate, nil
}
