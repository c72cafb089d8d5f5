package positioning

import (
	"reflect"
	"testing"
	"time"

	"indoors/internal/core/model"
)

func sample(readings ...model.AccessPointReading) model.FingerprintSample {
	return model.FingerprintSample{Readings: readings, CapturedAt: time.Unix(1700000000, 0)}
}

func ap(bssid string, rssi int) model.AccessPointReading {
	return model.AccessPointReading{BSSID: bssid, RSSI: rssi, SSID: "lab"}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		samples model.SampleSet
		want    SignalProfile
	}{
		{
			name:    "empty set",
			samples: nil,
			want:    SignalProfile{},
		},
		{
			name: "mean of two readings",
			samples: model.SampleSet{
				sample(ap("A", -60)),
				sample(ap("A", -80)),
			},
			want: SignalProfile{"A": -70},
		},
		{
			name: "truncates toward zero",
			samples: model.SampleSet{
				sample(ap("A", -60)),
				sample(ap("A", -61)),
			},
			want: SignalProfile{"A": -60},
		},
		{
			name: "partial presence only counts own samples",
			samples: model.SampleSet{
				sample(ap("A", -50), ap("B", -90)),
				sample(ap("A", -70)),
				sample(ap("A", -60)),
			},
			want: SignalProfile{"A": -60, "B": -90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.samples)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateIsRepeatableAndOrderIndependent(t *testing.T) {
	samples := model.SampleSet{
		sample(ap("A", -41), ap("B", -77)),
		sample(ap("B", -70), ap("C", -55)),
		sample(ap("A", -44)),
	}
	reversed := model.SampleSet{samples[2], samples[1], samples[0]}

	first := Aggregate(samples)
	if second := Aggregate(samples); !reflect.DeepEqual(first, second) {
		t.Errorf("second Aggregate() = %v, want %v", second, first)
	}
	if got := Aggregate(reversed); !reflect.DeepEqual(first, got) {
		t.Errorf("Aggregate(reversed) = %v, want %v", got, first)
	}
}
