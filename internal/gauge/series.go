// Package gauge holds the time-series domain types shared by the fetcher
// and the hydrograph analysis.
package gauge

import (
	"sort"
	"time"
)

// Reading is one instantaneous gage-height observation.
type Reading struct {
	Time  time.Time
	Stage float64 // feet
}

// SortReadings orders readings by time in place.
func SortReadings(readings []Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Time.Before(readings[j].Time)
	})
}

// HourlySample is one bucket of an hourly resampled series. Mean is the
// arithmetic mean of the raw readings in the hour; Rate is the first
// difference from the previous bucket's mean. Either can be absent when the
// bucket (or its predecessor) held no readings.
type HourlySample struct {
	Hour    time.Time
	Mean    float64
	Rate    float64
	HasMean bool
	HasRate bool
}
