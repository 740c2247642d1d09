package hydrograph

import (
	"time"

	"crestline/internal/crest"
	"crestline/internal/gauge"
)

// Feature is one successfully processed historical event: the rate-of-rise
// measured where the hydrograph first reached the reference stage, paired
// with the crest the river eventually made.
type Feature struct {
	CrestDate   time.Time
	CrestHeight float64 // feet
	Rate        float64 // feet per hour, always > 0
	CrossTime   time.Time
}

// SkipReason tags why an event yielded no feature. Skips are data, not
// faults: the caller aggregates them instead of catching errors.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNoData          SkipReason = "no data"
	SkipNoCrossing      SkipReason = "never reached reference stage"
	SkipNonPositiveRate SkipReason = "non-positive or undefined rate"
)

// Outcome is the per-event result: either a Feature or a SkipReason.
type Outcome struct {
	Feature Feature
	Skip    SkipReason
}

func (o Outcome) Valid() bool { return o.Skip == SkipNone }

// Extract resamples the event window hourly, finds the leftmost bucket at or
// above referenceStage and reads the rate-of-rise there. A crossing with an
// undefined, zero or negative rate is excluded: the regression sample only
// admits rising-limb signals.
func Extract(rec crest.Record, readings []gauge.Reading, referenceStage float64) Outcome {
	if len(readings) == 0 {
		return Outcome{Skip: SkipNoData}
	}
	samples := Resample(readings)

	for _, s := range samples {
		if !s.HasMean || s.Mean < referenceStage {
			continue
		}
		if !s.HasRate || s.Rate <= 0 {
			return Outcome{Skip: SkipNonPositiveRate}
		}
		return Outcome{Feature: Feature{
			CrestDate:   rec.Date,
			CrestHeight: rec.Height,
			Rate:        s.Rate,
			CrossTime:   s.Hour,
		}}
	}
	return Outcome{Skip: SkipNoCrossing}
}
