// Package hydrograph derives the rate-of-rise feature from a raw gage-height
// series around one crest event.
package hydrograph

import (
	"time"

	"crestline/internal/gauge"
)

// Resample buckets an irregular series into a contiguous hourly grid from
// the first to the last observed hour. Buckets are wall-clock-hour aligned
// (truncation of the absolute instant), each bucket's mean is the arithmetic
// mean of the raw readings falling inside it, and empty buckets carry no
// value. Rate is the first difference from the immediately preceding
// bucket's mean; it is undefined for the first bucket and for any bucket
// whose predecessor has no value.
func Resample(readings []gauge.Reading) []gauge.HourlySample {
	if len(readings) == 0 {
		return nil
	}

	type bucket struct {
		sum float64
		n   int
	}
	buckets := make(map[int64]bucket)
	minHour := readings[0].Time.Truncate(time.Hour).Unix()
	maxHour := minHour
	for _, r := range readings {
		h := r.Time.Truncate(time.Hour).Unix()
		b := buckets[h]
		b.sum += r.Stage
		b.n++
		buckets[h] = b
		if h < minHour {
			minHour = h
		}
		if h > maxHour {
			maxHour = h
		}
	}

	const hourSeconds = int64(time.Hour / time.Second)
	samples := make([]gauge.HourlySample, 0, (maxHour-minHour)/hourSeconds+1)
	prevMean := 0.0
	prevHasMean := false
	for h := minHour; h <= maxHour; h += hourSeconds {
		sample := gauge.HourlySample{Hour: time.Unix(h, 0).UTC()}
		if b, ok := buckets[h]; ok {
			sample.Mean = b.sum / float64(b.n)
			sample.HasMean = true
			if prevHasMean {
				sample.Rate = sample.Mean - prevMean
				sample.HasRate = true
			}
		}
		prevMean = sample.Mean
		prevHasMean = sample.HasMean
		samples = append(samples, sample)
	}
	return samples
}
