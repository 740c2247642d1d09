// Package pipeline drives the per-event fetch and feature extraction over
// the full crest record set.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"crestline/internal/crest"
	"crestline/internal/gauge"
	"crestline/internal/hydrograph"
	"crestline/internal/logger"
)

// Fetch window around a crest: rivers typically take several days to rise
// to crest, and one day past it confirms the peak.
const (
	lookbackDays  = 4
	lookaheadDays = 1
)

// Skip tags added by the orchestrator itself, on top of the extraction
// reasons in the hydrograph package.
const (
	SkipEligibility hydrograph.SkipReason = "crest predates instantaneous-value record"
	SkipRetrieval   hydrograph.SkipReason = "retrieval error"
)

// Fetcher retrieves a gage-height series for a closed daily window.
type Fetcher interface {
	FetchStage(ctx context.Context, station string, start, end time.Time) ([]gauge.Reading, error)
}

type Config struct {
	Station        string
	ReferenceStage float64
	MinYear        int
}

// EventOutcome records how one crest record fared, valid or not.
type EventOutcome struct {
	Record  crest.Record
	Skip    hydrograph.SkipReason
	Detail  string
	Feature hydrograph.Feature
}

func (e EventOutcome) Valid() bool { return e.Skip == hydrograph.SkipNone }

// Result is the full pass over the record set.
type Result struct {
	Events   []EventOutcome
	Features []hydrograph.Feature
	Valid    int
	Skipped  int
}

type Pipeline struct {
	fetcher Fetcher
	cfg     Config
}

func New(fetcher Fetcher, cfg Config) *Pipeline {
	return &Pipeline{fetcher: fetcher, cfg: cfg}
}

// Run processes records in input order, one at a time. Every per-event
// failure is recovered locally and counted as a skip; no single event can
// abort the pass. Records before the configured minimum year are skipped
// without touching the network.
func (p *Pipeline) Run(ctx context.Context, records []crest.Record) Result {
	res := Result{Events: make([]EventOutcome, 0, len(records))}
	for _, rec := range records {
		outcome := p.processEvent(ctx, rec)
		res.Events = append(res.Events, outcome)
		if outcome.Valid() {
			res.Features = append(res.Features, outcome.Feature)
			res.Valid++
		} else {
			res.Skipped++
		}
	}
	return res
}

func (p *Pipeline) processEvent(ctx context.Context, rec crest.Record) EventOutcome {
	if rec.Year() < p.cfg.MinYear {
		logger.Debugf("skipping crest %s: before %d", rec.Date.Format("2006-01-02"), p.cfg.MinYear)
		return EventOutcome{Record: rec, Skip: SkipEligibility}
	}

	logger.Infof("Processing crest %s (height %.2f ft)", rec.Date.Format("2006-01-02"), rec.Height)
	start := rec.Date.AddDate(0, 0, -lookbackDays)
	end := rec.Date.AddDate(0, 0, lookaheadDays)

	readings, err := p.fetcher.FetchStage(ctx, p.cfg.Station, start, end)
	if err != nil {
		logger.Warnf("  -> ERROR fetching data: %v", err)
		return EventOutcome{Record: rec, Skip: SkipRetrieval, Detail: err.Error()}
	}

	outcome := hydrograph.Extract(rec, readings, p.cfg.ReferenceStage)
	if !outcome.Valid() {
		logger.Infof("  -> %s, skipping.", describeSkip(outcome.Skip, p.cfg.ReferenceStage))
		return EventOutcome{Record: rec, Skip: outcome.Skip}
	}

	logger.Infof("  -> Valid event. Rate at %.1f ft = %.3f ft/hr", p.cfg.ReferenceStage, outcome.Feature.Rate)
	return EventOutcome{Record: rec, Feature: outcome.Feature}
}

func describeSkip(reason hydrograph.SkipReason, referenceStage float64) string {
	switch reason {
	case hydrograph.SkipNoData:
		return "No IV data returned"
	case hydrograph.SkipNoCrossing:
		return fmt.Sprintf("Never reached %.1f ft in this window", referenceStage)
	case hydrograph.SkipNonPositiveRate:
		return "Rate at crossing is non-positive or undefined"
	default:
		return string(reason)
	}
}
