package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crestline/internal/crest"
	"crestline/internal/gateway/usgs"
	"crestline/internal/gauge"
	"crestline/internal/hydrograph"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchStage(ctx context.Context, station string, start, end time.Time) ([]gauge.Reading, error) {
	args := m.Called(ctx, station, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gauge.Reading), args.Error(1)
}

func testConfig() Config {
	return Config{Station: "02490500", ReferenceStage: 15.0, MinYear: 1990}
}

func record(year int, height float64) crest.Record {
	return crest.Record{Height: height, Date: time.Date(year, 3, 12, 0, 0, 0, 0, time.UTC)}
}

// risingSeries climbs from start by step per hour.
func risingSeries(base time.Time, start, step float64, hours int) []gauge.Reading {
	readings := make([]gauge.Reading, 0, hours)
	for i := 0; i < hours; i++ {
		readings = append(readings, gauge.Reading{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Stage: start + step*float64(i),
		})
	}
	return readings
}

// Scenario: a pre-minimum-year record is skipped before any network call.
func TestRunSkipsIneligibleYearWithoutFetching(t *testing.T) {
	fetcher := new(MockFetcher)
	pipe := New(fetcher, testConfig())

	records := []crest.Record{{Height: 34.70, Date: time.Date(1936, 2, 1, 0, 0, 0, 0, time.UTC)}}
	res := pipe.Run(context.Background(), records)

	assert.Equal(t, 0, res.Valid)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Events, 1)
	assert.Equal(t, SkipEligibility, res.Events[0].Skip)
	fetcher.AssertNotCalled(t, "FetchStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Scenario: a monotonically rising series crossing 15.0 ft at rate 0.8 ft/hr
// yields exactly one feature with that rate.
func TestRunValidEvent(t *testing.T) {
	rec := record(2020, 29.82)
	windowStart := rec.Date.AddDate(0, 0, -4)

	fetcher := new(MockFetcher)
	fetcher.On("FetchStage", mock.Anything, "02490500", windowStart, rec.Date.AddDate(0, 0, 1)).
		Return(risingSeries(windowStart, 7.0, 0.8, 24), nil)

	pipe := New(fetcher, testConfig())
	res := pipe.Run(context.Background(), []crest.Record{rec})

	require.Equal(t, 1, res.Valid)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Features, 1)
	assert.InDelta(t, 0.8, res.Features[0].Rate, 1e-9)
	assert.InDelta(t, 29.82, res.Features[0].CrestHeight, 1e-9)
	fetcher.AssertExpectations(t)
}

// Scenario: a retrieval failure is contained to its own event and the run
// continues.
func TestRunRetrievalErrorDoesNotAbort(t *testing.T) {
	failing := record(2016, 28.0)
	healthy := record(2020, 29.82)
	windowStart := healthy.Date.AddDate(0, 0, -4)

	fetcher := new(MockFetcher)
	fetcher.On("FetchStage", mock.Anything, "02490500", failing.Date.AddDate(0, 0, -4), failing.Date.AddDate(0, 0, 1)).
		Return(nil, &usgs.RetrievalError{Station: "02490500", Status: 500, Reason: "unexpected status"})
	fetcher.On("FetchStage", mock.Anything, "02490500", windowStart, healthy.Date.AddDate(0, 0, 1)).
		Return(risingSeries(windowStart, 7.0, 0.8, 24), nil)

	pipe := New(fetcher, testConfig())
	res := pipe.Run(context.Background(), []crest.Record{failing, healthy})

	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Events, 2)
	assert.Equal(t, SkipRetrieval, res.Events[0].Skip)
	assert.NotEmpty(t, res.Events[0].Detail)
	assert.True(t, res.Events[1].Valid())
	fetcher.AssertExpectations(t)
}

// Scenario: a well-formed empty response is a "no data" skip, not an error.
func TestRunNoDataSkip(t *testing.T) {
	rec := record(2018, 25.95)

	fetcher := new(MockFetcher)
	fetcher.On("FetchStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]gauge.Reading{}, nil)

	pipe := New(fetcher, testConfig())
	res := pipe.Run(context.Background(), []crest.Record{rec})

	assert.Equal(t, 0, res.Valid)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, hydrograph.SkipNoData, res.Events[0].Skip)
}

// The tally separates valid from skipped without caring about the mix of
// skip reasons.
func TestRunMixedTally(t *testing.T) {
	old := crest.Record{Height: 31.10, Date: time.Date(1945, 4, 17, 0, 0, 0, 0, time.UTC)}
	flat := record(2013, 26.80)
	good := record(2020, 27.10)
	goodStart := good.Date.AddDate(0, 0, -4)
	flatStart := flat.Date.AddDate(0, 0, -4)

	fetcher := new(MockFetcher)
	fetcher.On("FetchStage", mock.Anything, "02490500", flatStart, flat.Date.AddDate(0, 0, 1)).
		Return(risingSeries(flatStart, 5.0, 0.1, 24), nil) // never reaches 15.0
	fetcher.On("FetchStage", mock.Anything, "02490500", goodStart, good.Date.AddDate(0, 0, 1)).
		Return(risingSeries(goodStart, 10.0, 1.5, 24), nil)

	pipe := New(fetcher, testConfig())
	res := pipe.Run(context.Background(), []crest.Record{old, flat, good})

	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 2, res.Skipped)
}
