package reporthttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crestline/internal/analysis"
	"crestline/internal/crest"
	"crestline/internal/hydrograph"
	"crestline/internal/pipeline"
)

func testRouter() *Router {
	date := time.Date(2020, 3, 12, 0, 0, 0, 0, time.UTC)
	result := pipeline.Result{
		Events: []pipeline.EventOutcome{
			{
				Record: crest.Record{Height: 29.82, Date: date},
				Feature: hydrograph.Feature{
					CrestDate:   date,
					CrestHeight: 29.82,
					Rate:        0.8,
					CrossTime:   date.Add(-30 * time.Hour),
				},
			},
			{
				Record: crest.Record{Height: 34.70, Date: time.Date(1936, 2, 1, 0, 0, 0, 0, time.UTC)},
				Skip:   pipeline.SkipEligibility,
			},
		},
		Valid:   1,
		Skipped: 1,
	}
	fit := analysis.Regression{Slope: 11.5, Intercept: 17.8, R: 0.9, RSquared: 0.81, N: 1}
	return NewRouter("02490500", 15.0, 2, result, fit, []byte("<html>chart</html>"))
}

func TestChartEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	testRouter().Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>chart</html>", w.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	testRouter().Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "02490500", got.Station)
	assert.Equal(t, 1, got.ValidEvents)
	assert.Equal(t, 1, got.SkippedEvents)
	assert.InDelta(t, 0.81, got.RSquared, 1e-9)
}

func TestEventsEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	testRouter().Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Events []eventView `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Events, 2)
	assert.True(t, got.Events[0].Valid)
	assert.InDelta(t, 0.8, got.Events[0].RateOfRise, 1e-9)
	assert.False(t, got.Events[1].Valid)
	assert.Equal(t, string(pipeline.SkipEligibility), got.Events[1].SkipReason)
}
