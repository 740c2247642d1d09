// Package reporthttp serves the finished analysis: the interactive chart and
// a JSON view of the summary and per-event outcomes.
package reporthttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crestline/internal/analysis"
	"crestline/internal/pipeline"
)

// Summary is the JSON shape of a completed run.
type Summary struct {
	Station        string  `json:"station"`
	ReferenceStage float64 `json:"reference_stage"`
	ParsedRecords  int     `json:"parsed_records"`
	ValidEvents    int     `json:"valid_events"`
	SkippedEvents  int     `json:"skipped_events"`
	Slope          float64 `json:"slope"`
	Intercept      float64 `json:"intercept"`
	Correlation    float64 `json:"correlation"`
	RSquared       float64 `json:"r_squared"`
	PValue         float64 `json:"p_value"`
	StdErr         float64 `json:"std_err"`
}

type eventView struct {
	CrestDate   string  `json:"crest_date"`
	CrestHeight float64 `json:"crest_height"`
	Valid       bool    `json:"valid"`
	RateOfRise  float64 `json:"rate_of_rise,omitempty"`
	CrossTime   string  `json:"cross_time,omitempty"`
	SkipReason  string  `json:"skip_reason,omitempty"`
	SkipDetail  string  `json:"skip_detail,omitempty"`
}

// Router exposes one finished run. The data is immutable after construction,
// so handlers need no locking.
type Router struct {
	summary Summary
	events  []eventView
	chart   []byte
}

func NewRouter(station string, referenceStage float64, parsed int, result pipeline.Result, fit analysis.Regression, chartHTML []byte) *Router {
	events := make([]eventView, 0, len(result.Events))
	for _, ev := range result.Events {
		view := eventView{
			CrestDate:   ev.Record.Date.Format("2006-01-02"),
			CrestHeight: ev.Record.Height,
			Valid:       ev.Valid(),
		}
		if ev.Valid() {
			view.RateOfRise = ev.Feature.Rate
			view.CrossTime = ev.Feature.CrossTime.Format(time.RFC3339)
		} else {
			view.SkipReason = string(ev.Skip)
			view.SkipDetail = ev.Detail
		}
		events = append(events, view)
	}
	return &Router{
		summary: Summary{
			Station:        station,
			ReferenceStage: referenceStage,
			ParsedRecords:  parsed,
			ValidEvents:    result.Valid,
			SkippedEvents:  result.Skipped,
			Slope:          fit.Slope,
			Intercept:      fit.Intercept,
			Correlation:    fit.R,
			RSquared:       fit.RSquared,
			PValue:         fit.PValue,
			StdErr:         fit.StdErr,
		},
		events: events,
		chart:  chartHTML,
	}
}

// Engine builds the gin engine with the chart at / and the API under /api.
func (r *Router) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/", r.handleChart)
	r.Register(engine.Group("/api"))
	return engine
}

// Register mounts the JSON endpoints under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/summary", r.handleSummary)
	group.GET("/events", r.handleEvents)
}

func (r *Router) handleChart(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", r.chart)
}

func (r *Router) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, r.summary)
}

func (r *Router) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": r.events})
}
