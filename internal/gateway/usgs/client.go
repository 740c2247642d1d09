// Package usgs fetches instantaneous gage-height series from the USGS NWIS
// water services API.
package usgs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"crestline/internal/gauge"
)

const (
	defaultBaseURL       = "https://nwis.waterservices.usgs.gov/nwis/iv/"
	defaultParameterCode = "00065" // gage height, feet
	defaultTimeout       = 20 * time.Second
	dateLayout           = "2006-01-02"
)

// RetrievalError is a hard fetch failure: the request could not complete,
// the service answered with a non-2xx status, or the body was not valid
// JSON. An empty-but-well-formed response is not a RetrievalError.
type RetrievalError struct {
	Station string
	Status  int
	Reason  string
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("usgs retrieval failed (site %s): %s: %v", e.Station, e.Reason, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("usgs retrieval failed (site %s): %s (status %d)", e.Station, e.Reason, e.Status)
	}
	return fmt.Sprintf("usgs retrieval failed (site %s): %s", e.Station, e.Reason)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

type Config struct {
	BaseURL       string
	ParameterCode string
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.ParameterCode) == "" {
		c.ParameterCode = defaultParameterCode
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Client issues one best-effort request per fetch window. No retries; a
// failed call is the caller's skip to account for.
type Client struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Client {
	final := cfg.withDefaults()
	return &Client{
		cfg:    final,
		client: &http.Client{Timeout: final.Timeout},
	}
}

// FetchStage retrieves gage-height readings for the closed daily window
// [start, end]. Readings with non-numeric values are dropped. A well-formed
// response with zero time series returns (nil, nil): no data for the window.
func (c *Client) FetchStage(ctx context.Context, station string, start, end time.Time) ([]gauge.Reading, error) {
	station = strings.TrimSpace(station)
	if station == "" {
		return nil, fmt.Errorf("station is required")
	}

	q := url.Values{}
	q.Set("site", station)
	q.Set("startDT", start.Format(dateLayout))
	q.Set("endDT", end.Format(dateLayout))
	q.Set("parameterCd", c.cfg.ParameterCode)
	q.Set("format", "json")
	reqURL := c.cfg.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RetrievalError{Station: station, Reason: "building request", Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RetrievalError{Station: station, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RetrievalError{Station: station, Status: resp.StatusCode, Reason: "unexpected status"}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Station: station, Reason: "reading body", Err: err}
	}
	return parseWaterML(station, body)
}

// parseWaterML extracts readings from a WaterML-JSON body: the first time
// series' first value block only, matching how the station publishes a
// single gage-height series.
func parseWaterML(station string, body []byte) ([]gauge.Reading, error) {
	if !gjson.ValidBytes(body) {
		return nil, &RetrievalError{Station: station, Reason: "malformed JSON body"}
	}
	series := gjson.GetBytes(body, "value.timeSeries")
	if !series.IsArray() || len(series.Array()) == 0 {
		return nil, nil
	}
	points := gjson.GetBytes(body, "value.timeSeries.0.values.0.value")

	var readings []gauge.Reading
	points.ForEach(func(_, point gjson.Result) bool {
		raw := point.Get("value").String()
		stage, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			// Missing-data sentinel or junk value.
			return true
		}
		ts, err := time.Parse(time.RFC3339, point.Get("dateTime").String())
		if err != nil {
			return true
		}
		readings = append(readings, gauge.Reading{Time: ts, Stage: stage})
		return true
	})
	gauge.SortReadings(readings)
	return readings, nil
}
