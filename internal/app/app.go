// Package app wires configuration into the analysis pipeline and runs it
// end to end.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"crestline/internal/analysis"
	"crestline/internal/analysis/visual"
	"crestline/internal/config"
	"crestline/internal/crest"
	"crestline/internal/gateway/usgs"
	"crestline/internal/logger"
	"crestline/internal/pipeline"
	"crestline/internal/store/runstore"
	reporthttp "crestline/internal/transport/http/report"
)

const (
	chartHTMLName = "crest_analysis.html"
	chartPNGName  = "crest_analysis.png"
)

type App struct {
	cfg *config.Config
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &App{cfg: cfg}, nil
}

// Run executes one full pass: parse crests, fetch and extract per event,
// fit the regression, report, chart, and optionally persist and serve.
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfg

	records, err := a.loadCrests()
	if err != nil {
		return err
	}
	logger.Infof("Total historic crest entries in table: %d", len(records))

	fetcher := usgs.New(usgs.Config{
		BaseURL:       cfg.USGS.BaseURL,
		ParameterCode: cfg.USGS.ParameterCode,
		Timeout:       cfg.USGS.Timeout,
	})
	pipe := pipeline.New(fetcher, pipeline.Config{
		Station:        cfg.Station.ID,
		ReferenceStage: cfg.Station.ReferenceStage,
		MinYear:        cfg.Station.MinYear,
	})

	logger.Infof("Fetching USGS IV data for events (%s, reference stage %.1f ft)...",
		cfg.Station.ID, cfg.Station.ReferenceStage)
	result := pipe.Run(ctx, records)

	logger.InfoBlock(tallyBlock(result))

	if result.Valid == 0 {
		logger.Warnf("No valid events with both crest height and rate-of-rise. Nothing to analyze.")
		return nil
	}

	fit, err := analysis.Fit(result.Features)
	if err != nil {
		return err
	}
	logger.InfoBlock(resultsBlock(fit))

	chartHTML, err := a.renderChart(ctx, result, fit)
	if err != nil {
		return err
	}

	if cfg.Store.Enabled {
		a.persistRun(ctx, len(records), result, fit)
	}

	if cfg.Report.Serve {
		return a.serveReport(ctx, len(records), result, fit, chartHTML)
	}
	return nil
}

func (a *App) loadCrests() ([]crest.Record, error) {
	f, err := os.Open(a.cfg.Crests.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("opening crest table failed: %w", err)
	}
	defer f.Close()
	return crest.ParseTable(f)
}

func (a *App) renderChart(ctx context.Context, result pipeline.Result, fit analysis.Regression) ([]byte, error) {
	html, err := visual.RenderHTML(visual.Input{
		Station:        a.cfg.Station.ID,
		ReferenceStage: a.cfg.Station.ReferenceStage,
		Features:       result.Features,
		Fit:            fit,
	})
	if err != nil {
		return nil, err
	}

	outDir := a.cfg.App.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	htmlPath := filepath.Join(outDir, chartHTMLName)
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return nil, err
	}
	logger.Infof("Chart written to %s", htmlPath)

	if a.cfg.Report.Snapshot {
		png, err := visual.RenderPNG(ctx, html)
		if err != nil {
			// The interactive HTML already exists; a missing headless
			// Chrome should not fail the run.
			logger.Warnf("PNG snapshot failed: %v", err)
		} else {
			pngPath := filepath.Join(outDir, chartPNGName)
			if err := os.WriteFile(pngPath, png, 0o644); err != nil {
				return nil, err
			}
			logger.Infof("Snapshot written to %s", pngPath)
		}
	}
	return html, nil
}

func (a *App) persistRun(ctx context.Context, parsed int, result pipeline.Result, fit analysis.Regression) {
	store, err := runstore.Open(a.cfg.Store.Path)
	if err != nil {
		logger.Errorf("opening run store failed: %v", err)
		return
	}
	defer store.Close()

	runID, err := store.SaveRun(ctx, runstore.RunRecord{
		Station:        a.cfg.Station.ID,
		ReferenceStage: a.cfg.Station.ReferenceStage,
		MinYear:        a.cfg.Station.MinYear,
		ParsedRecords:  parsed,
		Result:         result,
		Fit:            fit,
	})
	if err != nil {
		logger.Errorf("persisting run failed: %v", err)
		return
	}
	logger.Infof("Run persisted as %s", runID)
}

func (a *App) serveReport(ctx context.Context, parsed int, result pipeline.Result, fit analysis.Regression, chartHTML []byte) error {
	router := reporthttp.NewRouter(a.cfg.Station.ID, a.cfg.Station.ReferenceStage, parsed, result, fit, chartHTML)
	srv := &http.Server{
		Addr:    a.cfg.Report.Listen,
		Handler: router.Engine(),
	}
	logger.Infof("Serving report on %s (interrupt to stop)", a.cfg.Report.Listen)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func tallyBlock(result pipeline.Result) string {
	var b strings.Builder
	b.WriteString("==============================\n")
	fmt.Fprintf(&b, "Valid events used in analysis:   %d\n", result.Valid)
	fmt.Fprintf(&b, "Events skipped (any reason):     %d\n", result.Skipped)
	b.WriteString("==============================")
	return b.String()
}

func resultsBlock(fit analysis.Regression) string {
	var b strings.Builder
	b.WriteString("--- ANALYSIS RESULTS ---\n")
	fmt.Fprintf(&b, "Events analyzed successfully: %d\n", fit.N)
	fmt.Fprintf(&b, "Correlation (r):                %.2f\n", fit.R)
	fmt.Fprintf(&b, "Variance explained (R²):        %.2f\n", fit.RSquared)
	b.WriteString("Regression formula:\n")
	fmt.Fprintf(&b, "  %s\n", fit.Formula())
	fmt.Fprintf(&b, "P-value for slope: %.4g\n", fit.PValue)
	fmt.Fprintf(&b, "Std error of slope: %.3f", fit.StdErr)
	return b.String()
}
