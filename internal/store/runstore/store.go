// Package runstore persists completed analysis runs to SQLite.
package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crestline/internal/analysis"
	"crestline/internal/pipeline"
	storemodel "crestline/internal/store/model"
)

type analysisRunModel = storemodel.AnalysisRunModel
type eventOutcomeModel = storemodel.EventOutcomeModel

// Store persists runs and their per-event outcomes using Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

// Open initializes the store at path, migrating the schema if needed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("runstore: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&analysisRunModel{}, &eventOutcomeModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One writer at the end of a run; keep the pool minimal.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunRecord is everything persisted about one completed run.
type RunRecord struct {
	Station        string
	ReferenceStage float64
	MinYear        int
	ParsedRecords  int
	Result         pipeline.Result
	Fit            analysis.Regression
}

type skipDetail struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// SaveRun writes the run row plus one outcome row per processed record in a
// single transaction and returns the generated run id.
func (s *Store) SaveRun(ctx context.Context, run RunRecord) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("runstore: not initialized")
	}
	runID := uuid.NewString()
	row := analysisRunModel{
		ID:             runID,
		Station:        run.Station,
		ReferenceStage: run.ReferenceStage,
		MinYear:        run.MinYear,
		ParsedRecords:  run.ParsedRecords,
		ValidEvents:    run.Result.Valid,
		SkippedEvents:  run.Result.Skipped,
		Slope:          run.Fit.Slope,
		Intercept:      run.Fit.Intercept,
		Correlation:    run.Fit.R,
		RSquared:       run.Fit.RSquared,
		PValue:         run.Fit.PValue,
		StdErr:         run.Fit.StdErr,
		CreatedAtUnix:  time.Now().Unix(),
	}

	events := make([]eventOutcomeModel, 0, len(run.Result.Events))
	for _, ev := range run.Result.Events {
		m := eventOutcomeModel{
			RunID:       runID,
			CrestDate:   ev.Record.Date.Format("2006-01-02"),
			CrestHeight: ev.Record.Height,
		}
		if ev.Valid() {
			m.Valid = 1
			m.RateOfRise = ev.Feature.Rate
			m.CrossTime = ev.Feature.CrossTime.Unix()
		} else {
			detail, err := json.Marshal(skipDetail{Reason: string(ev.Skip), Detail: ev.Detail})
			if err != nil {
				return "", err
			}
			m.Detail = detail
		}
		events = append(events, m)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return tx.CreateInBatches(events, 200).Error
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storemodel.AnalysisRunModel, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("runstore: not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []storemodel.AnalysisRunModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
