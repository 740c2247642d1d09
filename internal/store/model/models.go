package model

import "gorm.io/datatypes"

// AnalysisRunModel maps to 'analysis_run': one row per completed pass over
// the crest record set, including the fitted regression.
type AnalysisRunModel struct {
	ID             string  `gorm:"column:id;primaryKey"`
	Station        string  `gorm:"column:station;index"`
	ReferenceStage float64 `gorm:"column:reference_stage"`
	MinYear        int     `gorm:"column:min_year"`
	ParsedRecords  int     `gorm:"column:parsed_records"`
	ValidEvents    int     `gorm:"column:valid_events"`
	SkippedEvents  int     `gorm:"column:skipped_events"`
	Slope          float64 `gorm:"column:slope"`
	Intercept      float64 `gorm:"column:intercept"`
	Correlation    float64 `gorm:"column:correlation"`
	RSquared       float64 `gorm:"column:r_squared"`
	PValue         float64 `gorm:"column:p_value"`
	StdErr         float64 `gorm:"column:std_err"`
	CreatedAtUnix  int64   `gorm:"column:created_at"`
}

func (AnalysisRunModel) TableName() string { return "analysis_run" }

// EventOutcomeModel maps to 'event_outcome': one row per crest record in a
// run, valid or skipped. Detail carries the skip reason payload as JSON.
type EventOutcomeModel struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string         `gorm:"column:run_id;index"`
	CrestDate   string         `gorm:"column:crest_date"`
	CrestHeight float64        `gorm:"column:crest_height"`
	Valid       int            `gorm:"column:valid"`
	RateOfRise  float64        `gorm:"column:rate_of_rise"`
	CrossTime   int64          `gorm:"column:cross_time"`
	Detail      datatypes.JSON `gorm:"column:detail"`
}

func (EventOutcomeModel) TableName() string { return "event_outcome" }
