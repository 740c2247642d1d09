package config

import "time"

// Config is the full runtime configuration. It is loaded once and passed by
// value into the app builder; nothing reads configuration from globals.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Station StationConfig `mapstructure:"station"`
	USGS    USGSConfig    `mapstructure:"usgs"`
	Crests  CrestsConfig  `mapstructure:"crests"`
	Report  ReportConfig  `mapstructure:"report"`
	Store   StoreConfig   `mapstructure:"store"`
}

type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogPath   string `mapstructure:"log_path"`
	OutputDir string `mapstructure:"output_dir"`
}

// StationConfig identifies the gauging station and the analysis thresholds.
type StationConfig struct {
	ID string `mapstructure:"id"`
	// ReferenceStage is the stage (ft) at which rate-of-rise is sampled.
	ReferenceStage float64 `mapstructure:"reference_stage"`
	// MinYear skips crests before the station's instantaneous-value record
	// begins; fetching those windows would always come back empty.
	MinYear int `mapstructure:"min_year"`
}

type USGSConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	ParameterCode string        `mapstructure:"parameter_code"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CrestsConfig struct {
	CSVPath string `mapstructure:"csv_path"`
}

type ReportConfig struct {
	// Snapshot renders the chart HTML to PNG through headless Chrome.
	Snapshot bool   `mapstructure:"snapshot"`
	Serve    bool   `mapstructure:"serve"`
	Listen   string `mapstructure:"listen"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
