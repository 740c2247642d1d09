package config

import (
	"fmt"
	"strings"
)

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Station.ID) == "" {
		return fmt.Errorf("station.id is required")
	}
	if cfg.Station.ReferenceStage <= 0 {
		return fmt.Errorf("station.reference_stage must be positive, got %v", cfg.Station.ReferenceStage)
	}
	if cfg.Station.MinYear <= 0 {
		return fmt.Errorf("station.min_year must be positive, got %d", cfg.Station.MinYear)
	}
	if strings.TrimSpace(cfg.Crests.CSVPath) == "" {
		return fmt.Errorf("crests.csv_path is required")
	}
	if strings.TrimSpace(cfg.USGS.BaseURL) == "" {
		return fmt.Errorf("usgs.base_url is required")
	}
	if strings.TrimSpace(cfg.USGS.ParameterCode) == "" {
		return fmt.Errorf("usgs.parameter_code is required")
	}
	if cfg.USGS.Timeout <= 0 {
		return fmt.Errorf("usgs.timeout must be positive, got %v", cfg.USGS.Timeout)
	}
	if cfg.Store.Enabled && strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store.enabled is true")
	}
	if cfg.Report.Serve && strings.TrimSpace(cfg.Report.Listen) == "" {
		return fmt.Errorf("report.listen is required when report.serve is true")
	}
	return nil
}
