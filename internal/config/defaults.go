package config

import "github.com/spf13/viper"

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.output_dir", "output")

	v.SetDefault("station.reference_stage", 15.0)
	v.SetDefault("station.min_year", 1990)

	v.SetDefault("usgs.base_url", "https://nwis.waterservices.usgs.gov/nwis/iv/")
	// 00065 is the NWIS parameter code for gage height in feet.
	v.SetDefault("usgs.parameter_code", "00065")
	v.SetDefault("usgs.timeout", "20s")

	v.SetDefault("report.snapshot", false)
	v.SetDefault("report.serve", false)
	v.SetDefault("report.listen", ":8089")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "output/crestline.db")
}
