package config

import "fmt"

// OutputConfig selects where schedules, statistics and the chart are written.
type OutputConfig struct {
	Dir string `json:"dir"`
	// Formats lists the export formats: "csv", "json" or both.
	Formats []string `json:"formats"`
	// Chart is the HTML report file name inside Dir. "-" disables it.
	Chart string `json:"chart"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"csv", "json"}
	}
	if c.Chart == "" {
		c.Chart = "report.html"
	}
}

// Validate checks the export formats.
func (c OutputConfig) Validate() error {
	for _, f := range c.Formats {
		if f != "csv" && f != "json" {
			return fmt.Errorf("unknown format %s", f)
		}
	}
	return nil
}

// Has reports whether format is enabled.
func (c OutputConfig) Has(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ChartEnabled reports whether the HTML report should be rendered.
func (c OutputConfig) ChartEnabled() bool { return c.Chart != "-" }
