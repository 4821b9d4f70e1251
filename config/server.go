package config

// ServerConfig defines settings for the HTTP and WebSocket listener.
type ServerConfig struct {
	// Addr is the listen address for the public listener.
	Addr string `json:"addr"`
	// AdminToken protects the admin endpoints when non-empty.
	AdminToken string `json:"admin_token"`
	// FleetReportSeconds is the interval for registry size metrics.
	FleetReportSeconds int `json:"fleet_report_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.FleetReportSeconds <= 0 {
		c.FleetReportSeconds = 15
	}
}
