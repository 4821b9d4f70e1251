package dispatch

import "fmt"

// Config defines dispatch-related settings.
type Config struct {
	OfferTimeoutSeconds int     `json:"offer_timeout_seconds"`
	SearchRadiusKm      float64 `json:"search_radius_km"`
	MaxCandidates       int     `json:"max_candidates"`
	TunerEnabled        bool    `json:"tuner_enabled"`
	MinTimeoutSeconds   int     `json:"min_timeout_seconds"`
	MaxTimeoutSeconds   int     `json:"max_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.OfferTimeoutSeconds <= 0 {
		c.OfferTimeoutSeconds = 30
	}
	if c.SearchRadiusKm <= 0 {
		c.SearchRadiusKm = 5
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 5
	}
	if c.MinTimeoutSeconds <= 0 {
		c.MinTimeoutSeconds = 5
	}
	if c.MaxTimeoutSeconds <= 0 {
		c.MaxTimeoutSeconds = 120
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MinTimeoutSeconds > c.MaxTimeoutSeconds {
		return fmt.Errorf("min_timeout_seconds %d exceeds max_timeout_seconds %d", c.MinTimeoutSeconds, c.MaxTimeoutSeconds)
	}
	return nil
}
