package config

import "strings"

// Normalize canonicalizes string settings and fills zero values that have
// no meaning with defaults. It never fails.
func (c *Config) Normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.Input.MaxBytes == 0 {
		c.Input.MaxBytes = defaultInputMaxBytes
	}
}
