package config

import (
	"fmt"

	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
	"github.com/FocuswithJustin/JuniperSongbook/internal/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return cperrors.Wrap(err, "log.level")
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return cperrors.Wrap(err, "log.format")
	}
	if c.Cache.TTLSeconds < 0 {
		return cperrors.NewValidation("cache.ttl_seconds", fmt.Sprintf("must be >= 0, got %d", c.Cache.TTLSeconds))
	}
	if c.Cache.MaxEntries < 0 {
		return cperrors.NewValidation("cache.max_entries", fmt.Sprintf("must be >= 0, got %d", c.Cache.MaxEntries))
	}
	if c.Input.MaxBytes < 0 {
		return cperrors.NewValidation("input.max_bytes", fmt.Sprintf("must be positive, got %d", c.Input.MaxBytes))
	}
	return nil
}
