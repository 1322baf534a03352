package config

const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultStrictBlocks    = false
	defaultRejectUnknown   = false
	defaultCacheTTLSeconds = 300
	defaultCacheMaxEntries = 256
	defaultInputMaxBytes   = 4 << 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Policy: Policy{
			StrictBlocks:            defaultStrictBlocks,
			RejectUnknownDirectives: defaultRejectUnknown,
		},
		Cache: Cache{
			TTLSeconds: defaultCacheTTLSeconds,
			MaxEntries: defaultCacheMaxEntries,
		},
		Input: Input{
			MaxBytes: defaultInputMaxBytes,
		},
	}
}
