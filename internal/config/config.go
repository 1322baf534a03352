package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "SONGBOOK_CONFIG"

// Log contains configuration for log output.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Policy controls how strictly documents are checked before they are stored.
type Policy struct {
	// StrictBlocks turns unclosed blocks from a warning into a rejection.
	StrictBlocks bool `toml:"strict_blocks"`
	// RejectUnknownDirectives rejects documents using directives outside the
	// recognized vocabulary instead of warning about them.
	RejectUnknownDirectives bool `toml:"reject_unknown_directives"`
}

// Cache contains configuration for the render cache.
type Cache struct {
	TTLSeconds int `toml:"ttl_seconds"`
	MaxEntries int `toml:"max_entries"`
}

// TTL returns the cache lifetime as a duration. Zero disables expiry.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Input limits what the CLI accepts.
type Input struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// Config encapsulates all configuration values for songbook.
type Config struct {
	Log    Log    `toml:"log"`
	Policy Policy `toml:"policy"`
	Cache  Cache  `toml:"cache"`
	Input  Input  `toml:"input"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/songbook/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. It
// returns the config, the resolved path, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, cperrors.NewIO("open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, parseError(resolvedPath, err)
		}
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	enc := toml.NewEncoder(&b)
	if err := enc.Encode(c); err != nil {
		return "", cperrors.Wrap(err, "encode config")
	}
	return b.String(), nil
}

// parseError reports a decode failure with the line go-toml points at.
func parseError(path string, err error) error {
	var strictErr *toml.StrictMissingError
	if cperrors.As(err, &strictErr) {
		pe := cperrors.NewParse("config", path, strictErr.String())
		if len(strictErr.Errors) > 0 {
			pe.Line, _ = strictErr.Errors[0].Position()
		}
		return pe
	}
	var decodeErr *toml.DecodeError
	if cperrors.As(err, &decodeErr) {
		pe := cperrors.NewParse("config", path, decodeErr.Error())
		pe.Line, _ = decodeErr.Position()
		return pe
	}
	return cperrors.NewParse("config", path, err.Error())
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if cperrors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, cperrors.NewIO("stat", expanded, err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("songbook.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", cperrors.Wrap(err, "resolve home directory")
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", cperrors.Wrapf(err, "resolve absolute path for %q", cleaned)
	}
	return absolute, nil
}
