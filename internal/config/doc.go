// Package config loads, normalizes, and validates songbook configuration.
//
// Settings come from a TOML file located through an explicit path, the
// SONGBOOK_CONFIG environment variable, ~/.config/songbook/config.toml, or a
// songbook.toml in the working directory, in that order. A missing file is
// not an error: Default values apply. Command-line flags override whatever
// the file provides.
package config
