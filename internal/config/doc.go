// Package config loads, normalizes, and validates the TOML configuration for
// spool. It owns path expansion, default values, and the sample config file
// written by "spool config init".
package config
