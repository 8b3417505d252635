// Package config loads, normalizes, and validates the TOML configuration
// shared by the CLI and the workflow manager. Path fields are tilde-expanded
// and made absolute; language codes are canonicalized; validation errors are
// prefixed with the offending TOML key.
package config
