// Package config loads, normalizes, and validates splice configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every
// knob the CLI needs: array storage roots, the registry database path,
// bulk-load parallelism, and log output.
//
// Always obtain settings through this package so downstream code
// receives sanitized paths, canonical backend kinds, and clear
// validation errors.
package config
