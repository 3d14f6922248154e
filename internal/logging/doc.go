// Package logging builds slog loggers for the CLI: a compact console
// handler for terminals and a JSON handler for machine consumption,
// fanned out to stdout and the configured log file.
package logging
