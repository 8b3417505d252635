// Package logging wraps log/slog with the handlers and helpers shared by the
// CLI and the workflow manager: a console handler with component prefixes, a
// JSON handler for machine consumption, context-derived job/stage fields, and
// a progress sampler that keeps per-stage progress logs readable.
package logging
