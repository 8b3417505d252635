package stage

import "dubsmart/internal/stage/health"

// Health summarizes the readiness of a workflow stage.
type Health = health.Health

// Healthy constructs a ready Health record.
var Healthy = health.Healthy

// Unhealthy constructs an unhealthy Health record with context detail.
var Unhealthy = health.Unhealthy
