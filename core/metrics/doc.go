package metrics

// Package metrics defines interfaces for collecting scheduling metrics.
// Sinks record schedule results, attempts, mapping results and per-job
// statistics and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
// Implementations live in infra/metrics and register themselves on import.
