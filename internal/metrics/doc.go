// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Feed ticks and price update outcomes (applied, unknown, rejected)
//   - View recomputations and their latency
//   - Batch fetch outcomes, latency, and catalog size
//   - Stream client count and dropped frames
//   - Archive queue depth, flushes, and insert errors
//
// All recording methods are safe to call on a nil *Metrics.
package metrics
