// Package model defines shared data types used across the token screener.
//
// Conventions:
//   - Prices and magnitudes: float64, never negative
//   - Timestamps: int64 milliseconds since Unix epoch
//   - IDs: opaque strings, unique within a batch, never reused
//   - Category is the only source of truth for the new / final-stretch /
//     migrated flags; the flags are computed on read
package model
