// Package registry implements the Entity Store.
//
// The Entity Store:
//   - Holds the canonical token list, keyed by id, in insertion order
//   - Is replaced wholesale on every fetch cycle (ReplaceAll)
//   - Is mutated in place only by price updates (ApplyPriceUpdate)
//   - Silently drops updates for ids it does not hold
package registry
