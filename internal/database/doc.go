// Package database provides Postgres connectivity for the screener.
//
// Two tables are used:
//   - tokens: the token catalog, read by Catalog as an initial batch provider
//   - price_ticks: append-only archive of applied price updates, written by
//     the writer package
//
// Schema creates both if they do not exist.
package database
