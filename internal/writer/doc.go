// Package writer archives applied price updates to Postgres.
//
// The TickWriter drains a queue fed by the screener session and inserts
// rows into price_ticks in batches. The archive is append-only (never
// update, only insert) and write-only: nothing in the screener reads it
// back.
package writer
