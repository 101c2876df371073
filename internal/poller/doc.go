// Package poller refetches the token batch on a fixed interval.
//
// The first fetch happens as soon as the poller starts. Each fetch runs
// under its own timeout; failures are reported to the handler and the
// poller waits for the next cycle rather than retrying.
package poller
