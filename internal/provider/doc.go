// Package provider defines the initial batch provider contract.
//
// A Provider returns the full, ordered token list on every call. Failures
// are reported as *FetchError and are never retried here; the poller simply
// tries again on its next cycle.
package provider
