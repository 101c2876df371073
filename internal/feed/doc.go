// Package feed implements the Feed Channel component.
//
// The Feed Channel:
//   - Delivers price updates for a connected set of token ids
//   - Fires at jittered intervals, updating 1..N random tokens per tick
//   - Broadcasts each update synchronously to every subscribed listener
//   - Runs at most one delivery timer per channel instance
//
// Delivery is best-effort. The channel never returns errors to callers;
// an empty scope simply produces no events.
package feed
