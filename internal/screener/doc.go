// Package screener wires the token pipeline into a single session.
//
// A Session owns the entity store, the price feed, the view engine and the
// sort controller, plus the presentation state a client needs (loading and
// error status, the selected and hovered token). Data flows one way:
//
//	provider batch -> HandleBatch -> store.ReplaceAll -> feed.Connect -> view
//	feed tick      -> store.ApplyPriceUpdate -> view -> publishers
//
// Publishers (the websocket hub, the tick archive) only see updates that
// were applied to the store.
package screener
