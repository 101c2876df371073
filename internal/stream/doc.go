// Package stream pushes live token data to websocket clients.
//
// Every frame is a JSON envelope:
//
//	{"type": "snapshot",     "seq": 1, "msg": {"tokens": [...], "criteria": {...}}}
//	{"type": "price_update", "seq": 2, "msg": {"entityId": "...", "price": 1.2, "timestamp": 1700000000000}}
//
// A client receives one snapshot of the current derived view on connect,
// then a price_update frame per applied update. seq increases by one per
// frame broadcast by the hub; snapshots reuse the sequence number of the
// last broadcast so clients can discard older updates.
//
// Slow clients never block the hub: a client whose send queue is full has
// the frame dropped.
package stream
