package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// Frame types.
const (
	TypeSnapshot    = "snapshot"
	TypePriceUpdate = "price_update"
)

// ErrUnknownType is returned by Decode for unrecognised frame types.
var ErrUnknownType = errors.New("unknown frame type")

// envelope is the wire wrapper around every frame.
type envelope struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq"`
	Msg  json.RawMessage `json:"msg"`
}

// SnapshotMsg is the payload of a snapshot frame.
type SnapshotMsg struct {
	Tokens   []model.Token  `json:"tokens"`
	Criteria model.Criteria `json:"criteria"`
}

// Frame is a decoded envelope.
type Frame struct {
	Type       string
	Seq        int64
	Snapshot   *SnapshotMsg
	Update     *model.PriceUpdate
	ReceivedAt time.Time
}

// Encode wraps v in an envelope of the given type.
func Encode(typ string, seq int64, v any) ([]byte, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return json.Marshal(envelope{Type: typ, Seq: seq, Msg: msg})
}

// Decode parses a frame, dispatching on its envelope type.
func Decode(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	f := Frame{Type: env.Type, Seq: env.Seq}
	switch env.Type {
	case TypeSnapshot:
		var s SnapshotMsg
		if err := json.Unmarshal(env.Msg, &s); err != nil {
			return Frame{}, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		f.Snapshot = &s
	case TypePriceUpdate:
		var u model.PriceUpdate
		if err := json.Unmarshal(env.Msg, &u); err != nil {
			return Frame{}, fmt.Errorf("unmarshal price update: %w", err)
		}
		f.Update = &u
	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return f, nil
}
