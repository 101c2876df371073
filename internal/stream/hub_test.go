package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tokenscope/internal/model"
)

type staticSource struct {
	tokens []model.Token
}

func (s staticSource) View() []model.Token { return s.tokens }
func (s staticSource) Criteria() model.Criteria {
	return model.Criteria{Category: model.FilterAll}
}

type countingObserver struct {
	connected, disconnected, dropped atomic.Int32
}

func (o *countingObserver) ClientConnected()    { o.connected.Add(1) }
func (o *countingObserver) ClientDisconnected() { o.disconnected.Add(1) }
func (o *countingObserver) FrameDropped()       { o.dropped.Add(1) }

func newTestHub(t *testing.T, src SnapshotSource) (*Hub, string) {
	t.Helper()
	hub := NewHub(HubConfig{SendBuffer: 16, PingInterval: 50 * time.Millisecond}, src, nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(ClientConfig{URL: url, PingTimeout: time.Second, BufferSize: 16}, nil)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func nextFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case f := <-c.Frames():
		return f
	case err := <-c.Errors():
		t.Fatalf("client error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Frame{}
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	_, url := newTestHub(t, staticSource{tokens: []model.Token{{ID: "a"}, {ID: "b"}}})

	c := dial(t, url)
	f := nextFrame(t, c)

	assert.Equal(t, TypeSnapshot, f.Type)
	require.NotNil(t, f.Snapshot)
	assert.Len(t, f.Snapshot.Tokens, 2)
	assert.Equal(t, model.FilterAll, f.Snapshot.Criteria.Category)
	assert.False(t, f.ReceivedAt.IsZero())
}

func TestHub_Publish(t *testing.T) {
	hub, url := newTestHub(t, nil)

	c1 := dial(t, url)
	c2 := dial(t, url)
	waitClients(t, hub, 2)

	hub.Publish(model.PriceUpdate{EntityID: "token-1", Price: 42, Timestamp: 1})
	hub.Publish(model.PriceUpdate{EntityID: "token-2", Price: 43, Timestamp: 2})

	for _, c := range []*Client{c1, c2} {
		f1 := nextFrame(t, c)
		f2 := nextFrame(t, c)
		assert.Equal(t, "token-1", f1.Update.EntityID)
		assert.Equal(t, "token-2", f2.Update.EntityID)
		assert.Equal(t, f1.Seq+1, f2.Seq)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := newTestHub(t, nil)
	obs := &countingObserver{}
	hub.SetObserver(obs)

	c := dial(t, url)
	waitClients(t, hub, 1)
	assert.Equal(t, int32(1), obs.connected.Load())

	require.NoError(t, c.Close())
	waitClients(t, hub, 0)
	assert.Equal(t, int32(1), obs.disconnected.Load())
}

func TestHub_Close(t *testing.T) {
	hub, url := newTestHub(t, nil)

	c := dial(t, url)
	waitClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	select {
	case <-c.Errors():
	case <-time.After(2 * time.Second):
		t.Fatal("client not notified of close")
	}
}

func TestHub_DropsForFullQueue(t *testing.T) {
	hub := NewHub(HubConfig{SendBuffer: 1}, nil, nil)
	obs := &countingObserver{}
	hub.SetObserver(obs)

	// A registered peer with no writer draining its queue.
	p := &peer{send: make(chan []byte, 1), done: make(chan struct{})}
	hub.clients[p.id] = p

	hub.Publish(model.PriceUpdate{EntityID: "a"})
	hub.Publish(model.PriceUpdate{EntityID: "b"})

	assert.Equal(t, int32(1), obs.dropped.Load())
	assert.Len(t, p.send, 1)
}

func TestClient_ConnectAfterClose(t *testing.T) {
	c := NewClient(DefaultClientConfig(), nil)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(context.Background()), ErrAlreadyClosed)
	assert.False(t, c.IsConnected())
}
