package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.FeedTick(2)
	m.Update(UpdateApplied)
	m.Update(UpdateApplied)
	m.Update(UpdateUnknown)
	m.Recompute(time.Millisecond, 7)
	m.FetchFinished(time.Second, nil)
	m.FetchFinished(time.Second, errors.New("boom"))
	m.SetTokens(50)
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.ArchiveFlush(10, nil)
	m.ArchiveFlush(5, errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedTicks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedUpdates.WithLabelValues(UpdateApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedUpdates.WithLabelValues(UpdateUnknown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViewRecomputes))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ViewRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("error")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.Tokens))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamClients))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ArchiveRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveErrors))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.FeedTick(1)
		m.Update(UpdateRejected)
		m.SetListeners(1)
		m.Recompute(time.Millisecond, 1)
		m.FetchStarted()
		m.FetchFinished(time.Millisecond, nil)
		m.SetTokens(1)
		m.ClientConnected()
		m.ClientDisconnected()
		m.FrameDropped()
		m.ArchiveFlush(1, nil)
		m.SetArchiveQueued(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("", nil)
	m.SetTokens(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "tokenscope_store_tokens 3"), "body: %s", body)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	assert.NotPanics(t, func() {
		New("dup", prometheus.NewRegistry())
		New("dup", prometheus.NewRegistry())
	})
}
