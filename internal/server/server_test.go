package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tokenscope/internal/feed"
	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/provider"
	"github.com/rickgao/tokenscope/internal/screener"
)

func newSession(t *testing.T) *screener.Session {
	t.Helper()

	cfg := feed.DefaultConfig()
	cfg.MinInterval = time.Hour
	cfg.MaxInterval = 2 * time.Hour

	s := screener.New(cfg)
	s.Start()
	t.Cleanup(s.Stop)

	require.NoError(t, s.HandleBatch([]model.Token{
		{ID: "a", Symbol: "PEPE", Name: "Pepe", Category: model.CategoryNew, Price: 30, PreviousPrice: 30},
		{ID: "b", Symbol: "DOGE", Name: "Doge", Category: model.CategoryMigrated, Price: 10, PreviousPrice: 10},
		{ID: "c", Symbol: "WIF", Name: "Dogwifhat", Category: model.CategoryNew, Price: 20, PreviousPrice: 20},
	}))
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ids(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type countingRefresher struct{ n int }

func (r *countingRefresher) Refresh() { r.n++ }

func TestTokens(t *testing.T) {
	h := NewHandler(newSession(t), Options{})

	rec := do(t, h, http.MethodGet, "/tokens", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b", "c"}, ids(body.Tokens))
	require.NotNil(t, body.Status)
	assert.Equal(t, 3, body.Status.Tokens)
	assert.True(t, body.Status.Connected)
}

func TestToken(t *testing.T) {
	h := NewHandler(newSession(t), Options{})

	rec := do(t, h, http.MethodGet, "/tokens/b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok model.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "DOGE", tok.Symbol)

	rec = do(t, h, http.MethodGet, "/tokens/zzz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCriteria(t *testing.T) {
	h := NewHandler(newSession(t), Options{})

	tests := []struct {
		name string
		body string
		code int
		want []string
	}{
		{"category", `{"selectedCategory":"new"}`, http.StatusOK, []string{"a", "c"}},
		{"search", `{"selectedCategory":"all","searchText":"dog"}`, http.StatusOK, []string{"b", "c"}},
		{"combined", `{"selectedCategory":"new","searchText":"DOG"}`, http.StatusOK, []string{"c"}},
		{"reset", `{}`, http.StatusOK, []string{"a", "b", "c"}},
		{"bad category", `{"selectedCategory":"old"}`, http.StatusBadRequest, nil},
		{"bad json", `{`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, "/criteria", tt.body)
			require.Equal(t, tt.code, rec.Code)
			if tt.want == nil {
				return
			}
			var body viewResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, ids(body.Tokens))
			assert.Nil(t, body.Status)
		})
	}
}

func TestSortToggles(t *testing.T) {
	h := NewHandler(newSession(t), Options{})

	rec := do(t, h, http.MethodPost, "/sort?key=price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body sortResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}, body.Sort)
	assert.Equal(t, []string{"b", "c", "a"}, ids(body.Tokens))

	rec = do(t, h, http.MethodPost, "/sort?key=price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.Desc, body.Sort.Direction)
	assert.Equal(t, []string{"a", "c", "b"}, ids(body.Tokens))

	rec = do(t, h, http.MethodPost, "/sort?key=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelection(t *testing.T) {
	s := newSession(t)
	h := NewHandler(s, Options{})

	rec := do(t, h, http.MethodGet, "/details", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/select?id=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/select?id=c", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/details", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok model.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "c", tok.ID)

	rec = do(t, h, http.MethodPost, "/hover?id=a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "a", s.Status().HoveredID)

	rec = do(t, h, http.MethodDelete, "/select", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	st := s.Status()
	assert.False(t, st.DetailsOpen)
	assert.Empty(t, st.SelectedID)
}

func TestHealth(t *testing.T) {
	s := newSession(t)

	tests := []struct {
		name   string
		db     Pinger
		code   int
		status string
	}{
		{"no database", nil, http.StatusOK, "healthy"},
		{"database up", stubPinger{}, http.StatusOK, "healthy"},
		{"database down", stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(s, Options{Database: tt.db})
			rec := do(t, h, http.MethodGet, "/health", "")
			require.Equal(t, tt.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body["status"])
		})
	}
}

func TestHealthDegradedOnFetchError(t *testing.T) {
	s := newSession(t)
	s.HandleFetchError(&provider.FetchError{Source: "api", Err: errors.New("timeout")})

	rec := do(t, NewHandler(s, Options{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestOptionalRoutes(t *testing.T) {
	s := newSession(t)

	h := NewHandler(s, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/refresh", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)

	r := &countingRefresher{}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	h = NewHandler(s, Options{Refresher: r, Metrics: metrics})

	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/refresh", "").Code)
	assert.Equal(t, 1, r.n)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsPath(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewHandler(newSession(t), Options{Metrics: metrics, MetricsPath: "/internal/metrics"})

	assert.Equal(t, http.StatusTeapot, do(t, h, http.MethodGet, "/internal/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)
}
