// Package server exposes a screener session over HTTP.
//
// Routes:
//
//	GET    /health            component health
//	GET    /tokens            derived view plus presentation status
//	GET    /tokens/{id}       single token
//	PUT    /criteria          {"selectedCategory": "...", "searchText": "..."}
//	POST   /sort?key=price    advance the sort controller
//	POST   /select?id=...     select a token and open its details
//	DELETE /select            close details
//	POST   /hover?id=...      set (or clear, with no id) the hovered token
//	GET    /details           selected token while details are open
//	POST   /refresh           request an immediate batch refetch
//	GET    /ws                websocket stream
//	GET    /metrics           Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/screener"
	"github.com/rickgao/tokenscope/internal/version"
	"github.com/rickgao/tokenscope/internal/view"
)

// Session is the part of a screener session the server drives.
type Session interface {
	View() []model.Token
	Status() screener.Status
	Token(id string) (model.Token, bool)
	SetFilters(f model.CategoryFilter, search string) []model.Token
	RequestSort(key model.SortKey) (model.SortConfig, []model.Token, error)
	Select(id string) (model.Token, error)
	ClearSelection()
	Hover(id string)
	Details() (model.Token, bool)
}

// Pinger checks a dependency's health, e.g. a database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Refresher triggers an out-of-cycle batch fetch.
type Refresher interface {
	Refresh()
}

// Options holds optional server dependencies. Nil fields disable the
// corresponding route or health component.
type Options struct {
	Stream      http.Handler
	Metrics     http.Handler
	MetricsPath string // default: /metrics
	Database    Pinger
	Refresher   Refresher
	Logger      *slog.Logger
}

// viewResponse is the body of view-returning endpoints.
type viewResponse struct {
	Tokens []model.Token    `json:"tokens"`
	Status *screener.Status `json:"status,omitempty"`
}

type criteriaRequest struct {
	Category string `json:"selectedCategory"`
	Search   string `json:"searchText"`
}

type sortResponse struct {
	Sort   model.SortConfig `json:"sortConfig"`
	Tokens []model.Token    `json:"tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the HTTP handler for s.
func NewHandler(s Session, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{session: s, opts: opts, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /tokens", h.tokens)
	mux.HandleFunc("GET /tokens/{id}", h.token)
	mux.HandleFunc("PUT /criteria", h.criteria)
	mux.HandleFunc("POST /sort", h.sort)
	mux.HandleFunc("POST /select", h.selectToken)
	mux.HandleFunc("DELETE /select", h.clearSelection)
	mux.HandleFunc("POST /hover", h.hover)
	mux.HandleFunc("GET /details", h.details)
	if opts.Refresher != nil {
		mux.HandleFunc("POST /refresh", h.refresh)
	}
	if opts.Stream != nil {
		mux.Handle("GET /ws", opts.Stream)
	}
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, opts.Metrics)
	}
	return mux
}

type handler struct {
	session Session
	opts    Options
	logger  *slog.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Build      version.Info   `json:"build"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Build:      version.Get(),
		Components: make(map[string]any),
	}

	st := h.session.Status()
	health.Components["store"] = map[string]any{
		"tokens":  st.Tokens,
		"loading": st.Loading,
	}
	health.Components["feed"] = map[string]any{
		"connected": st.Connected,
		"applied":   st.Applied,
	}
	if st.Error != "" {
		health.Status = "degraded"
		health.Components["provider"] = map[string]string{"error": st.Error}
	} else if st.Tokens == 0 && !st.Loading {
		health.Status = "degraded"
	}

	if h.opts.Database != nil {
		if err := h.opts.Database.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}
	}

	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, health)
}

func (h *handler) tokens(w http.ResponseWriter, r *http.Request) {
	st := h.session.Status()
	h.writeJSON(w, http.StatusOK, viewResponse{Tokens: h.session.View(), Status: &st})
}

func (h *handler) token(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.session.Token(r.PathValue("id"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "token not found")
		return
	}
	h.writeJSON(w, http.StatusOK, tok)
}

func (h *handler) criteria(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	filter, err := model.ParseCategoryFilter(req.Category)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, viewResponse{Tokens: h.session.SetFilters(filter, req.Search)})
}

func (h *handler) sort(w http.ResponseWriter, r *http.Request) {
	sc, rows, err := h.session.RequestSort(model.SortKey(r.URL.Query().Get("key")))
	if errors.Is(err, view.ErrUnknownSortKey) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, sortResponse{Sort: sc, Tokens: rows})
}

func (h *handler) selectToken(w http.ResponseWriter, r *http.Request) {
	tok, err := h.session.Select(r.URL.Query().Get("id"))
	if errors.Is(err, screener.ErrTokenNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, tok)
}

func (h *handler) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.session.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) hover(w http.ResponseWriter, r *http.Request) {
	h.session.Hover(r.URL.Query().Get("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) details(w http.ResponseWriter, r *http.Request) {
	tok, ok := h.session.Details()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, tok)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	h.opts.Refresher.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write response", "error", err)
	}
}

func (h *handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, errorResponse{Error: msg})
}
