// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpapi implements the caller-facing HTTP surface of the gateway:
// the Dimensions proxy endpoint, the opportunity prediction stub, query
// history, the dashboard page, and the operational endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/dimensions-gateway/internal/dimensions"
	"github.com/pdiddy/dimensions-gateway/internal/history"
)

const (
	defaultQueryTimeout = 30 * time.Second
	dashboardFile       = "dashboard.html"
)

// TokenProvider yields a bearer token for upstream calls. Implemented by
// *dimensions.TokenSource; faked in tests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// API holds the dependencies of the HTTP handlers. The token cache is owned
// here, injected, not reached through globals.
type API struct {
	// Post performs outbound HTTP calls. Required.
	Post dimensions.PostFunc

	// Tokens supplies the bearer token for the query endpoint. Required.
	Tokens TokenProvider

	// DSLURL is the upstream query endpoint. Defaults to the production URL.
	DSLURL string

	// QueryTimeout bounds the forwarding call (default 30s).
	QueryTimeout time.Duration

	// History records proxied queries when non-nil.
	History *history.Store

	// HistoryLimit is the default page size for /api/history.
	HistoryLimit int

	// DashboardDir is where dashboard.html lives (default: working directory).
	DashboardDir string

	// Logger receives request-scoped diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// errorBody is the JSON error shape shared by every failure response.
type errorBody struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details string `json:"details,omitempty"`
}

// Routes returns the handler tree with the middleware chain applied.
// metrics may be nil to serve without instrumentation.
func (a *API) Routes(metrics *Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/dimensions", a.handleDimensions)
	mux.HandleFunc("POST /api/opportunity-predictions", a.handlePredictions)
	mux.HandleFunc("GET /api/history", a.handleHistory)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /{$}", a.handleDashboard)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var handler http.Handler = mux
	if metrics != nil {
		handler = metrics.Middleware(handler)
	}
	handler = loggingMiddleware(a.logger(), handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(a.logger(), handler)
	return handler
}

// handleDimensions validates the inbound payload, obtains a token, forwards
// the DSL query upstream, and relays the response or a translated error.
func (a *API) handleDimensions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	// A missing or malformed body is treated the same as a missing query.
	_ = json.NewDecoder(r.Body).Decode(&payload)

	query := strings.TrimSpace(payload.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, errorBody{Error: "Missing DSL query payload."})
		return
	}

	start := time.Now()
	status := a.proxyQuery(r.Context(), w, query)
	a.recordHistory(query, status, time.Since(start))
}

// proxyQuery runs the token + forward + relay sequence and returns the HTTP
// status written to the caller.
func (a *API) proxyQuery(ctx context.Context, w http.ResponseWriter, query string) int {
	token, err := a.Tokens.Token(ctx)
	if err != nil {
		// Configuration, authentication, and format failures from the token
		// source all surface as one authentication error; the forwarding
		// call is never attempted.
		return writeError(w, http.StatusInternalServerError, errorBody{
			Error:   "Unable to authenticate with Dimensions.",
			Details: err.Error(),
		})
	}

	headers := map[string]string{
		"Authorization": "JWT " + token,
		"Content-Type":  "application/json",
	}

	dslURL := a.DSLURL
	if dslURL == "" {
		dslURL = dimensions.DefaultDSLURL
	}
	timeout := a.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	body, err := a.Post(ctx, dslURL, query, headers, timeout)
	if err != nil {
		var se *dimensions.ServiceError
		if errors.As(err, &se) {
			// The upstream status is known, so it is relayed as-is.
			return writeError(w, se.StatusCode, errorBody{
				Error:   "Dimensions API request failed.",
				Status:  se.StatusCode,
				Details: se.Body,
			})
		}
		return writeError(w, http.StatusBadGateway, errorBody{
			Error:   "Network error contacting Dimensions.",
			Details: err.Error(),
		})
	}

	if !json.Valid([]byte(body)) {
		return writeError(w, http.StatusBadGateway, errorBody{
			Error: "Invalid JSON response from Dimensions.",
		})
	}

	// Relay the upstream JSON verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		a.logger().Warn("writing proxied response", "error", err)
	}
	return http.StatusOK
}

// recordHistory stores one proxied query, best-effort. A store failure is
// logged and never fails the request. The request context is not used: the
// caller may have disconnected already.
func (a *API) recordHistory(query string, status int, elapsed time.Duration) {
	if a.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.History.Record(ctx, history.Entry{
		Query:      query,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
	})
	if err != nil {
		a.logger().Warn("recording query history", "error", err)
	}
}

// handleHistory returns recent proxied queries, newest first.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		writeError(w, http.StatusNotFound, errorBody{Error: "Query history is not enabled."})
		return
	}

	limit := a.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errorBody{Error: "Invalid limit parameter."})
			return
		}
		limit = n
	}

	entries, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.logger().Error("reading query history", "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{Error: "Unable to read query history."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleHealth reports process liveness.
func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard serves the static dashboard page.
func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dir := a.DashboardDir
	if dir == "" {
		dir = "."
	}
	http.ServeFile(w, r, filepath.Join(dir, dashboardFile))
}

func (a *API) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the shared error body and returns the status for
// history bookkeeping.
func writeError(w http.ResponseWriter, status int, body errorBody) int {
	writeJSON(w, status, body)
	return status
}
