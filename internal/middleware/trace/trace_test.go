package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "syndicpulse/internal/log"
)

func TestMiddlewareTagsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: applog.FormatJSON, Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "192.0.2.1" })

	var fromCtx string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
		applog.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/buildings/bld-1/payments", nil))

	id := rr.Header().Get(RequestIDHeader)
	if !strings.HasPrefix(id, "req_") || id != fromCtx {
		t.Fatalf("header id %q, context id %q", id, fromCtx)
	}
	out := buf.String()
	if strings.Count(out, `"request_id":"`+id+`"`) != 2 {
		t.Fatalf("request id missing from log lines:\n%s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"status_code":422`) {
		t.Fatalf("completion line not logged as warning:\n%s", out)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	logger := applog.New(applog.Config{Format: applog.FormatText, Output: &bytes.Buffer{}})
	h := NewMiddleware(logger, nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "upstream-42" {
		t.Fatalf("request id = %q", got)
	}
}
