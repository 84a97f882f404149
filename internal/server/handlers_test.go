package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopsage/shopsage/internal/agent"
	"github.com/shopsage/shopsage/internal/config"
)

type fakeAgent struct {
	lastQuery string
	result    agent.Result
}

func (f *fakeAgent) Run(_ context.Context, query string, _ agent.ProgressFunc) agent.Result {
	f.lastQuery = query
	return f.result
}

func newTestServer(ag Agent) *Server {
	return New(config.Server{Port: 0}, ag)
}

func TestHandleQuery(t *testing.T) {
	fake := &fakeAgent{result: agent.Result{
		Response:  "There are 42 completed orders.",
		ToolsUsed: "execute_sql_query",
	}}
	srv := newTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"query": "how many completed orders?"}`))
	rec := httptest.NewRecorder()
	srv.handleQuery(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if fake.lastQuery != "how many completed orders?" {
		t.Errorf("agent received query %q", fake.lastQuery)
	}

	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "There are 42 completed orders." {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.ToolsUsed != "execute_sql_query" {
		t.Errorf("tools_used = %q", resp.ToolsUsed)
	}
}

func TestHandleQueryEmptyQuery(t *testing.T) {
	srv := newTestServer(&fakeAgent{})

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query": "  "}`))
	rec := httptest.NewRecorder()
	srv.handleQuery(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleQueryMalformedBody(t *testing.T) {
	srv := newTestServer(&fakeAgent{})

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	srv.handleQuery(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(&fakeAgent{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	handler := withRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
