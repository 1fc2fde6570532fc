package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"braind/internal/config"
	"braind/internal/manager"
	"braind/internal/orchestrator"
	"braind/pkg/types"
)

// stubService scripts the orchestrator surface for handler tests.
type stubService struct {
	resp     types.ChatResponse
	err      error
	ready    bool
	status   types.StatusResponse
	backends []types.BackendSpec
	settings config.Settings
	setErr   error

	lastReq types.ChatRequest
}

func (s *stubService) Handle(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}
func (s *stubService) Status() types.StatusResponse  { return s.status }
func (s *stubService) Backends() []types.BackendSpec { return s.backends }
func (s *stubService) Settings() config.Settings     { return s.settings }
func (s *stubService) Ready() bool                   { return s.ready }

func (s *stubService) UpdateSettings(next config.Settings) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.settings = next
	return nil
}

func postChat(t *testing.T, h http.Handler, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChatSuccess(t *testing.T) {
	svc := &stubService{resp: types.ChatResponse{
		Response:   "a cat",
		Backend:    "blip-large",
		Capability: types.CapabilityVision,
		Confidence: 0.9,
	}}
	h := NewMux(svc)

	w := postChat(t, h, `{"message": "what is in this picture?", "session_id": "alice"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp types.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "a cat" || resp.Backend != "blip-large" {
		t.Errorf("resp = %+v", resp)
	}
	if svc.lastReq.SessionID != "alice" {
		t.Errorf("session id = %q, want alice", svc.lastReq.SessionID)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("nosniff header = %q", got)
	}
}

func TestChatRequiresJSONContentType(t *testing.T) {
	h := NewMux(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}

func TestChatBadRequests(t *testing.T) {
	h := NewMux(&stubService{})
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"message": `},
		{"missing message", `{"session_id": "alice"}`},
		{"blank message", `{"message": "   "}`},
		{"unknown capability", `{"message": "hi", "capability": "telepathy"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postChat(t, h, tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if er.Code != http.StatusBadRequest || er.Error == "" {
				t.Errorf("error body = %+v", er)
			}
		})
	}
}

func TestChatBodySizeLimit(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)

	h := NewMux(&stubService{})
	big := `{"message": "` + strings.Repeat("x", 200) + `"}`
	w := postChat(t, h, big, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", w.Code)
	}
}

func TestChatErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"classifier unavailable", orchestrator.ErrClassifierUnavailable(errors.New("down")), http.StatusServiceUnavailable, "classifier_unavailable"},
		{"rejected", orchestrator.ErrRejected("vision"), http.StatusServiceUnavailable, "rejected"},
		{"load failure", manager.ErrLoadFailure("blip-large", errors.New("oom")), http.StatusServiceUnavailable, "load_failure"},
		{"budget exceeded", manager.ErrBudgetExceeded("blip-large"), http.StatusServiceUnavailable, "load_failure"},
		{"invocation failure", orchestrator.ErrInvocationFailure("blip-large", errors.New("boom")), http.StatusBadGateway, "invocation_failure"},
		{"not in catalog", manager.ErrNotInCatalog("ghost"), http.StatusNotFound, ""},
		{"unclassified", errors.New("weird"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMux(&stubService{err: tc.err})
			w := postChat(t, h, `{"message": "hi"}`, nil)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if er.Kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", er.Kind, tc.wantKind)
			}
		})
	}
}

func TestChatStreaming(t *testing.T) {
	svc := &stubService{resp: types.ChatResponse{
		Response:   "three small words",
		Backend:    "brain",
		Capability: types.CapabilityText,
		Confidence: 0.3,
	}}
	h := NewMux(svc)

	w := postChat(t, h, `{"message": "hi", "stream": true}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("content type = %q", ct)
	}

	var chunks []string
	var final *types.ChatResponse
	sc := bufio.NewScanner(bytes.NewReader(w.Body.Bytes()))
	for sc.Scan() {
		var line chunkLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		if line.Done {
			final = line.Response
			continue
		}
		chunks = append(chunks, line.Chunk)
	}
	if strings.Join(chunks, " ") != "three small words" {
		t.Errorf("chunks = %v", chunks)
	}
	if final == nil || final.Backend != "brain" || final.Response != "three small words" {
		t.Errorf("final line = %+v", final)
	}
}

func TestBackendsEndpoint(t *testing.T) {
	svc := &stubService{backends: []types.BackendSpec{
		{ID: "brain", Capability: types.CapabilityText, Priority: 1, Enabled: true},
	}}
	h := NewMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/backends", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp types.BackendsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Backends) != 1 || resp.Backends[0].ID != "brain" {
		t.Errorf("backends = %+v", resp.Backends)
	}
}

func TestStatusEndpoint(t *testing.T) {
	svc := &stubService{status: types.StatusResponse{State: "ready", RequestsProcessed: 7}}
	h := NewMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != "ready" || resp.RequestsProcessed != 7 {
		t.Errorf("status = %+v", resp)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &stubService{}
	h := NewMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before ready = %d, want 503", w.Code)
	}

	svc.ready = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("readyz when ready = %d, want 200", w.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	base := config.DefaultSettings()
	base.DynamicConfigUpdates = true
	svc := &stubService{settings: base}
	h := NewMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /settings = %d", w.Code)
	}
	var got config.Settings
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MaxConcurrentModels != base.MaxConcurrentModels {
		t.Errorf("settings = %+v", got)
	}

	// Partial update: only the named field changes.
	req = httptest.NewRequest(http.MethodPut, "/settings",
		strings.NewReader(`{"max_concurrent_models": 5}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /settings = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.settings.MaxConcurrentModels != 5 {
		t.Errorf("MaxConcurrentModels = %d, want 5", svc.settings.MaxConcurrentModels)
	}
	if svc.settings.MemoryThreshold != base.MemoryThreshold {
		t.Errorf("unrelated field reset: %+v", svc.settings)
	}
}

func TestSettingsUpdateDisabled(t *testing.T) {
	svc := &stubService{
		settings: config.DefaultSettings(), // DynamicConfigUpdates off
		setErr:   errors.New("dynamic configuration updates are disabled"),
	}
	h := NewMux(svc)

	req := httptest.NewRequest(http.MethodPut, "/settings",
		strings.NewReader(`{"max_concurrent_models": 5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("PUT /settings = %d, want 403", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewMux(&stubService{})

	// Drive one request through the middleware so the counters have samples.
	warm := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "braind_http_requests_total") {
		t.Error("metrics output missing braind_http_requests_total")
	}
}
