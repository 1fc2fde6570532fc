package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"braind/internal/config"
	"braind/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Handle(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
	Status() types.StatusResponse
	Backends() []types.BackendSpec
	Settings() config.Settings
	UpdateSettings(config.Settings) error
	Ready() bool
}

// NewMux builds the router: /chat, /backends, /status, /healthz, /readyz,
// /metrics, plus the optional swagger mount.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(corsAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/chat", handleChat(svc))

	// @Summary List backends
	// @Produce json
	// @Success 200 {object} types.BackendsResponse
	// @Router /backends [get]
	r.Get("/backends", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.BackendsResponse{Backends: svc.Backends()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
		}
	})

	// @Summary Orchestrator status
	// @Produce json
	// @Success 200 {object} types.StatusResponse
	// @Router /status [get]
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
		}
	})

	// @Summary Active settings snapshot
	// @Produce json
	// @Success 200 {object} config.Settings
	// @Router /settings [get]
	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Settings()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
		}
	})

	r.Put("/settings", handleUpdateSettings(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleChat runs one request through the orchestrator.
//
// @Summary Process a chat request
// @Accept json
// @Produce json
// @Param request body types.ChatRequest true "chat request"
// @Success 200 {object} types.ChatResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 502 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /chat [post]
func handleChat(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "", "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "", "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeJSONError(w, http.StatusBadRequest, "", "message is required")
			return
		}
		if req.Capability != "" {
			if _, err := types.ParseCapability(req.Capability); err != nil {
				writeJSONError(w, http.StatusBadRequest, "", err.Error())
				return
			}
		}

		// Join server base context with request context so shutdown cancels
		// in-flight work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		resp, err := svc.Handle(ctx, req)
		if err != nil {
			// Client disconnect or shutdown: nothing useful to write.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeJSONError(w, errorStatus(err), errorKind(err), err.Error())
			return
		}

		if req.Stream {
			streamChat(w, resp)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
		}
	}
}

// handleUpdateSettings installs a new settings snapshot.
//
// @Summary Update runtime settings
// @Accept json
// @Produce json
// @Param settings body config.Settings true "settings snapshot"
// @Success 200 {object} config.Settings
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /settings [put]
func handleUpdateSettings(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "", "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		// Decode on top of the current snapshot so omitted fields keep their
		// values instead of resetting to zero.
		s := svc.Settings()
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeJSONError(w, http.StatusBadRequest, "", "invalid JSON body")
			return
		}
		if err := svc.UpdateSettings(s); err != nil {
			status := http.StatusBadRequest
			if !svc.Settings().DynamicConfigUpdates {
				status = http.StatusForbidden
			}
			writeJSONError(w, status, "", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Settings()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
		}
	}
}

// chunkLine is one NDJSON streaming line.
type chunkLine struct {
	Chunk    string              `json:"chunk,omitempty"`
	Done     bool                `json:"done,omitempty"`
	Response *types.ChatResponse `json:"response,omitempty"`
}

// streamChat writes the response as NDJSON: one line per whitespace-
// delimited chunk, then a final line carrying the full result metadata.
func streamChat(w http.ResponseWriter, resp types.ChatResponse) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	enc := json.NewEncoder(w)
	for _, word := range strings.Fields(resp.Response) {
		if err := enc.Encode(chunkLine{Chunk: word}); err != nil {
			return
		}
		flush()
	}
	final := resp
	_ = enc.Encode(chunkLine{Done: true, Response: &final})
	flush()
}
