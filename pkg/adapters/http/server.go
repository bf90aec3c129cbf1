package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/agrimind"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/observability"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is the version of the HTTP contract.
const APIVersion = "v1"

// maxBodyBytes bounds request bodies. Photos arrive as data URIs of up to 10 MiB.
const maxBodyBytes = 16 << 20

// Server exposes an ActionRunner over HTTP.
type Server struct {
	runner          ports.ActionRunner
	chat            *chat.Service
	geocoder        ports.Geocoder
	defaultLocation string
	metrics         *observability.Metrics
	gatherer        prometheus.Gatherer
	streams         *StreamManager
	logger          *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithChat mounts the conversation routes.
func WithChat(svc *chat.Service) Option {
	return func(s *Server) { s.chat = svc }
}

// WithGeocoder sets the reverse geocoder used by /v1/weather/local and the
// location used when no coordinates are given.
func WithGeocoder(g ports.Geocoder, defaultLocation string) Option {
	return func(s *Server) {
		s.geocoder = g
		s.defaultLocation = defaultLocation
	}
}

// WithMetrics records request durations in m and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithStreams sets the stream manager backing /v1/events. Register
// sm.Hooks() on the invoker so outcomes reach subscribers.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.streams = sm }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a server for runner.
func NewServer(runner ports.ActionRunner, opts ...Option) *Server {
	s := &Server{runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager()
	}
	return s
}

// NewHandler creates a new HTTP handler for runner.
func NewHandler(runner ports.ActionRunner, opts ...Option) http.Handler {
	return NewServer(runner, opts...).Handler()
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.instrument)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/actions", s.ListActions)
		r.Get("/actions/{name}", s.GetAction)
		r.Post("/actions/{name}", s.RunAction)
		if s.chat != nil {
			r.Post("/chat", s.PostChat)
			r.Get("/conversations", s.ListConversations)
			r.Get("/conversations/{id}", s.GetConversation)
			r.Delete("/conversations/{id}", s.DeleteConversation)
		}
		r.Get("/weather/local", s.GetLocalWeather)
		r.Get("/seasonal", s.GetSeasonal)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>AgriMind API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "agrimind-http",
		"version":     strings.TrimSpace(agrimind.Version),
		"api_version": APIVersion,
		"actions":     len(s.runner.Actions()),
	})
}

// statusFor maps a failure kind to an HTTP status code.
func statusFor(kind string) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindTransport, domain.KindSchemaMismatch, domain.KindEmptyResponse:
		return http.StatusBadGateway
	case domain.KindUnknownAction:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeFailure writes an ActionResult-shaped error body.
func writeFailure(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]any{
		"error": domain.Failure{Kind: kind, Message: message},
	})
}
