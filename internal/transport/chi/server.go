package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/domain"
	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/metrics"
)

// searcher is the consumer interface for the search engine (ISP).
type searcher interface {
	Search(ctx context.Context, q *query.Query) []listing.Listing
}

// pinger checks a dependency for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the search engine over HTTP.
type Server struct {
	engine searcher
	index  pinger
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(engine searcher, index pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, index: index, logger: logger}
}

// Router builds the chi router with the standard middleware stack.
// Extra middleware (request logging) runs after RequestID and recovery.
func (s *Server) Router(apiKeys []string, extra ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.jsonRecoverer)
	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
	})

	return r
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(queryParamsFromRequest(req))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
			return
		}
		s.logger.Error("build query", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	results := s.engine.Search(r.Context(), &q)

	items := make([]ListingItem, len(results))
	for i, l := range results {
		items[i] = listingToItem(l)
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: items, Count: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"index": "ok"}
	status := http.StatusOK

	if s.index != nil {
		if err := s.index.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			checks["index"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// jsonRecoverer turns handler panics into JSON 500s instead of closed
// connections.
func (s *Server) jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
