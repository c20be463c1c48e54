// Package server exposes the aggregation pipeline over HTTP: a server-sent
// event stream plus small health and stats endpoints.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/search"
)

// Server holds the HTTP surface over one Aggregator.
type Server struct {
	agg    *search.Aggregator
	linger time.Duration
}

// New creates a Server. linger is how long a stream stays open after the
// done event to deliver best-effort enrichment updates.
func New(agg *search.Aggregator, linger time.Duration) *Server {
	if linger < 0 {
		linger = 0
	}
	return &Server{agg: agg, linger: linger}
}

// Router builds the chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/universal-search/stream", s.handleStream)
	return r
}

// requestLogger logs each request with zap after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"cache":              s.agg.CacheStats(),
		"providers":          s.agg.Providers(),
		"enrichment_pending": s.agg.Queue().Pending(),
		"subscribers":        s.agg.Queue().Hub().Subscribers(),
	})
}

// handleStream serves GET /universal-search/stream?q=&lat=&lon= as an SSE
// stream. Updates for records delivered on this stream keep flowing for a
// short linger window after done, then the stream closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	req := search.Request{Query: r.URL.Query().Get("q")}
	if lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64); err == nil {
		if lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64); err == nil {
			req.Lat, req.Lon, req.HasGeo = lat, lon, true
		}
	}

	// Subscribe before aggregation starts so enrichment of the first
	// records cannot race past us.
	patches, unsubscribe := s.agg.Queue().Hub().Subscribe()
	defer unsubscribe()

	ctx := r.Context()
	events := s.agg.Stream(ctx, req)
	seen := make(map[string]bool)

	for events != nil {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				events = nil
				continue
			}
			if ev.Name == search.EventRecord {
				if rec, ok := ev.Data.(model.UniversalRecord); ok {
					seen[rec.ID] = true
				}
			}
			if err := writeEvent(w, flusher, ev.Name, ev.Data); err != nil {
				return
			}
		case patch, open := <-patches:
			if !open {
				patches = nil
				continue
			}
			if !seen[patch.ID] {
				continue
			}
			if err := writeEvent(w, flusher, search.EventUpdate, patch); err != nil {
				return
			}
		}
	}

	// Linger for late enrichment patches, best-effort.
	if s.linger == 0 || patches == nil {
		return
	}
	timer := time.NewTimer(s.linger)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case patch, open := <-patches:
			if !open {
				return
			}
			if !seen[patch.ID] {
				continue
			}
			if err := writeEvent(w, flusher, search.EventUpdate, patch); err != nil {
				return
			}
		}
	}
}

// writeEvent serializes one named SSE event and flushes it immediately.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		zap.L().Warn("server: marshal event failed",
			zap.String("event", name),
			zap.Error(err),
		)
		return nil
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
