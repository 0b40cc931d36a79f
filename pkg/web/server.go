package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/media-graph/pkg/catalog"
	"github.com/ritzau/media-graph/pkg/graph"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/metrics"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/pubsub"
	"github.com/ritzau/media-graph/pkg/session"
)

//go:embed static/*
var staticFiles embed.FS

// Server represents the web server
type Server struct {
	router      *mux.Router
	catalog     catalog.Catalog
	engine      *session.Engine
	coordinator *session.Coordinator
	publisher   pubsub.Publisher
	log         *slog.Logger
}

// NewServer creates a web server over a catalog, a one-shot build engine
// and the interactive session
func NewServer(cat catalog.Catalog, engine *session.Engine, coordinator *session.Coordinator, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		catalog:     cat,
		engine:      engine,
		coordinator: coordinator,
		publisher:   publisher,
		log:         logging.New("web"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/graph_status", s.handleSubscribe(pubsub.TopicGraphStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/graph", s.handleSubscribe(pubsub.TopicGraph)).Methods("GET")

	// Catalog passthrough
	s.router.HandleFunc("/api/media/{id:[0-9]+}", s.handleMedia).Methods("GET")
	s.router.HandleFunc("/api/search/{query}", s.handleSearch).Methods("GET")
	s.router.HandleFunc("/api/user/{name}", s.handleUser).Methods("GET")

	// Graph routes - more specific routes must come first
	s.router.HandleFunc("/api/graph/build", s.handleBuild).Methods("GET")
	s.router.HandleFunc("/api/graph/options", s.handleGetOptions).Methods("GET")
	s.router.HandleFunc("/api/graph/options", s.handleSubmitOptions).Methods("PUT")
	s.router.HandleFunc("/api/graph/node/{id:[0-9]+}", s.handleNode).Methods("GET")
	s.router.HandleFunc("/api/graph/seeds/{id:[0-9]+}", s.handleAddSeed).Methods("POST")
	s.router.HandleFunc("/api/graph/seeds/{id:[0-9]+}", s.handleRemoveSeed).Methods("DELETE")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("static files unavailable", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// Handler returns the router wrapped in the request logging middleware
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer sub.Close()

		flusher, _ := w.(http.Flusher)

		// Send initial comment to establish connection (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher != nil {
			flusher.Flush()
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sub.Done():
				return
			case event := <-sub.Events():
				if err := pubsub.WriteSSE(w, event); err != nil {
					s.log.Debug("SSE client gone", "topic", topic, "error", err)
					return
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
	}
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.catalog.FetchMedia(r.Context(), id)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]
	t, err := model.ParseMediaType(r.URL.Query().Get("media_type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "media_type must be 'ANIME' or 'MANGA'.")
		return
	}
	page, err := s.catalog.SearchMedia(r.Context(), query, t)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.FetchUserList(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleBuild runs an independent build for the query options and returns
// the positioned graph; the interactive session is left alone
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	opts := ParseQuery(r.URL.Query())
	start := time.Now()

	out, err := s.engine.Run(r.Context(), opts, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.ErrorContext(r.Context(), "one-shot build failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.GraphBuildDuration.WithLabelValues("oneshot").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, out.Data)
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.Options())
}

func (s *Server) handleSubmitOptions(w http.ResponseWriter, r *http.Request) {
	var opts graph.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid options: %v", err))
		return
	}
	s.accepted(w, s.coordinator.Submit(opts))
}

func (s *Server) handleAddSeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.accepted(w, s.coordinator.AddSeed(id))
}

func (s *Server) handleRemoveSeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.accepted(w, s.coordinator.RemoveSeed(id))
}

func (s *Server) accepted(w http.ResponseWriter, version int64) {
	writeJSON(w, http.StatusAccepted, map[string]any{
		"version": version,
		"hash":    s.coordinator.Options().Hash(),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.coordinator.Current()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, session.ErrNoGraph.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap.Data)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := s.coordinator.Lookup(id)
	switch {
	case errors.Is(err, session.ErrNoGraph):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeJSON(w, http.StatusOK, detail)
	}
}

// catalogError maps catalog failures onto HTTP statuses
func (s *Server) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidMediaType):
		writeError(w, http.StatusBadRequest, err.Error())
	case catalog.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case catalog.IsRateLimited(err):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		logging.WarnContext(r.Context(), "catalog request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}
