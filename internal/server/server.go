// Package server exposes the citation graph over HTTP: a JSON API, the explorer
// page, and a websocket through which the page drives a selection session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/viz"
)

// Options configures a Server.
type Options struct {
	Graph          viz.Options
	PopularCount   int
	Layout         string
	Title          string
	AllowedOrigins []string
}

// DefaultOptions returns the options used by 'citegraph serve' without configuration.
func DefaultOptions() Options {
	html := viz.DefaultHTMLOptions()
	return Options{
		Graph:          viz.DefaultOptions(),
		PopularCount:   search.DefaultLimit,
		Layout:         html.Layout,
		Title:          html.Title,
		AllowedOrigins: []string{"*"},
	}
}

// Server serves one Store to any number of explorer sessions.
type Server struct {
	store    *datastore.Store
	opts     Options
	metrics  *Metrics
	upgrader websocket.Upgrader
	page     string

	mu       sync.Mutex
	sessions map[string]*session

	unsubscribe func()
}

// New creates a server for store.
func New(store *datastore.Store, opts Options) (*Server, error) {
	if opts.PopularCount <= 0 {
		opts.PopularCount = search.DefaultLimit
	}
	if opts.Layout == "" {
		opts.Layout = viz.DefaultHTMLOptions().Layout
	}
	page, err := viz.ExplorerHTML(viz.HTMLOptions{Layout: opts.Layout, Title: opts.Title})
	if err != nil {
		return nil, fmt.Errorf("rendering explorer page: %w", err)
	}

	s := &Server{
		store:   store,
		opts:    opts,
		metrics: NewMetrics("citegraph"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		page:     page,
		sessions: make(map[string]*session),
	}

	s.unsubscribe = store.Subscribe(s.metrics.ObserveStore)
	if snap := store.Snapshot(); snap != nil {
		s.metrics.ObserveStore(datastore.Update{Status: datastore.StatusReady, Snapshot: snap})
	}
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.metrics.Middleware)
	router.Use(requestLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.healthCheck)
	router.Get("/ready", s.readinessCheck)
	router.Handle("/metrics", s.metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.searchPapers)
		r.Get("/papers/popular", s.popularPapers)
		r.Get("/graph/{paperID}", s.egoGraph)
	})

	router.Get("/", s.explorerPage)
	router.Get("/ws", s.handleWebSocket)

	return router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close ends all sessions and detaches from the store.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	s.unsubscribe()
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.SessionsActive.Inc()
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if ok {
		s.metrics.SessionsActive.Dec()
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
