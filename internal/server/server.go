// Package server exposes loaded PageGraph recordings over HTTP.
//
// Recordings are uploaded as GraphML and addressed by a random handle
// afterwards:
//
//	POST   /graphs                                  upload, returns {"id": ...}
//	GET    /graphs/{graphID}                        summary and descriptor
//	DELETE /graphs/{graphID}
//	GET    /graphs/{graphID}/nodes/{nodeID}
//	GET    /graphs/{graphID}/nodes/{nodeID}/neighbors?direction=out|in|both
//	GET    /graphs/{graphID}/edges/{edgeID}
//	GET    /graphs/{graphID}/edges/{edgeID}/downstream
//	GET    /graphs/{graphID}/requests/{requestID}?frame=FRAMEID
//	GET    /graphs/{graphID}/queries/{name}?arg=value
//	GET    /healthz
//
// Errors are returned as {"code": ..., "message": ...}.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Config configures a Server.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	Logger         *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	store  *Store
	logger *log.Logger
	router chi.Router
}

// New creates a server with an empty store.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 256 << 20
	}
	s := &Server{cfg: cfg, store: NewStore(), logger: cfg.Logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.health)
	r.Route("/graphs", func(r chi.Router) {
		r.Post("/", s.createGraph)
		r.Route("/{graphID}", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Delete("/", s.deleteGraph)
			r.Get("/nodes/{nodeID}", s.getNode)
			r.Get("/nodes/{nodeID}/neighbors", s.getNeighbors)
			r.Get("/edges/{edgeID}", s.getEdge)
			r.Get("/edges/{edgeID}/downstream", s.getDownstream)
			r.Get("/requests/{requestID}", s.getRequest)
			r.Get("/queries/{name}", s.runQuery)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
