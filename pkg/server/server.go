// Package server exposes explorer sessions over HTTP.
//
// A browser hosts the force simulation and the widgets; the server owns the
// semantic state. The browser posts its events (pointer moves, hovers,
// clicks, simulation positions) and draws the [render.Frame] it gets back.
//
// Routes:
//
//	GET    /healthz                          status and build info
//	GET    /api/session                      resolve or mint the session cookie
//	POST   /api/sessions                     create a session
//	GET    /api/sessions/{id}                current state and frame
//	DELETE /api/sessions/{id}
//	PUT    /api/sessions/{id}/notes          replace and persist the note buffer
//	POST   /api/sessions/{id}/draw           parse notes and merge the result
//	POST   /api/sessions/{id}/query          run a query
//	POST   /api/sessions/{id}/tick           ingest simulation positions
//	POST   /api/sessions/{id}/focus          move the fisheye focus
//	POST   /api/sessions/{id}/hover          enter a node or link, or leave
//	POST   /api/sessions/{id}/click          click a node or link
//	POST   /api/sessions/{id}/pin            pin or unpin a node
//	GET    /api/sessions/{id}/locate?line=N  line number to character range
//	GET    /api/sessions/{id}/render.svg     snapshot of the current frame
//
// Errors are JSON {"code", "message"} with a status derived from the error
// code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sboosali/notegraph/pkg/buildinfo"
	"github.com/sboosali/notegraph/pkg/session"
	"github.com/sboosali/notegraph/pkg/storage"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// CookieName is the session cookie.
const CookieName = "notegraph_session"

// Config configures a Server.
type Config struct {
	Addr     string
	Sessions *session.Registry
	// Store persists each session's note buffer. Optional.
	Store  storage.Store
	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	sessions *session.Registry
	store    storage.Store
	logger   *log.Logger
	router   chi.Router
	http     *http.Server
}

// New builds the router.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		sessions: cfg.Sessions,
		store:    cfg.Store,
		logger:   logger,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleCookieSession)
		r.Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.loadSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/notes", s.handleNotes)
			r.Post("/draw", s.handleDraw)
			r.Post("/query", s.handleQuery)
			r.Post("/tick", s.handleTick)
			r.Post("/focus", s.handleFocus)
			r.Post("/hover", s.handleHover)
			r.Post("/click", s.handleClick)
			r.Post("/pin", s.handlePin)
			r.Get("/locate", s.handleLocate)
			r.Get("/render.svg", s.handleRenderSVG)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}
