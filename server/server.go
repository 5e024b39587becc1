// Package server exposes a running engine over HTTP: a JSON command API for
// editors and a websocket stream of frame states for external renderers.
package server

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/engine"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/presets"
	"github.com/milk9111/listeningjourney/storage"
)

type Server struct {
	world   *engine.World
	store   storage.Store
	catalog *presets.Catalog
	hub     *Hub
	router  *gin.Engine
}

type Option func(*Server)

// WithStore enables the save and listing routes.
func WithStore(st storage.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithCatalog enables the preset routes.
func WithCatalog(c *presets.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// New builds the router and registers the frame hub as a publisher of w.
func New(w *engine.World, opts ...Option) *Server {
	s := &Server{world: w, hub: NewHub()}
	for _, opt := range opts {
		opt(s)
	}
	w.AddPublisher(s.hub)

	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, err any) {
			log.Error().Str("component", "server").Interface("panic", err).Str("stack", string(debug.Stack())).Msg("handler panic")
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		requestLogger(),
	)
	s.router = r
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.hub.Clients()})
	})
	r.GET("/ws/frames", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})

	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/journey", wrap(s.getJourney))
	api.POST("/journey/save", wrap(s.saveJourney))
	api.GET("/journeys", wrap(s.listJourneys))

	api.POST("/audio", bind(s.loadAudio))
	api.POST("/mode", bind(s.setMode))
	api.POST("/playback/:action", s.playback)

	api.POST("/sections", bind(s.addSection))
	api.DELETE("/sections/:index", wrap(s.removeSection))
	api.PATCH("/sections/:index", bind(s.updateSection))
	api.PUT("/boundaries/:index", bind(s.resizeBoundary))
	api.PUT("/last-edge", bind(s.extendLastEdge))

	api.POST("/items", bind(s.placeItem))
	api.PATCH("/items/:id", bind(s.updateItem))
	api.DELETE("/items/:id", wrap(s.removeItem))

	api.GET("/presets", wrap(s.listPresets))
	api.POST("/presets/:id", wrap(s.applyPreset))
	api.POST("/revert-preset", wrap(s.revertPreset))
	api.POST("/reset", wrap(s.reset))
}

// httpError carries an explicit status through a handler's error return.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &httpError{status: http.StatusBadRequest, err: err}
}

func statusOf(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, engine.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, overlay.ErrItemNotFound),
		errors.Is(err, presets.ErrUnknownJourney):
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func respond(c *gin.Context, out any, err error) {
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, out)
}

// wrap adapts a handler returning a value and an error.
func wrap(fn func(c *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c)
		respond(c, out, err)
	}
}

// bind decodes the JSON body into T before calling fn.
func bind[T any](fn func(c *gin.Context, in *T) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			respond(c, nil, badRequest(err))
			return
		}
		out, err := fn(c, &in)
		respond(c, out, err)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("component", "server").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
