// Package server exposes the locator snapshot over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/locator"
)

// Coordinator is the part of locator.Coordinator the server drives.
type Coordinator interface {
	Snapshot() locator.Snapshot
	Subscribe(ctx context.Context) <-chan locator.Snapshot
	Refresh(ctx context.Context, trigger locator.Trigger) error
	UpdateCoordinate(coord geo.Coordinate) error
	Reset()
}

// Server serves the API.
type Server struct {
	coord  Coordinator
	log    zerolog.Logger
	engine *gin.Engine
	// refreshTimeout bounds POST /api/refresh.
	refreshTimeout time.Duration
}

// New builds the router. refreshTimeout of 0 means 30s.
func New(coord Coordinator, refreshTimeout time.Duration, log zerolog.Logger) *Server {
	if refreshTimeout <= 0 {
		refreshTimeout = 30 * time.Second
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{coord: coord, log: log, engine: gin.New(), refreshTimeout: refreshTimeout}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/snapshot", s.getSnapshot)
	api.POST("/refresh", s.postRefresh)
	api.POST("/location", s.postLocation)
	api.POST("/reset", s.postReset)
	api.GET("/ws", s.streamSnapshots)
}

func (s *Server) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, NewView(s.coord.Snapshot()))
}

var triggers = map[string]locator.Trigger{
	"":           locator.Manual,
	"manual":     locator.Manual,
	"foreground": locator.Foreground,
	"periodic":   locator.Periodic,
}

func (s *Server) postRefresh(c *gin.Context) {
	trigger, ok := triggers[c.Query("trigger")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trigger must be manual, foreground or periodic"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.refreshTimeout)
	defer cancel()

	err := s.coord.Refresh(ctx, trigger)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, NewView(s.coord.Snapshot()))
	case errors.Is(err, locator.ErrNoCoordinate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, locator.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		// Still resolving; the caller sees the loading snapshot.
		c.JSON(http.StatusAccepted, NewView(s.coord.Snapshot()))
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (s *Server) postLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}
	coord := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := s.coord.UpdateCoordinate(coord); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, NewView(s.coord.Snapshot()))
}

// postReset drops the coordinate, address, times and scheduled alerts.
func (s *Server) postReset(c *gin.Context) {
	s.coord.Reset()
	s.log.Info().Msg("snapshot reset")
	c.JSON(http.StatusOK, NewView(s.coord.Snapshot()))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
