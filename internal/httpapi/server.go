// Package httpapi exposes the task use cases over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/runoshun/taskhub/internal/app"
)

// Header names.
const (
	HeaderActor     = "X-Actor-ID"   // User ID or email the request acts as
	HeaderRequestID = "X-Request-ID" // Correlates a response with server logs
)

const shutdownTimeout = 5 * time.Second

// Server is the taskhub HTTP server.
type Server struct {
	c      *app.Container
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a server with every route registered.
func NewServer(c *app.Container) *Server {
	router := gin.New()

	s := &Server{
		c:      c,
		router: router,
		logger: c.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.POST("/tasks/bulk", s.handleBulkUpdate)
		api.POST("/tasks/bulk-update", s.handleBulkUpdate)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.GET("/tasks/:id/events", s.handleTaskHistory)
		api.GET("/tasks/:id/dependencies", s.handleListDependencies)
		api.POST("/tasks/:id/dependencies", s.handleAddDependency)
		api.POST("/tasks/:id/dependencies/:depends_on_id", s.handleAddDependencyPath)

		api.GET("/users", s.handleListUsers)
		api.POST("/users", s.handleRegisterUser)

		api.GET("/analytics/distribution", s.handleDistribution)
		api.GET("/analytics/timeline", s.handleTimeline)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// requestID tags every request with an ID, reusing the caller's if given.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// accessLog writes one structured line per request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(HeaderRequestID),
		)
	}
}
