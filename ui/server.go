package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goanalytics/app"
	"goanalytics/internal"
	"goanalytics/internal/api"
	"goanalytics/internal/notify"
)

// Server exposes the workbench as a JSON API with an SSE event stream
type Server struct {
	router     *gin.Engine
	workbench  *app.WorkbenchService
	hub        *api.SSEHub
	permission *notify.Permission
	log        *internal.Logger
	http       *http.Server
}

// NewServer creates a server and registers its routes
func NewServer(workbench *app.WorkbenchService, hub *api.SSEHub, permission *notify.Permission, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if permission == nil {
		permission = notify.Process()
	}
	s := &Server{
		router:     gin.New(),
		workbench:  workbench,
		hub:        hub,
		permission: permission,
		log:        logger.With("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	r := s.router.Group("/api")
	r.GET("/methods", s.handleMethods)
	r.GET("/datasets", s.handleDatasets)
	r.POST("/catalog/refresh", s.handleRefreshCatalog)

	sess := r.Group("/session")
	sess.GET("", s.handleSession)
	sess.POST("/method", s.handleSelectMethod)
	sess.POST("/dataset", s.handleSelectDataset)
	sess.PUT("/parameters/:name", s.handleSetParameter)
	sess.POST("/run", s.handleRun)
	sess.POST("/cancel", s.handleCancel)
	sess.GET("/last", s.handleLastSettled)
	sess.GET("/last/report", s.handleReport)

	r.GET("/history", s.handleHistory)
	r.DELETE("/history", s.handleClearHistory)

	r.GET("/notifications/permission", s.handlePermission)
	r.POST("/notifications/permission", s.handleSetPermission)

	if s.hub != nil {
		r.GET("/events", s.hub.HandleSSE)
	}
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes the event stream
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
