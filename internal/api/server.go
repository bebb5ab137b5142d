// Package api implements the read-only projection HTTP surface
// SPEC_FULL.md names: public "live" signal queries, situation/dispatch
// reads, and a health endpoint — gin-based, grounded on the teacher's
// earlier gin-based pkg/api/handlers.go (the later echo-based server.go
// is a subsequent rewrite for a different concern, session/chat
// orchestration, that this domain has no equivalent of).
package api

import (
	"context"
	"net"
	"net/http"
	stdsql "database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/config"
)

// Server is the read-only projection HTTP API.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	client     *ent.Client
	db         *stdsql.DB
	cfg        *config.Config
}

// NewServer builds the API server and registers every route. cfg may be
// nil in tests that don't exercise the health endpoint's stats.
func NewServer(client *ent.Client, db *stdsql.DB, cfg *config.Config) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, client: client, db: db, cfg: cfg}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	v1.GET("/signals/:type", s.listSignalsHandler)
	v1.GET("/situations", s.listSituationsHandler)
	v1.GET("/situations/:id", s.getSituationHandler)
	v1.GET("/situations/:id/dispatches", s.listDispatchesHandler)
}

// Start serves on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener serves on a pre-created listener — used by tests
// that need a random OS-assigned port, the same split the teacher's
// pkg/api.Server.Start/StartWithListener keeps.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "ok"}
	if err := s.db.PingContext(reqCtx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	if s.cfg != nil {
		stats := s.cfg.Stats()
		resp.Regions = stats.Regions
		resp.LLMProviders = stats.LLMProviders
	}
	c.JSON(http.StatusOK, resp)
}
