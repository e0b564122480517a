// Package http provides the loopback admin server: health and readiness probes, Prometheus
// metrics and the read-only audit log endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/casevault/internal/audit/http"
	auditUsecase "github.com/allisson/casevault/internal/audit/usecase"
	"github.com/allisson/casevault/internal/metrics"
)

// ReadinessChecker reports whether a dependency can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// AuditChainReporter exposes the last audit chain verification outcome.
type AuditChainReporter interface {
	Snapshot() auditUsecase.ChainSnapshot
}

// RouterConfig holds the optional parts of the admin router.
type RouterConfig struct {
	AuditLogHandler *auditHTTP.AuditLogHandler
	// AuditChainStatus adds the audit chain state to /ready. It never fails readiness.
	AuditChainStatus AuditChainReporter
	MetricsProvider  *metrics.Provider
	// MetricsNamespace prefixes the HTTP request metrics.
	MetricsNamespace string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server is the admin HTTP server.
type Server struct {
	db         *sql.DB
	keys       ReadinessChecker
	auditChain AuditChainReporter
	router     *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the admin server. keys may be nil when no key has been loaded.
func NewServer(
	db *sql.DB,
	keys ReadinessChecker,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		keys:   keys,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	s.auditChain = cfg.AuditChainStatus

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace, "/metrics"))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	if cfg.MetricsProvider != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsProvider.Handler()))
	}

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	if cfg.AuditLogHandler != nil {
		auditLogs := v1.Group("/audit-logs")
		auditLogs.GET("", cfg.AuditLogHandler.ListHandler)
		auditLogs.GET("/verify", cfg.AuditLogHandler.VerifyHandler)
	}

	s.router = router
}

// GetHandler returns the configured router.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.SetupRouter(RouterConfig{})
	}
	s.server.Handler = s.router

	s.logger.Info("starting admin server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down admin server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers and the master key is
// loaded. A broken audit chain is reported but does not make the server unready.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"database": "ok", "encryption_key": "ok"}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	}
	if s.keys == nil || s.keys.Ready(ctx) != nil {
		components["encryption_key"] = "error"
		ready = false
	}

	if s.auditChain != nil {
		snapshot := s.auditChain.Snapshot()
		components["audit_chain"] = snapshot.State
		if snapshot.State == auditUsecase.ChainBroken {
			components["audit_chain_broken_at"] = snapshot.BrokenAtID
			components["audit_chain_reason"] = snapshot.Reason
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
