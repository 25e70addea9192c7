package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// CORS header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "authorization, x-client-info, apikey, content-type"
	AllowMethods = "GET, POST, OPTIONS"
)

// DefaultSyncTimeout bounds one invocation when no timeout is configured.
const DefaultSyncTimeout = 5 * time.Minute

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP trigger surface.
type Server struct {
	sync        driving.SyncService
	probe       driving.SecretsProbe
	syncTimeout time.Duration
	engine      *gin.Engine
}

// NewServer creates a server. A zero syncTimeout uses DefaultSyncTimeout.
func NewServer(syncSvc driving.SyncService, probe driving.SecretsProbe, syncTimeout time.Duration) *Server {
	if syncTimeout <= 0 {
		syncTimeout = DefaultSyncTimeout
	}
	s := &Server{
		sync:        syncSvc,
		probe:       probe,
		syncTimeout: syncTimeout,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// routes builds the gin engine.
func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(), cors())

	r.OPTIONS("/*path", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/sync/:table", s.handleSync)
	r.GET("/sync/:table", s.handleSync)
	r.GET("/test-secrets", s.handleSecrets)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorEnvelope{Error: "route not found"})
	})
	return r
}

// handleSync runs one invocation. The request body is ignored.
func (s *Server) handleSync(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.syncTimeout)
	defer cancel()

	result, err := s.sync.Sync(ctx, c.Param("table"))
	if err != nil {
		c.JSON(StatusFor(err), domain.ErrorEnvelope{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleSecrets reports which configuration values are present.
func (s *Server) handleSecrets(c *gin.Context) {
	if s.probe == nil {
		c.JSON(http.StatusOK, map[string]bool{})
		return
	}
	c.JSON(http.StatusOK, s.probe.Probe(c.Request.Context()))
}

// cors adds the CORS headers to every response.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", AllowOrigin)
		h.Set("Access-Control-Allow-Headers", AllowHeaders)
		h.Set("Access-Control-Allow-Methods", AllowMethods)
		c.Next()
	}
}

// requestLog logs each request at debug level.
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("Listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
