// Package server exposes expression evaluation over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.trai.ch/qcache/internal/engine/evaluator"
	"go.trai.ch/qcache/internal/engine/expr"
	"go.trai.ch/zerr"
)

// ServiceName is reported to the tracing middleware.
const ServiceName = "qcache"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Engine is the evaluation surface served over HTTP.
type Engine interface {
	EvaluateAll(
		ctx context.Context,
		instruments []string,
		node expr.Node,
		start, end time.Time,
		freq domain.Freq,
	) ([]evaluator.Frame, error)
	Instruments(ctx context.Context, market string, pipe domain.FilterPipe) (domain.InstrumentList, error)
	CalendarRange(ctx context.Context, start, end time.Time, freq domain.Freq, future bool) ([]time.Time, error)
	ClearCaches()
	Stats() map[domain.Namespace]cache.Stats
}

// Server routes HTTP requests to an Engine.
type Server struct {
	engine    Engine
	logger    ports.Logger
	lifecycle *Lifecycle
	router    *gin.Engine
}

// New creates a Server. metrics, when non-nil, is mounted on GET /metrics.
func New(engine Engine, metrics http.Handler, logger ports.Logger, lifecycle *Lifecycle) *Server {
	if lifecycle == nil {
		lifecycle = NewLifecycle(0)
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		lifecycle: lifecycle,
		router:    gin.New(),
	}
	s.router.Use(gin.Recovery(), otelgin.Middleware(ServiceName), s.touch)
	s.routes(metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) {
	s.router.GET("/healthz", s.health)
	if metrics != nil {
		s.router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := s.router.Group("/v1")
	v1.GET("/eval", s.eval)
	v1.GET("/calendar", s.calendar)
	v1.GET("/instruments", s.instruments)
	v1.GET("/status", s.status)
	v1.POST("/cache/clear", s.clear)
}

// touch records activity so an idle server can shut itself down.
func (s *Server) touch(c *gin.Context) {
	s.lifecycle.ResetTimer()
	c.Next()
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is done or the lifecycle shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done or the lifecycle shuts down, then drains
// in-flight requests. Shutdown by either path returns nil.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
	case <-s.lifecycle.ShutdownChan():
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "failed to shut down server")
	}
	return nil
}
