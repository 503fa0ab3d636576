package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/nuclear-add/internal/api/http"
	"github.com/GriffinCanCode/nuclear-add/internal/api/middleware"
	"github.com/GriffinCanCode/nuclear-add/internal/api/ws"
	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/config"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/nuclear-add/internal/logging"
)

// Version is reported by /health and overridden at link time.
var Version = "dev"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	engine  *engine.Engine
	tracer  *tracing.Tracer
	logger  *zap.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance. Metrics are registered on reg
// and served from /metrics.
func NewServer(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) (*Server, error) {
	logger = logging.OrNop(logger)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("Initializing nuclear-add server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("precision_mode", cfg.Engine.PrecisionMode),
		zap.String("backend", cfg.Engine.Backend),
	)

	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New("nuclear-add", logger)

	engCfg, err := cfg.Engine.Build()
	if err != nil {
		tracer.Close()
		return nil, err
	}
	eng, err := engine.New(engCfg,
		engine.WithLogger(logger.Named("engine")),
		engine.WithMetrics(metrics),
	)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	logger.Info("Engine initialized",
		zap.String("engine_id", eng.ID().String()),
		zap.Stringer("config", eng.Config()),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.Server.CORSOrigins)))
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(eng, Version)
	stats := api.NewStatsHandler(eng, metrics)
	wsHandler := ws.NewHandler(eng, metrics, logger.Named("ws"))

	handlers.Register(router)
	router.GET("/v1/stats", stats.GetStats)
	router.GET("/v1/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		engine:  eng,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Engine returns the engine the server computes with
func (s *Server) Engine() *engine.Engine { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(s.config.Server.ShutdownTimeout)
	s.logger.Info("Shutting down server...", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	<-errCh
	s.Close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the tracer and flushes the logger
func (s *Server) Close() {
	s.tracer.Close()
	_ = s.logger.Sync()
}
