// Package server exposes the dashboard over an HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ukaji3/sheetdash-go/internal/config"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/dashboard"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = 3 * time.Minute
	limiterIdle     = 5 * time.Minute
)

// Server serves cards, ad-hoc sheets and metrics.
type Server struct {
	cfg      config.ServerConfig
	echo     *echo.Echo
	board    *dashboard.Board
	cache    *fetch.Cache
	agg      *aggregate.Aggregator
	palettes map[string][]string
	limiter  *RateLimiter
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and lifecycle logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPalettes sets the named palettes ad-hoc sheet requests can refer to.
func WithPalettes(p map[string][]string) Option {
	return func(s *Server) { s.palettes = p }
}

// New creates a Server and registers its routes.
func New(cfg config.ServerConfig, board *dashboard.Board, cache *fetch.Cache, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		board:    board,
		cache:    cache,
		palettes: map[string][]string{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = aggregate.New(s.logger)
	if cfg.RequestRate > 0 {
		s.limiter = NewRateLimiter(rate.Limit(cfg.RequestRate), max(cfg.RequestBurst, 1))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/healthz"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				s.logger.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}
	api.GET("/cards", s.handleListCards)
	api.GET("/cards/:id", s.handleGetCard)
	api.GET("/sheets", s.handleSheet)
	api.DELETE("/cache", s.handleInvalidate)

	s.echo = e
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.echo.Server.ReadTimeout = s.cfg.ReadTimeout
	s.echo.Server.WriteTimeout = s.cfg.WriteTimeout

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting sheetdash server", "address", s.cfg.Addr)
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	if s.limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterSweep)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					s.limiter.Sweep(limiterIdle)
				}
			}
		})
	}

	return g.Wait()
}
