// Package server exposes the mapping engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacoelho/rowmap/internal/ratelimit"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/store"
)

const (
	defaultMaxRequestBytes = 10 << 20
	defaultShutdownTimeout = 10 * time.Second
	limiterIdle            = 15 * time.Minute
)

// Fetcher loads the document a source points at.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) (any, error)
}

// Options configures a Server. Fetcher and Store are required.
type Options struct {
	Fetcher         Fetcher
	Store           store.Store
	Logger          *slog.Logger
	CORSOrigin      string
	RateLimit       float64 // Requests per second per client IP (0 = unlimited)
	RateBurst       int
	MaxRequestBytes int64
	ShutdownTimeout time.Duration
}

type Server struct {
	fetcher         Fetcher
	store           store.Store
	ids             *store.IDGenerator
	logger          *slog.Logger
	limiter         *ratelimit.Keyed
	corsOrigin      string
	maxRequestBytes int64
	shutdownTimeout time.Duration
	router          *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("server: fetcher is required")
	}
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxRequestBytes <= 0 {
		opts.MaxRequestBytes = defaultMaxRequestBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		fetcher:         opts.Fetcher,
		store:           opts.Store,
		ids:             store.NewIDGenerator(),
		logger:          opts.Logger,
		limiter:         ratelimit.NewKeyed(opts.RateLimit, opts.RateBurst),
		corsOrigin:      opts.CORSOrigin,
		maxRequestBytes: opts.MaxRequestBytes,
		shutdownTimeout: opts.ShutdownTimeout,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(s.recovery())
	router.Use(requestID())
	router.Use(s.requestLogger())
	router.Use(metricsMiddleware())
	if s.corsOrigin != "" {
		router.Use(cors(s.corsOrigin))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(s.rateLimit())
	api.POST("/fetch-url", s.fetchURL)
	api.POST("/fetch-redis", s.fetchRedis)
	api.POST("/preview", s.preview)
	api.POST("/save-mapping", s.saveMapping)
	api.GET("/data/:configId", s.data)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go s.sweepLimiter(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) sweepLimiter(ctx context.Context) {
	if s.limiter.Unlimited() {
		return
	}

	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.limiter.Sweep(limiterIdle); removed > 0 {
				s.logger.Debug("rate limiter swept", slog.Int("removed", removed))
			}
		}
	}
}
