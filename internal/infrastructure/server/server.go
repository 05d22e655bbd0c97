package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/polychlorinated/structured-data-web-scraper/internal/api/http"
	"github.com/polychlorinated/structured-data-web-scraper/internal/api/middleware"
	"github.com/polychlorinated/structured-data-web-scraper/internal/crawl"
	"github.com/polychlorinated/structured-data-web-scraper/internal/fetch"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/tracing"
	"github.com/polychlorinated/structured-data-web-scraper/internal/ws"
)

// Server wraps the ops HTTP server and the extraction pipeline
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	tracer  *tracing.Tracer
	hub     *ws.Hub
	fetcher *fetch.Client
	runner  *crawl.Runner
	router  *gin.Engine
	http    *http.Server
}

// New assembles the server and its pipeline. metrics may be nil, which
// drops the /metrics route and all collection.
func New(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	tracer := tracing.New("scraper-api", logger.Logger)
	hub := ws.NewHub(logger, metrics)
	fetcher := fetch.New(cfg.Fetch, logger, metrics)
	runner := crawl.New(cfg, fetcher, hub, logger, metrics, tracer)
	handlers := apihttp.NewHandlers(runner, fetcher, hub)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Extraction and run management
	router.POST("/extract", handlers.Extract)
	router.POST("/jobs", handlers.SubmitJob)
	router.GET("/jobs", handlers.ListRuns)
	router.GET("/jobs/:id", handlers.GetRun)

	// WebSocket
	router.GET("/stream", hub.HandleConnection)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		tracer:  tracer,
		hub:     hub,
		fetcher: fetcher,
		runner:  runner,
		router:  router,
	}
}

// Router exposes the gin engine for tests and embedding
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Runner exposes the job runner
func (s *Server) Runner() *crawl.Runner {
	return s.runner
}

// Run starts the server and blocks until shutdown
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("ops server listening", zap.String("addr", addr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains the HTTP server, then stops active runs
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
	}

	err := s.runner.Close()
	s.logger.Sync()
	return err
}
