package ui

import (
	"context"
	"net/http"
	"time"

	"gokaizen/app"
	"gokaizen/domain/study"
	"gokaizen/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName is reported by the banner and health endpoints
const ServiceName = "gokaizen"

// Options configures the HTTP server
type Options struct {
	AllowedOrigins []string
	// SimulationDefaults fill fields omitted from a /simulate body
	SimulationDefaults study.SimulationParams
}

// Server exposes the analysis service over HTTP
type Server struct {
	router   *gin.Engine
	service  *app.AnalysisService
	defaults study.SimulationParams
	origins  []string
}

// NewServer creates a new web server instance with routes registered
func NewServer(service *app.AnalysisService, opts Options) *Server {
	defaults := opts.SimulationDefaults
	if defaults.NBefore == 0 {
		defaults = study.DefaultSimulationParams()
	}

	s := &Server{
		router:   gin.New(),
		service:  service,
		defaults: defaults,
		origins:  opts.AllowedOrigins,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger())
	s.router.Use(corsMiddleware(s.origins))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/simulate", s.handleSimulate)
	s.router.GET("/analyze", s.handleAnalyze)
	s.router.GET("/analyze/summary", s.handleSummary)

	s.router.GET("/data/current", s.handleCurrentData)
	s.router.GET("/data/download", s.handleDownload)

	s.router.GET("/status", s.handleStatus)
	s.router.POST("/reset", s.handleReset)
	s.router.GET("/datasets/history", s.handleHistory)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the router for embedding in tests or other servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	logger := logging.Component("http")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting gokaizen API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down gokaizen API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
