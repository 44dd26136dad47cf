// Package server exposes the prediction service over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/observability"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	readyMessage    = "Modelo de predicciones de cultivos listo"
)

// CropStatus reports which crops can be served.
type CropStatus interface {
	Supported() []string
	Profiles() []prediction.Profile
}

type Options struct {
	Predictor     prediction.Predictor
	Crops         CropStatus
	Observability *observability.Observability
	Logger        logger.Logger
	Mode          string
	Version       string
}

type Server struct {
	router    *gin.Engine
	predictor prediction.Predictor
	crops     CropStatus
	obs       *observability.Observability
	logger    logger.Logger
	version   string
}

func New(opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Server{
		router:    gin.New(),
		predictor: opts.Predictor,
		crops:     opts.Crops,
		obs:       opts.Observability,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
		version:   opts.Version,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	s.router.GET("/", s.handleRoot)
	s.router.POST("/predict", s.handlePredict)
	s.router.GET("/crops", s.handleCrops)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewHTTPServer applies the configured timeouts to h.
func NewHTTPServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}

// requestID propagates a caller supplied X-Request-ID or assigns a new one.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"requestId":  c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields)
			return
		}
		s.logger.Debug("request served", fields)
	}
}
