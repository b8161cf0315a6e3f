package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/config"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/httpserver"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/logger"
)

// NewServer builds the HTTP server for the imgur-proxy service.
func NewServer(cfg *config.Config, handler *Handler, log logger.Logger) *httpserver.Server {
	return httpserver.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithHost(cfg.Service.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORS(httpserver.CORSConfig{
			Enabled:          cfg.CORS.Enabled,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
		}).
		WithHTMLTemplates("web/templates/*.html").
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler)
		}).
		Build()
}
