package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/telemetry"
)

// SetupServiceRoutes registers the proxy's routes on the router. Static
// routes are registered before the catch-all :imgurId parameter so that
// /proxy, /metrics and /health resolve to their own handlers.
func SetupServiceRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Landing)
	router.GET("/proxy", handler.ProxyURL)
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	router.GET("/a/:albumId", handler.Album)
	router.GET("/i/:filename", handler.DirectImage)
	router.GET("/:imgurId", handler.Viewer)
}
