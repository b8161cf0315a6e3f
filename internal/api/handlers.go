// Package api wires the proxy's inbound HTTP surface: URL submission,
// album and viewer pages, and direct image relay.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/config"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/domain"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/imgur"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/logger"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/resolve"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/telemetry"
)

// Cache and CORS headers applied to relayed image bytes.
const (
	imageCacheControl = "public, max-age=86400"
	imageCORSOrigin   = "*"
)

// Fetcher is the slice of the imgur client the handlers depend on.
type Fetcher interface {
	GetMedia(ctx context.Context, id string) (*domain.Post, error)
	GetAlbum(ctx context.Context, id string) (*domain.Post, error)
	FetchDirect(ctx context.Context, filename string) (*imgur.ImageStream, error)
	FetchAnyExtension(ctx context.Context, id string) (*imgur.ImageStream, error)
}

// Handler holds HTTP request handlers.
type Handler struct {
	classifier *resolve.Classifier
	fetcher    Fetcher
	basePath   string
	metrics    *telemetry.Metrics
	logger     logger.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(cfg *config.Config, classifier *resolve.Classifier, fetcher Fetcher, metrics *telemetry.Metrics, log logger.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		fetcher:    fetcher,
		basePath:   cfg.Proxy.BasePath,
		metrics:    metrics,
		logger:     log,
	}
}

// Landing renders the URL submission page.
func (h *Handler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"basePath": h.basePath,
	})
}

// ProxyURL classifies a submitted URL and redirects to the canonical path
// for the resolved content. GET /proxy?url=<raw>
func (h *Handler) ProxyURL(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		h.clientError(c, "Missing url parameter")
		return
	}

	ref, err := h.classifier.Classify(rawURL)
	if err != nil {
		h.metrics.RejectedURLs.Inc()
		h.logger.Warn("Rejected submitted URL",
			logger.String("url", rawURL),
			logger.Error(err),
		)
		h.clientError(c, "Not a recognized imgur URL")
		return
	}

	h.logger.Info("Classified submitted URL",
		logger.String("url", rawURL),
		logger.String("kind", string(ref.Kind)),
		logger.String("id", ref.ID),
	)

	c.Redirect(http.StatusFound, h.basePath+ref.CanonicalPath())
}

// Album fetches album metadata and renders the gallery page.
// GET /a/:albumId
func (h *Handler) Album(c *gin.Context) {
	albumID := c.Param("albumId")
	if !h.validBareID(c, albumID) {
		return
	}

	post, err := h.fetcher.GetAlbum(c.Request.Context(), albumID)
	if err != nil {
		h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindAlbum), "error").Inc()
		h.originError(c, err, albumID)
		return
	}

	h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindAlbum), "ok").Inc()
	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"post":     post,
		"basePath": h.basePath,
	})
}

// Viewer fetches single-media metadata and renders the viewer page. When
// the metadata API no longer knows the ID, falls back to probing the CDN
// directly and streaming the bytes, which still serves older posts.
// GET /:imgurId
func (h *Handler) Viewer(c *gin.Context) {
	imgurID := c.Param("imgurId")
	if !h.validBareID(c, imgurID) {
		return
	}

	post, err := h.fetcher.GetMedia(c.Request.Context(), imgurID)
	if err == nil {
		h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindImage), "ok").Inc()
		c.HTML(http.StatusOK, "viewer.html", gin.H{
			"post":     post,
			"basePath": h.basePath,
		})
		return
	}

	if !errors.Is(err, domain.ErrOriginNotFound) {
		h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindImage), "error").Inc()
		h.originError(c, err, imgurID)
		return
	}

	stream, probeErr := h.fetcher.FetchAnyExtension(c.Request.Context(), imgurID)
	if probeErr != nil {
		h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindImage), "miss").Inc()
		h.originError(c, probeErr, imgurID)
		return
	}

	h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindImage), "ok").Inc()
	h.relay(c, stream)
}

// DirectImage streams CDN bytes for a validated filename.
// GET /i/:filename
func (h *Handler) DirectImage(c *gin.Context) {
	filename := c.Param("filename")
	if !resolve.ValidIdentifier(filename) || !strings.Contains(filename, ".") {
		h.rejectIdentifier(c, filename)
		return
	}

	stream, err := h.fetcher.FetchDirect(c.Request.Context(), filename)
	if err != nil {
		h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindDirect), "miss").Inc()
		h.originError(c, err, filename)
		return
	}

	h.metrics.ProxiedRequests.WithLabelValues(string(domain.KindDirect), "ok").Inc()
	h.relay(c, stream)
}

// validBareID validates a bare (extension-less) identifier from a route
// path segment, responding and returning false on rejection.
func (h *Handler) validBareID(c *gin.Context, id string) bool {
	if !resolve.ValidIdentifier(id) || strings.Contains(id, ".") {
		h.rejectIdentifier(c, id)
		return false
	}
	return true
}

func (h *Handler) rejectIdentifier(c *gin.Context, id string) {
	h.metrics.RejectedIDs.Inc()
	h.logger.Warn("Rejected path identifier", logger.String("id", id))
	h.clientError(c, "Invalid identifier")
}

// relay streams an origin image response back to the client with caching
// and CORS headers. Closes the stream.
func (h *Handler) relay(c *gin.Context, stream *imgur.ImageStream) {
	defer stream.Body.Close()

	h.metrics.ActiveStreams.Inc()
	defer h.metrics.ActiveStreams.Dec()

	extraHeaders := map[string]string{
		"Cache-Control":               imageCacheControl,
		"Access-Control-Allow-Origin": imageCORSOrigin,
	}
	c.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, extraHeaders)
}

// clientError responds with a generic 400. Details stay in the logs.
func (h *Handler) clientError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     msg,
		Code:      "INVALID_REQUEST",
		Timestamp: time.Now(),
	})
}

// originError maps an outbound-fetch failure onto the client-facing status.
func (h *Handler) originError(c *gin.Context, err error, id string) {
	h.logger.Error("Origin fetch failed",
		logger.String("id", id),
		logger.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrOriginNotFound), errors.Is(err, domain.ErrOriginUnreachable):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     "Content not found",
			Code:      "NOT_FOUND",
			Timestamp: time.Now(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Upstream error",
			Code:      "ORIGIN_ERROR",
			Timestamp: time.Now(),
		})
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
