// Package imgur provides the outbound client for the origin CDN and post
// metadata API. Every URL it fetches is built from identifiers that already
// passed classification or validation; the client never interpolates raw
// request input.
package imgur

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/config"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/domain"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/logger"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/telemetry"
)

// ProbeExtensions is the fixed preference order tried when a plain image ID
// arrives without an extension. Strictly sequential, first 200 wins.
var ProbeExtensions = []string{"jpg", "png", "gif", "jpeg", "webp"}

// browserHeaders mimics a desktop Firefox image request. The CDN blocks
// clients that look like bots.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:144.0) Gecko/20100101 Firefox/144.0",
	"Accept":          "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://imgur.com/",
	"DNT":             "1",
	"Sec-Fetch-Dest":  "image",
	"Sec-Fetch-Mode":  "no-cors",
	"Sec-Fetch-Site":  "cross-site",
}

// ImageStream is a relayable image response from the origin CDN.
// The caller owns Body and must close it.
type ImageStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Client fetches images and post metadata from the origin service.
type Client struct {
	apiBaseURL string
	cdnBaseURL string
	clientID   string
	displayURL func(path string) string
	httpClient *http.Client
	metrics    *telemetry.Metrics
	logger     logger.Logger
}

// NewClient creates a client from service configuration. The outbound
// timeout applies per request; per-request contexts cancel in-flight calls.
func NewClient(cfg *config.Config, metrics *telemetry.Metrics, log logger.Logger) *Client {
	return &Client{
		apiBaseURL: strings.TrimSuffix(cfg.Imgur.APIBaseURL, "/"),
		cdnBaseURL: "https://" + cfg.Imgur.CDNHost,
		clientID:   cfg.Imgur.ClientID,
		displayURL: cfg.PublicURL,
		httpClient: &http.Client{Timeout: cfg.Imgur.RequestTimeout},
		metrics:    metrics,
		logger:     log,
	}
}

// GetMedia fetches metadata for a single media post.
func (c *Client) GetMedia(ctx context.Context, id string) (*domain.Post, error) {
	return c.getPost(ctx, "media", id)
}

// GetAlbum fetches metadata for an album. Galleries resolve through the
// same endpoint shape.
func (c *Client) GetAlbum(ctx context.Context, id string) (*domain.Post, error) {
	return c.getPost(ctx, "albums", id)
}

func (c *Client) getPost(ctx context.Context, endpoint, id string) (*domain.Post, error) {
	reqURL := fmt.Sprintf("%s/post/v1/%s/%s?client_id=%s&include=media",
		c.apiBaseURL, endpoint, url.PathEscape(id), url.QueryEscape(c.clientID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.OriginFetchDuration.WithLabelValues("api").Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("Origin metadata request failed",
			logger.String("endpoint", endpoint),
			logger.String("id", id),
			logger.Error(err),
		)
		return nil, domain.ErrOriginUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Origin metadata request rejected",
			logger.String("endpoint", endpoint),
			logger.String("id", id),
			logger.Int("status", resp.StatusCode),
		)
		return nil, domain.ErrOriginNotFound
	}

	var post postResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&post); decodeErr != nil {
		c.logger.Error("Origin metadata response undecodable",
			logger.String("endpoint", endpoint),
			logger.String("id", id),
			logger.Error(decodeErr),
		)
		return nil, domain.ErrOriginResponse
	}
	if len(post.Media) == 0 {
		c.logger.Error("Origin metadata response carries no media list",
			logger.String("endpoint", endpoint),
			logger.String("id", id),
		)
		return nil, domain.ErrOriginResponse
	}

	return c.mapPost(post), nil
}

// mapPost converts the wire shape into displayable records whose URLs
// re-enter this proxy at /i/{id}.{ext}.
func (c *Client) mapPost(post postResponse) *domain.Post {
	items := make([]domain.MediaItem, 0, len(post.Media))
	for _, m := range post.Media {
		ext := strings.TrimPrefix(m.Ext, ".")
		items = append(items, domain.MediaItem{
			ID:       m.ID,
			URL:      c.displayURL("/i/" + m.ID + "." + ext),
			Width:    m.Width,
			Height:   m.Height,
			Caption:  m.caption(),
			MimeType: m.MimeType,
		})
	}
	return &domain.Post{
		ID:    post.ID,
		Title: post.Title,
		Media: items,
	}
}

// FetchDirect fetches a CDN file by validated filename and returns the
// response body as a stream. The caller must close the stream.
func (c *Client) FetchDirect(ctx context.Context, filename string) (*ImageStream, error) {
	return c.fetchCDN(ctx, c.cdnBaseURL+"/"+filename)
}

// FetchAnyExtension probes the CDN once per candidate extension, in order,
// and returns the first 200 response. Exhausting all candidates is a
// terminal not-found; this loop is a bounded fallback, not a retry policy.
func (c *Client) FetchAnyExtension(ctx context.Context, id string) (*ImageStream, error) {
	for _, ext := range ProbeExtensions {
		c.metrics.ProbeAttempts.Inc()
		stream, err := c.fetchCDN(ctx, c.cdnBaseURL+"/"+id+"."+ext)
		if err == nil {
			return stream, nil
		}
		// A cancelled request must not burn the remaining candidates.
		if ctx.Err() != nil {
			return nil, domain.ErrOriginUnreachable
		}
		c.logger.Debug("Extension probe miss",
			logger.String("id", id),
			logger.String("ext", ext),
			logger.Error(err),
		)
	}

	c.logger.Warn("Extension probe exhausted", logger.String("id", id))
	return nil, domain.ErrOriginNotFound
}

func (c *Client) fetchCDN(ctx context.Context, fetchURL string) (*ImageStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build CDN request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.OriginFetchDuration.WithLabelValues("cdn").Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("CDN request failed",
				logger.String("url", fetchURL),
				logger.Error(err),
			)
		}
		return nil, domain.ErrOriginUnreachable
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, domain.ErrOriginNotFound
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return &ImageStream{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
	}, nil
}
