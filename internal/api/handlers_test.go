package api

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/config"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/domain"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/imgur"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/logger"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/resolve"
	"github.com/jonesrussell/north-cloud/imgur-proxy/internal/telemetry"
)

// fakeFetcher lets each test script the origin responses.
type fakeFetcher struct {
	media  func(ctx context.Context, id string) (*domain.Post, error)
	album  func(ctx context.Context, id string) (*domain.Post, error)
	direct func(ctx context.Context, filename string) (*imgur.ImageStream, error)
	probe  func(ctx context.Context, id string) (*imgur.ImageStream, error)
}

func (f *fakeFetcher) GetMedia(ctx context.Context, id string) (*domain.Post, error) {
	if f.media == nil {
		return nil, domain.ErrOriginNotFound
	}
	return f.media(ctx, id)
}

func (f *fakeFetcher) GetAlbum(ctx context.Context, id string) (*domain.Post, error) {
	if f.album == nil {
		return nil, domain.ErrOriginNotFound
	}
	return f.album(ctx, id)
}

func (f *fakeFetcher) FetchDirect(ctx context.Context, filename string) (*imgur.ImageStream, error) {
	if f.direct == nil {
		return nil, domain.ErrOriginNotFound
	}
	return f.direct(ctx, filename)
}

func (f *fakeFetcher) FetchAnyExtension(ctx context.Context, id string) (*imgur.ImageStream, error) {
	if f.probe == nil {
		return nil, domain.ErrOriginNotFound
	}
	return f.probe(ctx, id)
}

func imageStream(body, contentType string) *imgur.ImageStream {
	return &imgur.ImageStream{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentType:   contentType,
		ContentLength: int64(len(body)),
	}
}

func newTestRouter(t *testing.T, fetcher Fetcher) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	tmpl := template.Must(template.New("index.html").Parse("submit a URL"))
	template.Must(tmpl.New("viewer.html").Parse("viewer:{{ .post.ID }}"))
	template.Must(tmpl.New("gallery.html").Parse("gallery:{{ .post.ID }}:{{ len .post.Media }}"))
	router.SetHTMLTemplate(tmpl)

	cfg := &config.Config{}
	domains := domain.NewAllowedDomains([]string{"imgur.com", "www.imgur.com", "m.imgur.com", "i.imgur.com"})
	classifier := resolve.NewClassifier(domains, "i.imgur.com")
	metrics := telemetry.NewMetricsWith(prometheus.NewRegistry())
	handler := NewHandler(cfg, classifier, fetcher, metrics, logger.NewNop())

	SetupServiceRoutes(router, handler)
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	router.ServeHTTP(w, req)
	return w
}

func TestProxyURLRedirectsToCanonicalPath(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	tests := []struct {
		name     string
		url      string
		location string
	}{
		{"image page", "https://imgur.com/abc1234", "/abc1234"},
		{"album page", "https://imgur.com/a/xyz9876", "/a/xyz9876"},
		{"gallery page", "https://imgur.com/gallery/zz99aa1", "/a/zz99aa1"},
		{"direct image", "https://i.imgur.com/abc1234.png", "/i/abc1234.png"},
		{"slugged album", "https://imgur.com/a/some-title-xyz9876", "/a/xyz9876"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/proxy?url="+tt.url)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestProxyURLRejectsUntrustedInput(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	tests := []struct {
		name string
		path string
	}{
		{"missing parameter", "/proxy"},
		{"lookalike host", "/proxy?url=https://imgur.com.evil.net/abc1234"},
		{"unrelated host", "/proxy?url=https://example.com/abc1234"},
		{"host in path only", "/proxy?url=https://evil.net/imgur.com/abc1234"},
		{"embedded credentials", "/proxy?url=https://imgur.com%40evil.net/abc1234"},
		{"no extractable id", "/proxy?url=https://imgur.com/faq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
		})
	}
}

func TestAlbumRendersGalleryPage(t *testing.T) {
	var requestedID string
	fetcher := &fakeFetcher{
		album: func(_ context.Context, id string) (*domain.Post, error) {
			requestedID = id
			return &domain.Post{
				ID:    id,
				Title: "Vacation",
				Media: []domain.MediaItem{
					{ID: "abc1234", URL: "/i/abc1234.jpg"},
					{ID: "def5678", URL: "/i/def5678.png"},
				},
			}, nil
		},
	}
	router := newTestRouter(t, fetcher)

	w := doRequest(router, "/a/xyz9876")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xyz9876", requestedID)
	assert.Equal(t, "gallery:xyz9876:2", w.Body.String())
}

func TestAlbumRejectsInvalidIdentifier(t *testing.T) {
	fetcher := &fakeFetcher{
		album: func(_ context.Context, _ string) (*domain.Post, error) {
			t.Fatal("origin fetch should not happen for a rejected identifier")
			return nil, nil
		},
	}
	router := newTestRouter(t, fetcher)

	tests := []struct {
		name string
		id   string
	}{
		{"too short", "abcd"},
		{"too long", "abcdefghi"},
		{"punctuation", "abc_1234"},
		{"dotted", "abc1234.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/a/"+tt.id)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAlbumNotFoundAtOrigin(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	w := doRequest(router, "/a/xyz9876")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestViewerRendersImagePage(t *testing.T) {
	fetcher := &fakeFetcher{
		media: func(_ context.Context, id string) (*domain.Post, error) {
			return &domain.Post{
				ID:    id,
				Media: []domain.MediaItem{{ID: id, URL: "/i/" + id + ".jpg"}},
			}, nil
		},
	}
	router := newTestRouter(t, fetcher)

	w := doRequest(router, "/abc1234")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "viewer:abc1234", w.Body.String())
}

func TestViewerFallsBackToProbeWhenMetadataMissing(t *testing.T) {
	var probedID string
	fetcher := &fakeFetcher{
		media: func(_ context.Context, _ string) (*domain.Post, error) {
			return nil, domain.ErrOriginNotFound
		},
		probe: func(_ context.Context, id string) (*imgur.ImageStream, error) {
			probedID = id
			return imageStream("png-bytes", "image/png"), nil
		},
	}
	router := newTestRouter(t, fetcher)

	w := doRequest(router, "/abc1234")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc1234", probedID)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
}

func TestViewerProbeExhaustedReturnsNotFound(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	w := doRequest(router, "/abc1234")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewerOriginFailureReturnsServerError(t *testing.T) {
	fetcher := &fakeFetcher{
		media: func(_ context.Context, _ string) (*domain.Post, error) {
			return nil, domain.ErrOriginResponse
		},
	}
	router := newTestRouter(t, fetcher)

	w := doRequest(router, "/abc1234")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ORIGIN_ERROR")
}

func TestDirectImageStreamsBytes(t *testing.T) {
	var requestedFilename string
	fetcher := &fakeFetcher{
		direct: func(_ context.Context, filename string) (*imgur.ImageStream, error) {
			requestedFilename = filename
			return imageStream("gif-bytes", "image/gif"), nil
		},
	}
	router := newTestRouter(t, fetcher)

	w := doRequest(router, "/i/abc1234.gif")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc1234.gif", requestedFilename)
	assert.Equal(t, "gif-bytes", w.Body.String())
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDirectImageRequiresExtension(t *testing.T) {
	fetcher := &fakeFetcher{
		direct: func(_ context.Context, _ string) (*imgur.ImageStream, error) {
			t.Fatal("origin fetch should not happen for a rejected filename")
			return nil, nil
		},
	}
	router := newTestRouter(t, fetcher)

	tests := []struct {
		name     string
		filename string
	}{
		{"no extension", "abc1234"},
		{"long extension", "abc1234.webmx"},
		{"punctuation", "abc;1234.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/i/"+tt.filename)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDirectImageNotFoundAtOrigin(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	w := doRequest(router, "/i/abc1234.png")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLandingPageServed(t *testing.T) {
	router := newTestRouter(t, &fakeFetcher{})

	w := doRequest(router, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "submit a URL", w.Body.String())
}
