package mw

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := serve(r, http.MethodGet, "/ping", nil)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	w = serve(r, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	assert.Equal(t, http.StatusAccepted, serve(r, http.MethodGet, "/items/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/missing", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(0.001), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", nil).Code)
}

func TestCache_ServesRepeatGETFromMemory(t *testing.T) {
	var hits int32
	r := gin.New()
	r.Use(Cache(cache.New(time.Minute, time.Minute), time.Minute))
	handler := func(c *gin.Context) {
		n := atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"hits": n})
	}
	r.GET("/api/data", handler)
	r.POST("/api/data", handler)

	first := serve(r, http.MethodGet, "/api/data", nil)
	second := serve(r, http.MethodGet, "/api/data", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	serve(r, http.MethodPost, "/api/data", nil)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "non-GET requests bypass the cache")
}

func TestCache_MarksHits(t *testing.T) {
	r := gin.New()
	r.Use(Cache(cache.New(time.Minute, time.Minute), time.Minute))
	r.GET("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.Empty(t, serve(r, http.MethodGet, "/x", nil).Header().Get("X-Cache"))
	hit := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", hit.Header().Get("Content-Type"))

	serve(r, http.MethodGet, "/fail", nil)
	assert.Empty(t, serve(r, http.MethodGet, "/fail", nil).Header().Get("X-Cache"), "errors are never cached")
}
