package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	key string
	ok  bool
}

func (r *fakeResolver) ResolveKey(rawID string) (string, bool) {
	return r.key, r.ok
}

type fakeLastSeenRepo struct {
	touched chan string
}

func (r *fakeLastSeenRepo) UpdateLastSeen(userKey string) error {
	r.touched <- userKey
	return nil
}

func performRequest(resolver UserIdentityResolver, repo LastSeenRepo, header string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdentityMiddleware(resolver, repo))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("X-User-ID", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdentityMiddlewareTouchesLastSeen(t *testing.T) {
	repo := &fakeLastSeenRepo{touched: make(chan string, 1)}
	resolver := &fakeResolver{key: "abc-123", ok: true}

	w := performRequest(resolver, repo, "alice")
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case key := <-repo.touched:
		assert.Equal(t, "abc-123", key)
	case <-time.After(time.Second):
		require.Fail(t, "last_seen was not updated")
	}
}

func TestIdentityMiddlewareSkipsUnresolved(t *testing.T) {
	repo := &fakeLastSeenRepo{touched: make(chan string, 1)}

	// 没带头、或者解析不到用户：照常放行，不触发更新
	w := performRequest(&fakeResolver{ok: false}, repo, "ghost")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(&fakeResolver{ok: true, key: "abc"}, repo, "")
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case key := <-repo.touched:
		require.Failf(t, "unexpected last_seen update", "key %s", key)
	case <-time.After(50 * time.Millisecond):
	}
}
