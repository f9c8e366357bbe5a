package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestGetLimiterReusesBucketPerIP(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(1, 2)

	first := l.GetLimiter("10.0.0.1")
	req.Same(first, l.GetLimiter("10.0.0.1"))
	req.NotSame(first, l.GetLimiter("10.0.0.2"))
}

func TestMiddlewareEnforcesBurst(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(rate.Limit(0.001), 2)

	var served int
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:52000"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request)
		req.Equal(http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request)
	req.Equal(http.StatusTooManyRequests, rec.Code)
	req.Equal(2, served)

	// A different IP has its own untouched bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:52000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	req.Equal(http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:40010"
	req.Equal("192.0.2.7", ClientIP(r))

	r.RemoteAddr = "192.0.2.7"
	req.Equal("192.0.2.7", ClientIP(r))

	r.RemoteAddr = ""
	req.Equal("unknown_ip", ClientIP(r))
}
