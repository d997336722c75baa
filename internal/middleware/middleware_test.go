package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-aichat/internal/metrics"
	"github.com/iyunix/go-aichat/internal/ratelimit"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

var validator = staticValidator{"good": "user-1"}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	_, _ = w.Write([]byte(id))
}

func TestAuthMiddleware(t *testing.T) {
	h := NewAuthMiddleware(validator, nopLogger{})(http.HandlerFunc(echoUser))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"missing", func(r *http.Request) {}, 401, ""},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, 401, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, 200, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: "good"}) }, 200, "user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tc.setup(r)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == 401 {
				assert.Contains(t, rec.Body.String(), `"code":401`)
			} else {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestGuestOnly(t *testing.T) {
	h := GuestOnly(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	r = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 500, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":500`)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		Every: time.Hour, Burst: 2, IdleTTL: time.Hour, CleanupPeriod: time.Hour,
	})
	defer limiter.Close()

	h := RateLimitMiddleware(limiter, "login", nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, 200, serve().Code)
	assert.Equal(t, 200, serve().Code)
	rec := serve()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":429`)
}

func TestAuthSuccessMiddleware_RefillsBucket(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		Every: time.Hour, Burst: 1, IdleTTL: time.Hour, CleanupPeriod: time.Hour,
	})
	defer limiter.Close()

	h := RateLimitMiddleware(limiter, "login", nopLogger{})(
		AuthSuccessMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, 200, rec.Code, "attempt %d", i)
	}
}

func TestLoggingMiddleware_RecordsRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware(nopLogger{}, m))
	router.HandleFunc("/api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/abc", nil))
	assert.Equal(t, 404, rec.Code)

	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/conversations/{id}", "GET", "404"))
	assert.Equal(t, 1.0, count)
}
