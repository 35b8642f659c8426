package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/AviationCompliance/internal/api"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func withAuth(t *testing.T, token string, bypass bool) {
	t.Helper()
	oldToken, oldBypass := config.AuthToken, config.NoAuthBypass
	config.AuthToken, config.NoAuthBypass = token, bypass
	t.Cleanup(func() { config.AuthToken, config.NoAuthBypass = oldToken, oldBypass })
}

func withLimiter(t *testing.T, l *IPRateLimiter) {
	t.Helper()
	old := limiterInstance
	limiterInstance = l
	t.Cleanup(func() { limiterInstance = old })
}

func TestIsValidBearerToken(t *testing.T) {
	withAuth(t, "s3cret", false)
	log := logger_i.Discard()

	assert.True(t, IsValidBearerToken("Bearer s3cret", log))
	assert.False(t, IsValidBearerToken("", log))
	assert.False(t, IsValidBearerToken("s3cret", log))
	assert.False(t, IsValidBearerToken("Bearer nope", log))

	config.AuthToken = ""
	assert.False(t, IsValidBearerToken("Bearer ", log), "an unset token never authenticates")

	config.NoAuthBypass = true
	assert.True(t, IsValidBearerToken("", log))
}

func TestWrapRejectsUnauthorizedOnce(t *testing.T) {
	withAuth(t, "s3cret", false)
	withLimiter(t, NewIPRateLimiter(rate.Inf, 1, 10, time.Minute))

	called := false
	h := Wrap(func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/documents", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))

	// exactly one JSON document in the body
	dec := json.NewDecoder(rr.Body)
	var body api.JobResponse
	require.NoError(t, dec.Decode(&body))
	assert.False(t, dec.More())
}

func TestWrapPropagatesTrace(t *testing.T) {
	withAuth(t, "s3cret", false)
	withLimiter(t, NewIPRateLimiter(rate.Inf, 1, 10, time.Minute))

	var seen string
	h := Wrap(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	req.Header.Set("X-Trace-Id", "trace-42")
	rr := httptest.NewRecorder()
	h(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "trace-42", seen)
	assert.Equal(t, "trace-42", rr.Header().Get("X-Trace-Id"))
}

func TestWrapRateLimitsPerClient(t *testing.T) {
	withAuth(t, "", true)
	withLimiter(t, NewIPRateLimiter(rate.Limit(0.001), 2, 10, time.Minute))

	h := Wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/formats", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"), "other clients keep their own bucket")
}

func TestIPRateLimiterEvicts(t *testing.T) {
	l := NewIPRateLimiter(rate.Inf, 1, 2, time.Minute)
	first := l.GetLimiter("a")
	assert.Same(t, first, l.GetLimiter("a"))

	l.GetLimiter("b")
	l.GetLimiter("c")
	assert.Equal(t, 2, l.Clients())
	assert.NotSame(t, first, l.GetLimiter("a"), "least recently used client was evicted")
}
