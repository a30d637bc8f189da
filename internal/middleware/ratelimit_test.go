package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models/dto"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	l := NewTokenBucket(60, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, wait, _ := l.Allow(ctx, "ip:1")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _, _ = l.Allow(ctx, "ip:2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _, _ = l.Allow(ctx, "ip:1")
	assert.True(t, ok)
}

type stubLimiter struct {
	allowed bool
	wait    time.Duration
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return s.allowed, s.wait, s.err
}

func TestRateLimit(t *testing.T) {
	serve := func(l Limiter) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/x", RateLimit(l, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w
	}

	t.Run("rejected", func(t *testing.T) {
		w := serve(stubLimiter{allowed: false, wait: 1500 * time.Millisecond})
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
		assert.Equal(t, dto.ErrorCodeRateLimited, decodeError(t, w).Error.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(stubLimiter{allowed: true}).Code)
	})

	t.Run("limiter outage fails open", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(stubLimiter{err: errors.New("redis down")}).Code)
	})
}
