package httpclient

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBoundsConcurrency(t *testing.T) {
	l := NewLimiter(2, 0, 0)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = l.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire should have blocked while two slots are held")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release()
	<-acquired
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(nil, http.StatusTooManyRequests))
	assert.True(t, IsTransient(nil, http.StatusInternalServerError))
	assert.False(t, IsTransient(nil, http.StatusOK))
	assert.False(t, IsTransient(nil, http.StatusNotFound))
}

func TestDoWithRetryRetriesOnceOnTransientFailure(t *testing.T) {
	var attempts int32
	err := DoWithRetry(context.Background(), time.Millisecond, func() (int, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			return http.StatusServiceUnavailable, nil
		}
		return http.StatusOK, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts)
}

func TestDoWithRetryDoesNotRetryPermanentFailure(t *testing.T) {
	var attempts int32
	_ = DoWithRetry(context.Background(), time.Millisecond, func() (int, error) {
		atomic.AddInt32(&attempts, 1)
		return http.StatusNotFound, nil
	})

	assert.Equal(t, int32(1), attempts)
}
