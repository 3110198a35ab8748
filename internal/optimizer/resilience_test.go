package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBreaker(maxFailures int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", &CircuitBreakerConfig{
		MaxFailures:      maxFailures,
		ResetTimeout:     reset,
		HalfOpenMaxCalls: 1,
	}, NewMetricsRecorder(), nil)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.True(t, cb.Allow(ctx))
		cb.RecordFailure(errors.New("boom"))
	}
	assert.Equal(t, CircuitClosed, cb.State())

	assert.True(t, cb.Allow(ctx))
	cb.RecordFailure(errors.New("boom"))
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow(ctx))
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	cb.RecordFailure(errors.New("boom"))
	cb.RecordSuccess()
	cb.RecordFailure(errors.New("boom"))

	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 1, cb.FailureCount())
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	cb.RecordFailure(errors.New("boom"))
	assert.False(t, cb.Allow(ctx))

	*now = now.Add(time.Minute)
	assert.True(t, cb.Allow(ctx), "first call after the reset timeout probes the provider")
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow(ctx), "only one probe at a time")

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow(ctx))
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	cb.RecordFailure(errors.New("boom"))
	*now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow(ctx))

	cb.RecordFailure(errors.New("still down"))
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow(ctx))
}

func TestCircuitBreakerReleaseFreesProbe(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	cb.RecordFailure(errors.New("boom"))
	*now = now.Add(time.Minute)
	assert.True(t, cb.Allow(ctx))
	cb.Release()
	assert.True(t, cb.Allow(ctx))
}

func TestCircuitBreakerRejectsCancelledContext(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, cb.Allow(ctx))
}

func TestCircuitBreakerReset(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Hour)
	cb.RecordFailure(errors.New("boom"))
	assert.Equal(t, CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
	assert.Equal(t, "closed", cb.State().String())
}
