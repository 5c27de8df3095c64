package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

func Test_circuitBreaker_Call(t *testing.T) {
	successfulService := func() error {
		return nil
	}
	failingService := func() error {
		return errors.New("service error")
	}

	cb := circuit_breaker.New(10, 200*time.Millisecond, 0.30, 2)

	for i := 0; i < 80; i++ {
		require.NoError(t, cb.Call(successfulService))
	}

	// enough failures to exceed the percentile and open the breaker
	for i := 0; i < 10; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)

	// wait out the open timeout, then recover through half-open
	time.Sleep(300 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Call(successfulService))
	}

	// a failing run in closed state opens it again
	for i := 0; i < 10; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)
}

func Test_circuitBreaker_HalfOpenFailure(t *testing.T) {
	failingService := func() error {
		return errors.New("service error")
	}

	cb := circuit_breaker.New(4, 100*time.Millisecond, 0.5, 1)
	for i := 0; i < 4; i++ {
		_ = cb.Call(failingService)
	}
	require.ErrorIs(t, cb.Call(failingService), circuit_breaker.ErrOpenCB)

	// the half-open probe fails, so the breaker snaps back open
	time.Sleep(150 * time.Millisecond)
	err := cb.Call(failingService)
	require.Error(t, err)
	require.NotErrorIs(t, err, circuit_breaker.ErrOpenCB)
	require.ErrorIs(t, cb.Call(failingService), circuit_breaker.ErrOpenCB)
}
