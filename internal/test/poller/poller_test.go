package poller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/poller"
)

func testMachine(maxAttempts int, slept *int) *poller.Machine {
	return &poller.Machine{
		Interval:    5 * time.Second,
		MaxAttempts: maxAttempts,
		Sleep:       func(time.Duration) { *slept++ },
		Logger:      zerolog.Nop(),
	}
}

func TestRun_CompletesAndExtractsResultURL(t *testing.T) {
	slept := 0
	m := testMachine(40, &slept)

	calls := 0
	result := m.Run(context.Background(), func(ctx context.Context) (*poller.Observation, error) {
		calls++
		if calls < 3 {
			return &poller.Observation{}, nil
		}
		return &poller.Observation{Done: true, ResultURL: "https://cdn.example.com/out.mp4"}, nil
	})

	assert.Equal(t, poller.StateCompleted, result.State)
	assert.Equal(t, "https://cdn.example.com/out.mp4", result.ResultURL)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 2, slept)
}

func TestRun_TerminalFailureStopsImmediately(t *testing.T) {
	slept := 0
	m := testMachine(40, &slept)

	calls := 0
	result := m.Run(context.Background(), func(ctx context.Context) (*poller.Observation, error) {
		calls++
		if calls == 1 {
			return &poller.Observation{}, nil
		}
		return &poller.Observation{Failed: true, Detail: "provider says no"}, nil
	})

	assert.Equal(t, poller.StateFailed, result.State)
	assert.Equal(t, "provider says no", result.Detail)
	// Attempt 2 of 40: the remaining budget is not consumed.
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, calls)
}

func TestRun_BudgetExhaustionTimesOut(t *testing.T) {
	slept := 0
	m := testMachine(10, &slept)

	result := m.Run(context.Background(), func(ctx context.Context) (*poller.Observation, error) {
		return &poller.Observation{}, nil
	})

	assert.Equal(t, poller.StateTimedOut, result.State)
	assert.Equal(t, 10, result.Attempts)
	assert.Contains(t, result.Detail, "timed out")
}

func TestRun_TransientErrorsShareTheAttemptBudget(t *testing.T) {
	slept := 0
	m := testMachine(5, &slept)

	calls := 0
	result := m.Run(context.Background(), func(ctx context.Context) (*poller.Observation, error) {
		calls++
		return nil, errors.New("status endpoint hiccup")
	})

	assert.Equal(t, poller.StateTimedOut, result.State)
	assert.Equal(t, 5, calls)
}

func TestRun_CancelledContext(t *testing.T) {
	slept := 0
	m := testMachine(40, &slept)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := m.Run(ctx, func(ctx context.Context) (*poller.Observation, error) {
		return &poller.Observation{}, nil
	})

	assert.Equal(t, poller.StateFailed, result.State)
	assert.Equal(t, 0, result.Attempts)
}
