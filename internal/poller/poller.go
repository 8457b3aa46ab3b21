// Package poller runs the bounded completion poll loop as an explicit state
// machine. The clock is injectable so tests can run the full attempt budget
// without real delays.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Terminal states of one poll run.
type State int

const (
	StatePolling State = iota
	StateCompleted
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 48 // ~4 minutes at the default interval
)

// Observation is what one status fetch reports back.
type Observation struct {
	Done      bool
	Failed    bool
	ResultURL string
	Detail    string
}

// StatusFunc fetches one status observation. A returned error is transient:
// the machine waits and retries, consuming one attempt from the shared budget.
type StatusFunc func(ctx context.Context) (*Observation, error)

// Result is the outcome of a completed run.
type Result struct {
	State     State
	ResultURL string
	Detail    string
	Attempts  int
}

type Machine struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       func(time.Duration)
	Logger      zerolog.Logger
}

func NewMachine(logger zerolog.Logger) *Machine {
	return &Machine{
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
		Sleep:       time.Sleep,
		Logger:      logger,
	}
}

// Run polls until a terminal observation, the attempt budget is exhausted, or
// the context is cancelled. A terminal failure stops immediately; it never
// consumes the remaining attempts.
func (m *Machine) Run(ctx context.Context, fetch StatusFunc) Result {
	state := StatePolling
	attempts := 0

	for state == StatePolling {
		if attempts >= m.MaxAttempts {
			return Result{
				State:    StateTimedOut,
				Detail:   "generation timed out waiting for the provider",
				Attempts: attempts,
			}
		}
		if err := ctx.Err(); err != nil {
			return Result{State: StateFailed, Detail: err.Error(), Attempts: attempts}
		}

		attempts++
		obs, err := fetch(ctx)
		if err != nil {
			// Transient: status endpoint hiccups are retried on the same
			// budget as ordinary in-progress responses.
			m.Logger.Warn().Err(err).Int("attempt", attempts).Msg("poller: status check failed, retrying")
			m.Sleep(m.Interval)
			continue
		}

		switch {
		case obs.Failed:
			return Result{State: StateFailed, Detail: obs.Detail, Attempts: attempts}
		case obs.Done:
			return Result{State: StateCompleted, ResultURL: obs.ResultURL, Attempts: attempts}
		default:
			m.Sleep(m.Interval)
		}
	}

	return Result{State: state, Attempts: attempts}
}
