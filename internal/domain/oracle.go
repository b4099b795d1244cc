package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// ErrDeciderProblem is returned when the decider reports PROBLEM. The run
// cannot continue.
var ErrDeciderProblem = errors.New("decider reported a problem")

// Decider classifies one candidate configuration.
type Decider interface {
	Decide(ctx context.Context, candidate m.Configuration) (m.Verdict, error)
}

// DeciderFunc adapts a plain function to the Decider interface.
type DeciderFunc func(ctx context.Context, candidate m.Configuration) (m.Verdict, error)

// Decide calls f.
func (f DeciderFunc) Decide(ctx context.Context, candidate m.Configuration) (m.Verdict, error) {
	return f(ctx, candidate)
}

// OracleObserver is notified after every decider run that produced a verdict.
type OracleObserver func(run m.OracleRun)

// Oracle is the counted front of a Decider used by the search.
type Oracle interface {
	// Query asks the decider about candidate. A PROBLEM verdict comes back
	// together with an error wrapping ErrDeciderProblem.
	Query(ctx context.Context, candidate m.Configuration, opts ...QueryOption) (m.Verdict, error)
	// Calls returns how many counted queries produced a verdict so far.
	Calls() uint64
}

// QueryOption tweaks a single Query call.
type QueryOption func(*queryConfig)

type queryConfig struct {
	counted bool
}

// WithoutCounting keeps the query out of the call counter. Input validation
// uses it.
func WithoutCounting() QueryOption {
	return func(c *queryConfig) {
		c.counted = false
	}
}

// OracleOption configures NewOracle.
type OracleOption func(*oracle)

// WithDeciderName sets the name used in log lines.
func WithDeciderName(name string) OracleOption {
	return func(o *oracle) {
		o.name = name
	}
}

// WithMetrics records every query in metrics.
func WithMetrics(metrics *Metrics) OracleOption {
	return func(o *oracle) {
		o.metrics = metrics
	}
}

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(observer OracleObserver) OracleOption {
	return func(o *oracle) {
		o.observers = append(o.observers, observer)
	}
}

type oracle struct {
	decider   Decider
	name      string
	metrics   *Metrics
	calls     atomic.Uint64
	mu        sync.Mutex
	observers []OracleObserver
}

// NewOracle wraps decider in a counting Oracle.
func NewOracle(decider Decider, opts ...OracleOption) Oracle {
	o := &oracle{
		decider: decider,
		name:    "decider",
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *oracle) Query(ctx context.Context, candidate m.Configuration, opts ...QueryOption) (m.Verdict, error) {
	cfg := queryConfig{counted: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return m.Problem, err
	}

	start := time.Now()
	verdict, err := o.decider.Decide(ctx, candidate)
	elapsed := time.Since(start)

	if err != nil {
		o.metrics.observeError()
		slog.Error("Decider failed", "decider", o.name, "error", err)

		return m.Problem, err
	}

	run := m.OracleRun{
		Verdict:    verdict,
		Components: len(candidate),
		Duration:   elapsed,
		Counted:    cfg.counted,
	}

	if cfg.counted {
		run.Sequence = o.calls.Add(1)
	}

	slog.Info("Decider run finished", "decider", o.name, "run", run.Sequence, "verdict", verdict, "elapsed", elapsed)
	o.metrics.observeVerdict(verdict, elapsed)
	o.notify(run)

	if verdict == m.Problem {
		return verdict, fmt.Errorf("%w (run %d)", ErrDeciderProblem, run.Sequence)
	}

	return verdict, nil
}

func (o *oracle) Calls() uint64 {
	return o.calls.Load()
}

func (o *oracle) notify(run m.OracleRun) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, observer := range o.observers {
		observer(run)
	}
}
