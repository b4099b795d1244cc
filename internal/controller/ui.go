// Package controller renders bisection progress and reports.
package controller

import (
	"context"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeBisect StartMode = iota
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithBisectMode sets the UI to live bisection mode.
func WithBisectMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeBisect
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeBisect}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// RunInfo describes a run before the search starts.
type RunInfo struct {
	RunID      string
	Decider    string
	Seed       int64
	Common     int
	GoodOnly   int
	BadOnly    int
	Parallel   int
	Validating bool
}

// UI defines the interface for displaying bisection progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, info RunInfo)
	DisplayOracleRun(ctx context.Context, run m.OracleRun)
	DisplayCheck(ctx context.Context, report m.CheckReport) error
	DisplayReport(ctx context.Context, report m.Report) error
}
