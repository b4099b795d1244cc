package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"profbisect.dev/pkg/profbisect/internal/adapter"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

var (
	// ErrCandidateIO is returned when a candidate file cannot be created or
	// written.
	ErrCandidateIO = errors.New("candidate file i/o failed")
	// ErrCandidateCleanup is returned when a candidate file outlives a
	// successful decider run.
	ErrCandidateCleanup = errors.New("candidate file cleanup failed")
)

const removeAttempts = 3

// ProcessDeciderConfig describes how to invoke an external decider.
type ProcessDeciderConfig struct {
	// Command is the decider executable; it receives the candidate path as its
	// only argument.
	Command string
	// Format is the encoding of candidate files.
	Format m.Format
	// Timeout bounds a single run. Zero disables it.
	Timeout time.Duration
	// TempDir holds candidate files; empty means the OS temp dir.
	TempDir string
}

type processDecider struct {
	config   ProcessDeciderConfig
	profiles adapter.ProfileAdapter
	files    adapter.CandidateFSAdapter
	runner   adapter.DeciderRunnerAdapter
}

// NewProcessDecider builds a Decider that writes each candidate to a temp file
// and runs an external program on it.
func NewProcessDecider(
	config ProcessDeciderConfig,
	profiles adapter.ProfileAdapter,
	files adapter.CandidateFSAdapter,
	runner adapter.DeciderRunnerAdapter,
) Decider {
	return &processDecider{
		config:   config,
		profiles: profiles,
		files:    files,
		runner:   runner,
	}
}

func (d *processDecider) Decide(ctx context.Context, candidate m.Configuration) (verdict m.Verdict, err error) {
	path, err := d.writeCandidate(candidate)
	if path != "" {
		defer func() {
			cleanupErr := d.removeCandidate(path)
			if cleanupErr == nil {
				return
			}

			if err != nil {
				slog.Error("Failed to remove candidate file", "path", path, "error", cleanupErr)
				return
			}

			err = fmt.Errorf("%w: %s: %w", ErrCandidateCleanup, path, cleanupErr)
		}()
	}

	if err != nil {
		return m.Problem, err
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	code, output, err := d.runner.RunDecider(ctx, d.config.Command, string(path))
	if err != nil {
		return m.Problem, err
	}

	slog.Debug("Decider output", "path", path, "exitCode", code, "output", output)

	verdict, err = m.VerdictFromExitCode(code)
	if err != nil {
		return m.Problem, fmt.Errorf("decider %s: %w", d.config.Command, err)
	}

	return verdict, nil
}

// writeCandidate returns the path of the created file even when writing to it
// failed, so the caller can still remove it.
func (d *processDecider) writeCandidate(candidate m.Configuration) (m.Path, error) {
	path, err := d.files.CreateTemp(d.config.TempDir, "profbisect-candidate-*."+string(d.config.Format))
	if err != nil {
		slog.Error("Failed to create candidate file", "error", err)
		return "", fmt.Errorf("%w: create: %w", ErrCandidateIO, err)
	}

	var buf bytes.Buffer
	if err := d.profiles.Encode(&buf, candidate, d.config.Format); err != nil {
		return path, fmt.Errorf("%w: encode: %w", ErrCandidateIO, err)
	}

	if err := d.files.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		slog.Error("Failed to write candidate file", "path", path, "error", err)
		return path, fmt.Errorf("%w: write: %w", ErrCandidateIO, err)
	}

	return path, nil
}

func (d *processDecider) removeCandidate(path m.Path) error {
	var err error

	for attempt := 1; attempt <= removeAttempts; attempt++ {
		if err = d.files.Remove(path); err == nil {
			return nil
		}

		slog.Warn("Retrying candidate removal", "path", path, "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}

	return err
}
