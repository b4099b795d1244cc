package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo prints what is about to be searched.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Run %s: bisecting %d common component(s) with %s (seed %d, parallel %d)\n",
		info.RunID, info.Common, info.Decider, info.Seed, info.Parallel)

	if info.GoodOnly > 0 || info.BadOnly > 0 {
		s.printf("Components only in good: %d, only in bad: %d\n", info.GoodOnly, info.BadOnly)
	}
}

// DisplayOracleRun prints one line per counted decider run.
func (s *SimpleUI) DisplayOracleRun(ctx context.Context, run m.OracleRun) {
	if err := ctx.Err(); err != nil {
		return
	}

	if !run.Counted {
		s.printf("Validation run -> %s\n", run.Verdict)
		return
	}

	s.printf("Run %d (%d components) -> %s in %s\n", run.Sequence, run.Components, run.Verdict, run.Duration)
}

// DisplayCheck prints the outcome of a check.
func (s *SimpleUI) DisplayCheck(ctx context.Context, report m.CheckReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderCheckTable(report))

	return nil
}

// DisplayReport prints the run summary and the culprit table.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s\n", renderSummaryTable(report))

	if report.BisectResults.Empty() {
		s.printf("No culprits found\n")
		return nil
	}

	s.printf("%s", renderCulpritTable(report.BisectResults))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
