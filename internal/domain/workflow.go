package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"profbisect.dev/pkg/profbisect/internal/adapter"
	"profbisect.dev/pkg/profbisect/internal/controller"
	m "profbisect.dev/pkg/profbisect/internal/model"
	"profbisect.dev/pkg/profbisect/pkg"
)

// DeciderArgs describes the external decider shared by every command.
type DeciderArgs struct {
	Good           m.Path
	Bad            m.Path
	Format         m.Format
	Decider        string
	DeciderTimeout time.Duration
}

// BisectArgs contains the arguments of a full analysis.
type BisectArgs struct {
	DeciderArgs
	SearchOptions

	// Output is where the report is saved; empty skips saving.
	Output m.Path
	// Seed drives the shuffles. Zero picks a time-based seed.
	Seed           int64
	SkipValidation bool
	// History embeds every decider run in the report.
	History bool
	// MetricsFile receives the run's metrics in textfile format when set.
	MetricsFile m.Path
}

// CheckArgs contains the arguments of a check.
type CheckArgs struct {
	DeciderArgs
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Report m.Path
}

// Workflow runs the user-facing commands.
type Workflow interface {
	Bisect(ctx context.Context, args BisectArgs) error
	Check(ctx context.Context, args CheckArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ProfileAdapter
	adapter.CandidateFSAdapter
	adapter.DeciderRunnerAdapter
	adapter.ReportStore
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	profiles adapter.ProfileAdapter,
	files adapter.CandidateFSAdapter,
	runner adapter.DeciderRunnerAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		ProfileAdapter:       profiles,
		CandidateFSAdapter:   files,
		DeciderRunnerAdapter: runner,
		ReportStore:          reportStore,
		UI:                   ui,
	}
}

func (w *workflow) Bisect(ctx context.Context, args BisectArgs) error {
	good, bad, err := w.loadPair(ctx, args.DeciderArgs)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	seed := resolveSeed(args.Seed)
	metrics := NewMetrics()

	journal, err := pkg.NewFileSpill[m.OracleRun]("")
	if err != nil {
		return fmt.Errorf("create run journal: %w", err)
	}

	defer func() {
		if err := journal.Close(); err != nil {
			slog.Warn("Failed to close run journal", "error", err)
		}
	}()

	oracle := w.newOracle(ctx, args.DeciderArgs, good.Format,
		WithMetrics(metrics),
		WithObserver(func(run m.OracleRun) {
			if err := journal.Append(run); err != nil {
				slog.Warn("Failed to journal decider run", "error", err)
			}
		}),
	)

	if err := w.Start(ctx, controller.WithBisectMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	common := m.CommonComponents(good.Config, bad.Config)

	w.DisplayRunInfo(ctx, controller.RunInfo{
		RunID:      runID,
		Decider:    args.Decider,
		Seed:       seed,
		Common:     len(common),
		GoodOnly:   len(m.OnlyIn(good.Config, bad.Config)),
		BadOnly:    len(m.OnlyIn(bad.Config, good.Config)),
		Parallel:   args.Parallel,
		Validating: !args.SkipValidation,
	})

	slog.Info("Starting run", "run", runID, "seed", seed, "decider", args.Decider, "components", len(common))

	startedAt := time.Now()

	analysis, err := NewAnalyzer(oracle, metrics).Analyze(ctx, AnalyzeArgs{
		Good:           good.Config,
		Bad:            bad.Config,
		Seed:           seed,
		SkipValidation: args.SkipValidation,
		SearchOptions:  args.SearchOptions,
	})
	if err != nil {
		w.Close(ctx)
		slog.Error("Analysis failed", "run", runID, "calls", oracle.Calls(), "error", err)

		return fmt.Errorf("analyze: %w", err)
	}

	report := m.Report{
		Analysis:         analysis,
		RunID:            runID,
		Decider:          args.Decider,
		Good:             args.Good,
		Bad:              args.Bad,
		Format:           good.Format,
		CommonComponents: len(common),
		OracleCalls:      oracle.Calls(),
		StartedAt:        startedAt.UTC(),
		DurationSeconds:  time.Since(startedAt).Seconds(),
	}

	if err := fillHistory(&report, journal, args.History); err != nil {
		w.Close(ctx)
		return fmt.Errorf("read run journal: %w", err)
	}

	if err := w.persist(report, metrics, args); err != nil {
		w.Close(ctx)
		return err
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		w.Close(ctx)
		slog.Error("Failed to display report", "error", err)

		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	slog.Info("Run finished", "run", runID, "calls", report.OracleCalls,
		"individuals", len(analysis.BisectResults.Individuals), "ranges", len(analysis.BisectResults.Ranges))

	return nil
}

func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	good, bad, err := w.loadPair(ctx, args.DeciderArgs)
	if err != nil {
		return err
	}

	oracle := w.newOracle(ctx, args.DeciderArgs, good.Format)

	if err := w.Start(ctx, controller.WithBisectMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	report, err := runChecks(ctx, oracle, good.Config, bad.Config)
	if err != nil {
		w.Close(ctx)
		return fmt.Errorf("check: %w", err)
	}

	if err := w.DisplayCheck(ctx, report); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	if !report.Labeled() {
		return fmt.Errorf("%w: good judged %s, bad judged %s", ErrMislabeledInput, report.GoodVerdict, report.BadVerdict)
	}

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "path", args.Report, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// loadPair loads both profiles. bad is decoded in good's format because
// candidates mix the two.
func (w *workflow) loadPair(ctx context.Context, args DeciderArgs) (m.Profile, m.Profile, error) {
	good, err := w.Load(ctx, args.Good, args.Format)
	if err != nil {
		slog.Error("Failed to load good profile", "path", args.Good, "error", err)
		return m.Profile{}, m.Profile{}, fmt.Errorf("load good profile: %w", err)
	}

	bad, err := w.Load(ctx, args.Bad, good.Format)
	if err != nil {
		slog.Error("Failed to load bad profile", "path", args.Bad, "error", err)
		return m.Profile{}, m.Profile{}, fmt.Errorf("load bad profile: %w", err)
	}

	slog.Debug("Loaded profiles", "format", good.Format, "good", len(good.Config), "bad", len(bad.Config))

	return good, bad, nil
}

func (w *workflow) newOracle(ctx context.Context, args DeciderArgs, format m.Format, opts ...OracleOption) Oracle {
	decider := NewProcessDecider(ProcessDeciderConfig{
		Command: args.Decider,
		Format:  format,
		Timeout: args.DeciderTimeout,
	}, w.ProfileAdapter, w.CandidateFSAdapter, w.DeciderRunnerAdapter)

	opts = append([]OracleOption{
		WithDeciderName(args.Decider),
		WithObserver(func(run m.OracleRun) {
			w.DisplayOracleRun(ctx, run)
		}),
	}, opts...)

	return NewOracle(decider, opts...)
}

func (w *workflow) persist(report m.Report, metrics *Metrics, args BisectArgs) error {
	if args.Output != "" {
		if err := w.SaveReport(args.Output, report); err != nil {
			slog.Error("Failed to save report", "path", args.Output, "error", err)
			return fmt.Errorf("save report: %w", err)
		}

		slog.Info("Saved report", "path", args.Output)
	}

	if args.MetricsFile != "" {
		if err := metrics.WriteTextfile(args.MetricsFile); err != nil {
			slog.Error("Failed to write metrics", "path", args.MetricsFile, "error", err)
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

func runChecks(ctx context.Context, oracle Oracle, good, bad m.Configuration) (m.CheckReport, error) {
	report := m.CheckReport{
		CommonComponents: len(m.CommonComponents(good, bad)),
		GoodOnly:         len(m.OnlyIn(good, bad)),
		BadOnly:          len(m.OnlyIn(bad, good)),
	}

	var err error

	if report.GoodVerdict, err = oracle.Query(ctx, good, WithoutCounting()); err != nil {
		return report, fmt.Errorf("good profile: %w", err)
	}

	if report.BadVerdict, err = oracle.Query(ctx, bad, WithoutCounting()); err != nil {
		return report, fmt.Errorf("bad profile: %w", err)
	}

	if report.GoodOnlyFunctions, err = CheckGoodNotBad(ctx, oracle, good, bad); err != nil {
		return report, err
	}

	if report.BadOnlyFunctions, err = CheckBadNotGood(ctx, oracle, good, bad); err != nil {
		return report, err
	}

	return report, nil
}

// fillHistory tallies the counted runs by verdict and, when keep is set,
// copies every run into the report.
func fillHistory(report *m.Report, journal pkg.FileSpill[m.OracleRun], keep bool) error {
	report.Verdicts = make(map[string]int)

	return journal.Range(func(_ uint64, run m.OracleRun) error {
		if run.Counted {
			report.Verdicts[run.Verdict.String()]++
		}

		if keep {
			report.History = append(report.History, run)
		}

		return nil
	})
}

// resolveSeed maps the zero seed to a time-based one.
func resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}

	return time.Now().UnixNano()
}
