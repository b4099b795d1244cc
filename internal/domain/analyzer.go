package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// ErrMislabeledInput is returned when the good input is not GOOD or the bad
// input is not BAD.
var ErrMislabeledInput = errors.New("input profiles are mislabeled")

// AnalyzeArgs holds the inputs of one analysis.
type AnalyzeArgs struct {
	Good           m.Configuration
	Bad            m.Configuration
	Seed           int64
	SkipValidation bool
	SearchOptions
}

// Analyzer drives a complete analysis of a good/bad pair.
type Analyzer interface {
	// Analyze validates the inputs, bisects the common components and runs
	// both boundary checks.
	Analyze(ctx context.Context, args AnalyzeArgs) (m.Analysis, error)
	// Validate checks that good is GOOD and bad is BAD without counting the
	// two queries.
	Validate(ctx context.Context, good, bad m.Configuration) error
}

type analyzer struct {
	oracle  Oracle
	metrics *Metrics
}

// NewAnalyzer builds an Analyzer on top of oracle. metrics may be nil.
func NewAnalyzer(oracle Oracle, metrics *Metrics) Analyzer {
	return &analyzer{
		oracle:  oracle,
		metrics: metrics,
	}
}

func (a *analyzer) Analyze(ctx context.Context, args AnalyzeArgs) (m.Analysis, error) {
	if !args.SkipValidation {
		if err := a.Validate(ctx, args.Good, args.Bad); err != nil {
			return m.Analysis{}, err
		}
	}

	rng := newRand(args.Seed)

	common := m.CommonComponents(args.Good, args.Bad)
	rng.Shuffle(len(common), func(i, j int) {
		common[i], common[j] = common[j], common[i]
	})

	slog.Info("Starting bisection", "seed", args.Seed, "components", len(common))

	result := m.NewResult()

	if len(common) > 0 {
		bisector := NewBisector(a.oracle, args.Good, args.Bad, rng, args.SearchOptions, a.metrics)

		var err error

		result, err = bisector.Bisect(ctx, common)
		if err != nil {
			return m.Analysis{}, fmt.Errorf("bisect: %w", err)
		}
	}

	goodNotBad, err := CheckGoodNotBad(ctx, a.oracle, args.Good, args.Bad)
	if err != nil {
		return m.Analysis{}, fmt.Errorf("check good-only components: %w", err)
	}

	badNotGood, err := CheckBadNotGood(ctx, a.oracle, args.Good, args.Bad)
	if err != nil {
		return m.Analysis{}, fmt.Errorf("check bad-only components: %w", err)
	}

	return m.Analysis{
		Seed:              args.Seed,
		BisectResults:     result.Canonical(),
		GoodOnlyFunctions: goodNotBad,
		BadOnlyFunctions:  badNotGood,
	}, nil
}

func (a *analyzer) Validate(ctx context.Context, good, bad m.Configuration) error {
	verdict, err := a.oracle.Query(ctx, good, WithoutCounting())
	if err != nil {
		return fmt.Errorf("validate good profile: %w", err)
	}

	if verdict != m.Good {
		return fmt.Errorf("%w: good profile judged %s", ErrMislabeledInput, verdict)
	}

	verdict, err = a.oracle.Query(ctx, bad, WithoutCounting())
	if err != nil {
		return fmt.Errorf("validate bad profile: %w", err)
	}

	if verdict != m.Bad {
		return fmt.Errorf("%w: bad profile judged %s", ErrMislabeledInput, verdict)
	}

	return nil
}

// newRand returns the run's generator. The same seed always yields the same
// sequence.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed))) // #nosec G404 - reproducibility, not secrecy
}
