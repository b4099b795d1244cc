package domain

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// SearchOptions tunes the bisector and the range searcher.
type SearchOptions struct {
	// Parallel > 1 lets the bisector query both halves of a split at once.
	Parallel int
	// RangeTrials is the round budget of a range search.
	RangeTrials int
}

// Bisector finds the components whose bad payloads turn good into bad.
type Bisector struct {
	oracle   Oracle
	good     m.Configuration
	bad      m.Configuration
	parallel int
	ranges   *RangeSearcher
	metrics  *Metrics
}

// NewBisector builds a Bisector. rng drives the range searcher's shuffles and
// must only be used by the calling goroutine.
func NewBisector(oracle Oracle, good, bad m.Configuration, rng *rand.Rand, opts SearchOptions, metrics *Metrics) *Bisector {
	return &Bisector{
		oracle:   oracle,
		good:     good,
		bad:      bad,
		parallel: opts.Parallel,
		ranges:   NewRangeSearcher(oracle, good, bad, rng, opts.RangeTrials, metrics),
		metrics:  metrics,
	}
}

// Bisect searches the whole of components. The slice order decides how the
// halves are split; it is not modified.
func (b *Bisector) Bisect(ctx context.Context, components []m.Component) (m.Result, error) {
	result := m.NewResult()
	if len(components) == 0 {
		return result, nil
	}

	if err := b.bisect(ctx, components, 0, len(components), &result); err != nil {
		return result, err
	}

	return result, nil
}

func (b *Bisector) bisect(ctx context.Context, components []m.Component, lo, hi int, result *m.Result) error {
	if hi-lo <= 1 {
		culprit := components[lo]
		slog.Info("Found problematic component", "component", culprit)
		b.metrics.observeCulprit(culpritIndividual)
		result.AddIndividual(culprit)

		return nil
	}

	mid := (lo + hi) / 2

	lowVerdict, highVerdict, err := b.queryHalves(ctx,
		m.MakeCandidate(b.good, b.bad, components[lo:mid]),
		m.MakeCandidate(b.good, b.bad, components[mid:hi]),
	)
	if err != nil {
		return err
	}

	slog.Debug("Split verdicts", "lo", lo, "mid", mid, "hi", hi, "low", lowVerdict, "high", highVerdict)

	if lowVerdict == m.Skip || highVerdict == m.Skip {
		slog.Warn("Decider skipped a half, not descending into it", "lo", lo, "mid", mid, "hi", hi,
			"low", lowVerdict, "high", highVerdict)
	}

	if lowVerdict == m.Bad {
		if err := b.bisect(ctx, components, lo, mid, result); err != nil {
			return err
		}
	}

	if highVerdict == m.Bad {
		if err := b.bisect(ctx, components, mid, hi, result); err != nil {
			return err
		}
	}

	if lowVerdict != m.Good || highVerdict != m.Good {
		return nil
	}

	culprits, err := b.ranges.Search(ctx, components, lo, hi)
	if err != nil {
		return err
	}

	if len(culprits) > 0 {
		slog.Info("Found problematic combination", "components", culprits)
		b.metrics.observeCulprit(culpritRange)
		result.AddRange(culprits)
	}

	return nil
}

func (b *Bisector) queryHalves(ctx context.Context, low, high m.Configuration) (m.Verdict, m.Verdict, error) {
	if b.parallel <= 1 {
		lowVerdict, err := b.oracle.Query(ctx, low)
		if err != nil {
			return lowVerdict, m.Problem, err
		}

		highVerdict, err := b.oracle.Query(ctx, high)

		return lowVerdict, highVerdict, err
	}

	var lowVerdict, highVerdict m.Verdict

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error

		lowVerdict, err = b.oracle.Query(groupCtx, low)

		return err
	})

	group.Go(func() error {
		var err error

		highVerdict, err = b.oracle.Query(groupCtx, high)

		return err
	})

	if err := group.Wait(); err != nil {
		return m.Problem, m.Problem, err
	}

	return lowVerdict, highVerdict, nil
}
