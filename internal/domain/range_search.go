package domain

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// DefaultRangeTrials is the round budget used when none is configured.
const DefaultRangeTrials = 20

// RangeSearcher looks for a minimal contiguous group of components that is
// BAD together although each half of the interval searched is GOOD alone.
type RangeSearcher struct {
	oracle  Oracle
	good    m.Configuration
	bad     m.Configuration
	rng     *rand.Rand
	trials  int
	metrics *Metrics
}

// NewRangeSearcher builds a RangeSearcher. trials <= 0 means DefaultRangeTrials.
func NewRangeSearcher(oracle Oracle, good, bad m.Configuration, rng *rand.Rand, trials int, metrics *Metrics) *RangeSearcher {
	if trials <= 0 {
		trials = DefaultRangeTrials
	}

	return &RangeSearcher{
		oracle:  oracle,
		good:    good,
		bad:     bad,
		rng:     rng,
		trials:  trials,
		metrics: metrics,
	}
}

// Search works on components[lo:hi], split at the floor midpoint into a left
// and a right pool. It returns the shortest range the oracle confirmed BAD,
// sorted, or nil when no round reproduced BAD.
func (s *RangeSearcher) Search(ctx context.Context, components []m.Component, lo, hi int) ([]m.Component, error) {
	mid := (lo + hi) / 2
	left := slices.Clone(components[lo:mid])
	right := slices.Clone(components[mid:hi])

	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}

	var best []m.Component

	for round := range s.trials {
		if round > 0 {
			s.shuffle(left)
			s.shuffle(right)
		}

		s.metrics.observeRangeRound()

		pool := slices.Concat(left, right)
		border := len(left)

		lower, upper, confirmed, err := s.narrow(ctx, pool, border)
		if err != nil {
			return nil, err
		}

		if !confirmed {
			slog.Debug("Range search round found nothing", "round", round)
			continue
		}

		if best != nil && upper-lower >= len(best) {
			continue
		}

		best = slices.Clone(pool[lower:upper])
		left = left[lower:]
		right = right[:upper-border]

		slog.Debug("Range search narrowed", "round", round, "size", len(best))

		if len(best) == 2 {
			break
		}
	}

	m.SortComponents(best)

	return best, nil
}

// narrow locates the upper border in (border, n] and then the lower border in
// [0, border). Every probe splices a slice of pool into a fresh copy of good.
// confirmed reports whether pool[lower:upper] itself was seen BAD.
func (s *RangeSearcher) narrow(ctx context.Context, pool []m.Component, border int) (lower, upper int, confirmed bool, err error) {
	lo, hi := border, len(pool)
	upperSeen := false

	for hi-lo > 1 {
		probe := (lo + hi) / 2

		bad, err := s.isBad(ctx, pool[:probe])
		if err != nil {
			return 0, 0, false, err
		}

		if bad {
			hi = probe
			upperSeen = true
		} else {
			lo = probe
		}
	}

	upper = hi

	lo, hi = 0, border
	lowerSeen := false

	for hi-lo > 1 {
		probe := (lo + hi) / 2

		bad, err := s.isBad(ctx, pool[probe:upper])
		if err != nil {
			return 0, 0, false, err
		}

		if bad {
			lo = probe
			lowerSeen = true
		} else {
			hi = probe
		}
	}

	lower = lo

	if lowerSeen || (lower == 0 && upperSeen) {
		return lower, upper, true, nil
	}

	bad, err := s.isBad(ctx, pool[lower:upper])
	if err != nil {
		return 0, 0, false, err
	}

	return lower, upper, bad, nil
}

func (s *RangeSearcher) isBad(ctx context.Context, components []m.Component) (bool, error) {
	verdict, err := s.oracle.Query(ctx, m.MakeCandidate(s.good, s.bad, components))
	if err != nil {
		return false, err
	}

	return verdict == m.Bad, nil
}

func (s *RangeSearcher) shuffle(components []m.Component) {
	s.rng.Shuffle(len(components), func(i, j int) {
		components[i], components[j] = components[j], components[i]
	})
}
