package domain

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

func TestBisector_SingleCulprit(t *testing.T) {
	good := m.Configuration{"a": "1", "b": "1", "c": "1"}
	bad := m.Configuration{"a": "9", "b": "1", "c": "1"}
	oracle := NewOracle(judge(nil, badIf(func(cfg m.Configuration) bool { return cfg["a"] == "9" })))

	for _, order := range [][]m.Component{{"a", "b", "c"}, {"c", "b", "a"}, {"b", "a", "c"}} {
		result, err := NewBisector(oracle, good, bad, newRand(1), SearchOptions{}, nil).Bisect(context.Background(), order)
		require.NoError(t, err)

		if diff := cmp.Diff(m.Result{Individuals: []m.Component{"a"}, Ranges: [][]m.Component{}}, result.Canonical()); diff != "" {
			t.Errorf("order %v: result mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestBisector_IndividualsFromRealisticProfiles(t *testing.T) {
	good, bad := sampleProfiles()
	decide := badIf(func(cfg m.Configuration) bool {
		return cfg["func_a"] == "1" || cfg["func_b"] == "3"
	})

	for _, parallel := range []int{1, 2} {
		metrics := NewMetrics()
		oracle := NewOracle(judge(nil, decide), WithMetrics(metrics))

		common := m.CommonComponents(good, bad)
		rng := newRand(5)
		rng.Shuffle(len(common), func(i, j int) { common[i], common[j] = common[j], common[i] })

		bisector := NewBisector(oracle, good, bad, rng, SearchOptions{Parallel: parallel}, metrics)

		result, err := bisector.Bisect(context.Background(), common)
		require.NoError(t, err)

		want := m.Result{Individuals: []m.Component{"func_a", "func_b"}, Ranges: [][]m.Component{}}
		if diff := cmp.Diff(want, result.Canonical()); diff != "" {
			t.Errorf("parallel %d: result mismatch (-want +got):\n%s", parallel, diff)
		}

		assert.InDelta(t, 2, testutil.ToFloat64(metrics.Culprits.WithLabelValues(culpritIndividual)), 0)
	}
}

func TestBisector_PairGoesToRangeSearch(t *testing.T) {
	good := m.Configuration{"a": "1", "b": "1"}
	bad := m.Configuration{"a": "9", "b": "9"}
	oracle := NewOracle(judge(nil, badIf(func(cfg m.Configuration) bool {
		return cfg["a"] == "9" && cfg["b"] == "9"
	})))

	result, err := NewBisector(oracle, good, bad, newRand(3), SearchOptions{}, nil).
		Bisect(context.Background(), []m.Component{"b", "a"})
	require.NoError(t, err)

	assert.Empty(t, result.Individuals)
	assert.Equal(t, [][]m.Component{{"a", "b"}}, result.Canonical().Ranges)
}

func TestBisector_SkipIsNotDescended(t *testing.T) {
	good := m.Configuration{"a": "1", "b": "1", "c": "1", "d": "1"}
	bad := m.Configuration{"a": "9", "b": "9", "c": "9", "d": "9"}

	var calls atomic.Int64

	oracle := NewOracle(judge(&calls, func(cfg m.Configuration) m.Verdict {
		switch {
		case cfg["d"] == "9":
			return m.Bad
		case cfg["a"] == "9":
			return m.Skip
		}

		return m.Good
	}))

	result, err := NewBisector(oracle, good, bad, newRand(1), SearchOptions{}, nil).
		Bisect(context.Background(), []m.Component{"a", "b", "c", "d"})
	require.NoError(t, err)

	assert.Equal(t, []m.Component{"d"}, result.Individuals)
	assert.Empty(t, result.Ranges)
	assert.Equal(t, int64(4), calls.Load())
}

func TestBisector_EmptyInput(t *testing.T) {
	var calls atomic.Int64

	oracle := NewOracle(judge(&calls, func(m.Configuration) m.Verdict { return m.Bad }))

	result, err := NewBisector(oracle, m.Configuration{}, m.Configuration{}, newRand(1), SearchOptions{}, nil).
		Bisect(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Equal(t, int64(0), calls.Load())
}

func TestBisector_ProblemStopsTheSearch(t *testing.T) {
	good, bad := sampleProfiles()

	var calls atomic.Int64

	oracle := NewOracle(judge(&calls, func(cfg m.Configuration) m.Verdict {
		if cfg["func_a"] == "1" {
			return m.Problem
		}

		return m.Bad
	}))

	for _, parallel := range []int{1, 2} {
		calls.Store(0)

		_, err := NewBisector(oracle, good, bad, newRand(1), SearchOptions{Parallel: parallel}, nil).
			Bisect(context.Background(), m.CommonComponents(good, bad))

		require.ErrorIs(t, err, ErrDeciderProblem)
		assert.Less(t, calls.Load(), int64(len(m.CommonComponents(good, bad))))
	}
}

func TestBisector_MonotoneIndividuals(t *testing.T) {
	good, bad := sampleProfiles()
	common := m.CommonComponents(good, bad)
	culprits := []m.Component{common[len(common)/10], common[len(common)/2], common[len(common)-2]}

	for _, culprit := range culprits {
		bad[culprit] = "culprit"
	}

	oracle := NewOracle(judge(nil, badIf(func(cfg m.Configuration) bool {
		for _, culprit := range culprits {
			if cfg[culprit] == "culprit" {
				return true
			}
		}

		return false
	})))

	want := append([]m.Component(nil), culprits...)
	m.SortComponents(want)

	for seed := int64(1); seed <= 5; seed++ {
		order := append([]m.Component(nil), common...)
		rng := newRand(seed)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		result, err := NewBisector(oracle, good, bad, rng, SearchOptions{}, nil).Bisect(context.Background(), order)
		require.NoError(t, err)

		assert.Equal(t, want, result.Canonical().Individuals, "seed %d", seed)
		assert.Empty(t, result.Ranges, "seed %d", seed)
	}
}
