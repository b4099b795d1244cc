package model

import (
	"slices"
	"strings"
)

// Result holds what a bisection run found.
type Result struct {
	// Individuals are components whose solitary substitution turns good BAD.
	Individuals []Component `json:"individuals" yaml:"individuals"`
	// Ranges are groups (length >= 2) that are BAD only when substituted together.
	Ranges [][]Component `json:"ranges" yaml:"ranges"`
}

// NewResult returns an empty result with non-nil slices.
func NewResult() Result {
	return Result{
		Individuals: []Component{},
		Ranges:      [][]Component{},
	}
}

// AddIndividual records a single culprit.
func (r *Result) AddIndividual(name Component) {
	r.Individuals = append(r.Individuals, name)
}

// AddRange records a problematic combination. Empty ranges are ignored and a
// single-component range is recorded as an individual.
func (r *Result) AddRange(names []Component) {
	switch len(names) {
	case 0:
		return
	case 1:
		r.AddIndividual(names[0])
		return
	}

	r.Ranges = append(r.Ranges, slices.Clone(names))
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Individuals) == 0 && len(r.Ranges) == 0
}

// Canonical returns a sorted, de-duplicated copy of r. Search order is random,
// reporting order is not.
func (r Result) Canonical() Result {
	out := NewResult()

	out.Individuals = append(out.Individuals, r.Individuals...)
	SortComponents(out.Individuals)
	out.Individuals = slices.Compact(out.Individuals)

	for _, rng := range r.Ranges {
		sorted := slices.Clone(rng)
		SortComponents(sorted)
		out.Ranges = append(out.Ranges, sorted)
	}

	slices.SortFunc(out.Ranges, compareRanges)
	out.Ranges = slices.CompactFunc(out.Ranges, func(a, b []Component) bool {
		return compareRanges(a, b) == 0
	})

	return out
}

func compareRanges(a, b []Component) int {
	return slices.CompareFunc(a, b, func(x, y Component) int {
		return strings.Compare(string(x), string(y))
	})
}
