package domain

import (
	"context"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// CheckGoodNotBad reports whether bad turns GOOD once every component only
// good has is added to it with its good payload.
func CheckGoodNotBad(ctx context.Context, oracle Oracle, good, bad m.Configuration) (bool, error) {
	candidate := bad.Clone()
	m.Splice(candidate, good, m.OnlyIn(good, bad))

	verdict, err := oracle.Query(ctx, candidate)
	if err != nil {
		return false, err
	}

	return verdict == m.Good, nil
}

// CheckBadNotGood reports whether good turns BAD once every component only bad
// has is added to it with its bad payload.
func CheckBadNotGood(ctx context.Context, oracle Oracle, good, bad m.Configuration) (bool, error) {
	candidate := good.Clone()
	m.Splice(candidate, bad, m.OnlyIn(bad, good))

	verdict, err := oracle.Query(ctx, candidate)
	if err != nil {
		return false, err
	}

	return verdict == m.Bad, nil
}
