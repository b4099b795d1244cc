package domain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

func TestMain(tm *testing.M) {
	goleak.VerifyTestMain(tm)
}

// judge returns a Decider built from a pure verdict function, counting calls.
func judge(calls *atomic.Int64, fn func(cfg m.Configuration) m.Verdict) Decider {
	return DeciderFunc(func(_ context.Context, cfg m.Configuration) (m.Verdict, error) {
		if calls != nil {
			calls.Add(1)
		}

		return fn(cfg), nil
	})
}

// badIf is BAD when pred holds and GOOD otherwise.
func badIf(pred func(cfg m.Configuration) bool) func(cfg m.Configuration) m.Verdict {
	return func(cfg m.Configuration) m.Verdict {
		if pred(cfg) {
			return m.Bad
		}

		return m.Good
	}
}

// sampleProfiles mirrors a realistic pair: a few hand-picked functions plus
// 128 extras, a third in both profiles, a third only in good and a third only
// in bad.
func sampleProfiles() (m.Configuration, m.Configuration) {
	bad := m.Configuration{"func_a": "1", "func_b": "3", "func_c": "5"}
	good := m.Configuration{"func_a": "2", "func_b": "4", "func_d": "5"}

	rng := rand.New(rand.NewPCG(13, 13))

	for num := range 128 {
		name := m.Component(fmt.Sprintf("func_extra_%d", num))
		roll := rng.IntN(101) + 1

		if roll < 67 {
			bad[name] = "test_data"
		}

		if roll < 34 || roll >= 67 {
			good[name] = "test_data"
		}
	}

	return good, bad
}

// writeScript writes an executable /bin/sh script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "decider.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700); err != nil {
		t.Fatalf("write decider: %v", err)
	}

	return path
}
