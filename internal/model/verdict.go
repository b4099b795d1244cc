package model

import (
	"errors"
	"fmt"
	"strings"
)

// Verdict is the decider's classification of a candidate configuration.
type Verdict int

const (
	// Good means the candidate behaves like the good configuration.
	Good Verdict = iota
	// Bad means the candidate reproduces the failure.
	Bad
	// Skip means the decider could not judge the candidate.
	Skip
	// Problem means the decider hit a fatal problem; the run must stop.
	Problem
)

// Exit codes of the decider process.
const (
	GoodExitCode    = 0
	BadExitCode     = 1
	SkipExitCode    = 125
	ProblemExitCode = 127
)

// ErrUnexpectedExitCode is returned when the decider exits with a code outside
// the fixed verdict set.
var ErrUnexpectedExitCode = errors.New("unexpected decider exit code")

// VerdictFromExitCode maps a decider exit code to its verdict.
func VerdictFromExitCode(code int) (Verdict, error) {
	switch code {
	case GoodExitCode:
		return Good, nil
	case BadExitCode:
		return Bad, nil
	case SkipExitCode:
		return Skip, nil
	case ProblemExitCode:
		return Problem, nil
	}

	return Problem, fmt.Errorf("%w %d", ErrUnexpectedExitCode, code)
}

func (v Verdict) String() string {
	switch v {
	case Good:
		return "GOOD"
	case Bad:
		return "BAD"
	case Skip:
		return "SKIP"
	case Problem:
		return "PROBLEM"
	}

	return fmt.Sprintf("Verdict(%d)", int(v))
}

// MarshalText encodes the verdict by name so reports stay readable.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "GOOD":
		*v = Good
	case "BAD":
		*v = Bad
	case "SKIP":
		*v = Skip
	case "PROBLEM":
		*v = Problem
	default:
		return fmt.Errorf("unknown verdict %q", string(text))
	}

	return nil
}
