package model

import "time"

// Analysis is what one bisection run concluded.
type Analysis struct {
	Seed          int64  `json:"seed" yaml:"seed"`
	BisectResults Result `json:"bisect_results" yaml:"bisect_results"`
	// GoodOnlyFunctions is true when adding the good-only components to bad
	// makes it GOOD.
	GoodOnlyFunctions bool `json:"good_only_functions" yaml:"good_only_functions"`
	// BadOnlyFunctions is true when adding the bad-only components to good
	// makes it BAD.
	BadOnlyFunctions bool `json:"bad_only_functions" yaml:"bad_only_functions"`
}

// OracleRun records a single decider invocation.
type OracleRun struct {
	Sequence   uint64        `json:"sequence" yaml:"sequence"` // 0 for uncounted runs
	Verdict    Verdict       `json:"verdict" yaml:"verdict"`
	Components int           `json:"components" yaml:"components"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Counted    bool          `json:"counted" yaml:"counted"`
}

// Report is the persisted outcome of a run.
type Report struct {
	Analysis `yaml:",inline"`

	RunID            string         `json:"run_id" yaml:"run_id"`
	Decider          string         `json:"decider" yaml:"decider"`
	Good             Path           `json:"good_profile" yaml:"good_profile"`
	Bad              Path           `json:"bad_profile" yaml:"bad_profile"`
	Format           Format         `json:"format" yaml:"format"`
	CommonComponents int            `json:"common_components" yaml:"common_components"`
	OracleCalls      uint64         `json:"oracle_calls" yaml:"oracle_calls"`
	Verdicts         map[string]int `json:"verdicts" yaml:"verdicts"`
	StartedAt        time.Time      `json:"started_at" yaml:"started_at"`
	DurationSeconds  float64        `json:"duration_seconds" yaml:"duration_seconds"`
	History          []OracleRun    `json:"history,omitempty" yaml:"history,omitempty"`
}

// CheckReport is the outcome of validating a good/bad pair without bisecting.
type CheckReport struct {
	GoodVerdict       Verdict `json:"good_verdict" yaml:"good_verdict"`
	BadVerdict        Verdict `json:"bad_verdict" yaml:"bad_verdict"`
	CommonComponents  int     `json:"common_components" yaml:"common_components"`
	GoodOnly          int     `json:"good_only" yaml:"good_only"`
	BadOnly           int     `json:"bad_only" yaml:"bad_only"`
	GoodOnlyFunctions bool    `json:"good_only_functions" yaml:"good_only_functions"`
	BadOnlyFunctions  bool    `json:"bad_only_functions" yaml:"bad_only_functions"`
}

// Labeled reports whether good was judged GOOD and bad was judged BAD.
func (c CheckReport) Labeled() bool {
	return c.GoodVerdict == Good && c.BadVerdict == Bad
}
