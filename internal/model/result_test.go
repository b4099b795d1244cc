package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestResult_Canonical(t *testing.T) {
	raw := Result{
		Individuals: []Component{"c", "a", "c"},
		Ranges: [][]Component{
			{"z", "y"},
			{"b", "a", "d"},
			{"y", "z"},
		},
	}

	want := Result{
		Individuals: []Component{"a", "c"},
		Ranges: [][]Component{
			{"a", "b", "d"},
			{"y", "z"},
		},
	}

	got := raw.Canonical()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Canonical() mismatch (-want +got):\n%s", diff)
	}

	// The raw input is left alone.
	assert.Equal(t, []Component{"z", "y"}, raw.Ranges[0])
}

func TestResult_CanonicalIsIdempotent(t *testing.T) {
	raw := Result{
		Individuals: []Component{"f", "b"},
		Ranges:      [][]Component{{"q", "p"}, {"c", "a"}},
	}

	once := raw.Canonical()
	twice := once.Canonical()

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Canonical() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestResult_AddRange(t *testing.T) {
	result := NewResult()

	result.AddRange(nil)
	result.AddRange([]Component{"solo"})
	result.AddRange([]Component{"a", "b"})

	assert.Equal(t, []Component{"solo"}, result.Individuals)
	assert.Equal(t, [][]Component{{"a", "b"}}, result.Ranges)
	assert.False(t, result.Empty())
	assert.True(t, NewResult().Empty())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("good.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("good.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("bad.json"))
	assert.Equal(t, FormatAFDO, FormatFromPath("chrome.afdo"))
	assert.Equal(t, FormatAFDO, FormatFromPath("profile.txt"))
}
