package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictFromExitCode(t *testing.T) {
	tests := []struct {
		code int
		want Verdict
	}{
		{0, Good},
		{1, Bad},
		{125, Skip},
		{127, Problem},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := VerdictFromExitCode(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerdictFromExitCode_Unexpected(t *testing.T) {
	for _, code := range []int{42, 2, -1, 126, 255} {
		_, err := VerdictFromExitCode(code)
		require.ErrorIs(t, err, ErrUnexpectedExitCode)
	}

	_, err := VerdictFromExitCode(42)
	assert.EqualError(t, err, "unexpected decider exit code 42")
}

func TestVerdict_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Verdict{"v": Skip})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"SKIP"}`, string(data))

	var v Verdict
	require.NoError(t, v.UnmarshalText([]byte("bad")))
	assert.Equal(t, Bad, v)
	assert.Error(t, v.UnmarshalText([]byte("maybe")))
	assert.Equal(t, "Verdict(9)", Verdict(9).String())
}
