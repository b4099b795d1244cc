package domain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profbisect.dev/pkg/profbisect/internal/adapter"
	"profbisect.dev/pkg/profbisect/internal/controller"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

// aIsBad is a decider script judging JSON candidates: BAD when a carries 9.
const aIsBad = `grep -q '"a": "9"' "$1" && exit 1
exit 0`

func newTestWorkflow(t *testing.T) (Workflow, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	return NewWorkflow(
		adapter.NewLocalProfileAdapter(),
		adapter.NewLocalCandidateFSAdapter(),
		adapter.NewLocalDeciderRunnerAdapter(),
		adapter.NewReportStore(),
		controller.NewSimpleUI(cmd),
	), out
}

func writeProfiles(t *testing.T, good, bad string) (m.Path, m.Path) {
	t.Helper()

	dir := t.TempDir()
	goodPath := filepath.Join(dir, "good.json")
	badPath := filepath.Join(dir, "bad.json")

	require.NoError(t, os.WriteFile(goodPath, []byte(good), 0o600))
	require.NoError(t, os.WriteFile(badPath, []byte(bad), 0o600))

	return m.Path(goodPath), m.Path(badPath)
}

func TestWorkflow_Bisect(t *testing.T) {
	wf, out := newTestWorkflow(t)
	good, bad := writeProfiles(t, `{"a": "1", "b": "1", "c": "1"}`, `{"a": "9", "b": "1", "c": "1"}`)

	dir := t.TempDir()
	output := m.Path(filepath.Join(dir, "reports", "report.json"))
	metricsFile := m.Path(filepath.Join(dir, "profbisect.prom"))

	err := wf.Bisect(context.Background(), BisectArgs{
		DeciderArgs: DeciderArgs{
			Good:    good,
			Bad:     bad,
			Decider: writeScript(t, aIsBad),
		},
		Output:      output,
		Seed:        3,
		History:     true,
		MetricsFile: metricsFile,
	})
	require.NoError(t, err)

	report, err := adapter.NewReportStore().LoadReport(output)
	require.NoError(t, err)

	assert.Equal(t, []m.Component{"a"}, report.BisectResults.Individuals)
	assert.Empty(t, report.BisectResults.Ranges)
	assert.Equal(t, int64(3), report.Seed)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, m.FormatJSON, report.Format)
	assert.Equal(t, 3, report.CommonComponents)
	assert.Positive(t, report.OracleCalls)

	total := 0
	for _, count := range report.Verdicts {
		total += count
	}

	assert.Equal(t, int(report.OracleCalls), total)
	// two validation runs plus every counted run
	assert.Len(t, report.History, int(report.OracleCalls)+2)

	metrics, err := os.ReadFile(string(metricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "profbisect_oracle_calls_total")

	assert.Contains(t, out.String(), report.RunID)
	assert.Contains(t, out.String(), "individual")
}

func TestWorkflow_BisectZeroSeed(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	good, bad := writeProfiles(t, `{"a": "1", "b": "1"}`, `{"a": "9", "b": "1"}`)
	output := m.Path(filepath.Join(t.TempDir(), "report.yaml"))

	err := wf.Bisect(context.Background(), BisectArgs{
		DeciderArgs: DeciderArgs{Good: good, Bad: bad, Decider: writeScript(t, aIsBad)},
		Output:      output,
	})
	require.NoError(t, err)

	report, err := adapter.NewReportStore().LoadReport(output)
	require.NoError(t, err)

	assert.NotZero(t, report.Seed)
	assert.Empty(t, report.History)
}

func TestWorkflow_BisectUnexpectedExitCode(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	good, bad := writeProfiles(t, `{"a": "1"}`, `{"a": "9"}`)
	output := m.Path(filepath.Join(t.TempDir(), "report.json"))

	err := wf.Bisect(context.Background(), BisectArgs{
		DeciderArgs: DeciderArgs{Good: good, Bad: bad, Decider: writeScript(t, "exit 42")},
		Output:      output,
	})

	require.ErrorIs(t, err, m.ErrUnexpectedExitCode)
	assert.Contains(t, err.Error(), "42")
	assert.NoFileExists(t, string(output))
}

func TestWorkflow_BisectMislabeled(t *testing.T) {
	wf, _ := newTestWorkflow(t)
	good, bad := writeProfiles(t, `{"a": "1"}`, `{"a": "2"}`)

	err := wf.Bisect(context.Background(), BisectArgs{
		DeciderArgs: DeciderArgs{Good: good, Bad: bad, Decider: writeScript(t, "exit 0")},
	})

	require.ErrorIs(t, err, ErrMislabeledInput)
}

func TestWorkflow_BisectMissingProfile(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	err := wf.Bisect(context.Background(), BisectArgs{
		DeciderArgs: DeciderArgs{Good: "missing.json", Bad: "missing.json", Decider: "true"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load good profile")
}

func TestWorkflow_Check(t *testing.T) {
	t.Run("labeled", func(t *testing.T) {
		wf, out := newTestWorkflow(t)
		good, bad := writeProfiles(t, `{"a": "1", "c": "1"}`, `{"a": "9"}`)

		err := wf.Check(context.Background(), CheckArgs{
			DeciderArgs: DeciderArgs{Good: good, Bad: bad, Decider: writeScript(t, aIsBad)},
		})
		require.NoError(t, err)

		assert.Contains(t, out.String(), "GOOD")
		assert.Contains(t, out.String(), "BAD")
	})

	t.Run("mislabeled", func(t *testing.T) {
		wf, _ := newTestWorkflow(t)
		good, bad := writeProfiles(t, `{"a": "9"}`, `{"a": "1"}`)

		err := wf.Check(context.Background(), CheckArgs{
			DeciderArgs: DeciderArgs{Good: good, Bad: bad, Decider: writeScript(t, aIsBad)},
		})
		require.ErrorIs(t, err, ErrMislabeledInput)
	})
}

func TestWorkflow_View(t *testing.T) {
	wf, out := newTestWorkflow(t)
	path := m.Path(filepath.Join(t.TempDir(), "report.json"))

	report := m.Report{
		Analysis: m.Analysis{
			Seed:          9,
			BisectResults: m.Result{Individuals: []m.Component{"hot_fn"}, Ranges: [][]m.Component{{"x", "y"}}},
		},
		RunID:   "run-1234",
		Decider: "./decider.sh",
	}
	require.NoError(t, adapter.NewReportStore().SaveReport(path, report))

	require.NoError(t, wf.View(context.Background(), ViewArgs{Report: path}))

	assert.Contains(t, out.String(), "run-1234")
	assert.Contains(t, out.String(), "hot_fn")
	assert.Contains(t, out.String(), "x, y")
}

func TestWorkflow_ViewMissingReport(t *testing.T) {
	wf, _ := newTestWorkflow(t)

	err := wf.View(context.Background(), ViewArgs{Report: m.Path(filepath.Join(t.TempDir(), "nope.json"))})
	require.Error(t, err)
}
