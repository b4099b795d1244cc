package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profbisect.dev/pkg/profbisect/internal/adapter"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

// executeSubcommand runs sub under a fresh root command with the log file
// redirected into a temp dir.
func executeSubcommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	root.AddCommand(sub)

	output := &bytes.Buffer{}
	root.SetOut(output)
	root.SetErr(output)

	args = append(args, "--"+logFileFlagName, filepath.Join(t.TempDir(), "profbisect.log"))
	root.SetArgs(args)

	err := root.Execute()

	return output.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "profbisect", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)

	for _, name := range []string{deciderFlagName, formatFlagName, outputFlagName, deciderTimeoutFlagName, verboseFlagName, logFileFlagName} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"--" + logFileFlagName, filepath.Join(t.TempDir(), "profbisect.log")})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "125  SKIP")
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, profileAdapter)
	assert.NotNil(t, candidateFSAdapter)
	assert.NotNil(t, deciderRunner)
	assert.NotNil(t, reportStore)
	assert.NotNil(t, workflow)

	names := []string{}
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"bisect", "check", "view", "init", "version"})
}

func TestParseFormat(t *testing.T) {
	format, err := parseFormat("")
	require.NoError(t, err)
	assert.Empty(t, format)

	format, err = parseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, m.FormatYAML, format)

	_, err = parseFormat("toml")
	require.ErrorIs(t, err, adapter.ErrUnknownFormat)
}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Context() == nil {
				return fmt.Errorf("missing context")
			}

			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})
	mockCmd.SetArgs([]string{})

	rootCmd = mockCmd

	// Execute should not exit on success.
	Execute()
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Fprintln(os.Stderr, "error occurred")
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		mockCmd.SetArgs([]string{})
		rootCmd = mockCmd

		Execute() // This should call os.Exit(1)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExecute_ProcessLevel_Failure$")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(output), "error occurred")
}
