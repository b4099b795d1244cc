// Package cmd provides the root command and CLI setup for profbisect.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"profbisect.dev/pkg/profbisect/internal/adapter"
	"profbisect.dev/pkg/profbisect/internal/controller"
	"profbisect.dev/pkg/profbisect/internal/domain"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

var profileAdapter adapter.ProfileAdapter
var candidateFSAdapter adapter.CandidateFSAdapter
var deciderRunner adapter.DeciderRunnerAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// Root-level flags shared by every command that talks to the decider.
var (
	deciderFlag        string
	formatFlag         string
	outputFlag         string
	deciderTimeoutFlag string
	verboseFlag        bool
	logFileFlag        string
)

// errNoDecider is returned when neither the flag nor the config names a decider.
var errNoDecider = errors.New("no decider given: pass --decider or set decider in " + configFileName)

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, viper.GetBool(plainConfigKey))
	profileAdapter = adapter.NewLocalProfileAdapter()
	candidateFSAdapter = adapter.NewLocalCandidateFSAdapter()
	deciderRunner = adapter.NewLocalDeciderRunnerAdapter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		profileAdapter,
		candidateFSAdapter,
		deciderRunner,
		reportStore,
		ui,
	)
}

const deciderHelp = `The decider is any executable. It is called with the path of a candidate
profile as its only argument and answers through its exit code:
  0    GOOD     the candidate behaves like the good profile
  1    BAD      the candidate reproduces the problem
  125  SKIP     the candidate cannot be judged
  127  PROBLEM  stop the run
Any other exit code aborts the run.`

const rootLongDescription = `profbisect finds which components of a bad configuration make it bad.

Given a known-good and a known-bad profile (AFDO text, or flat YAML/JSON maps)
it substitutes bad components into the good profile and asks an external
decider about each candidate, bisecting down to individual culprits and
searching for groups that are only bad together.

` + deciderHelp

const bisectLongDescription = `Run the full analysis: validate the inputs, bisect the common components,
search for problematic combinations and check the components only one profile
has. The report is written to --output (JSON, or YAML for .yaml/.yml).

` + deciderHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profbisect",
		Short:         "Bisect profiles against an external decider",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&deciderFlag, deciderFlagName, "d", viper.GetString(deciderConfigKey), "decider executable judging each candidate")
	bindFlagToConfig(flags.Lookup(deciderFlagName), deciderConfigKey)

	flags.StringVarP(&formatFlag, formatFlagName, "f", viper.GetString(formatConfigKey), "profile format: afdo, yaml or json (default: from the good profile's extension)")
	bindFlagToConfig(flags.Lookup(formatFlagName), formatConfigKey)

	flags.StringVarP(&outputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "report file written by bisect and read by view")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputConfigKey)

	flags.StringVar(&deciderTimeoutFlag, deciderTimeoutFlagName, viper.GetString(deciderTimeoutConfigKey), "timeout of a single decider run, e.g. 30s (0 disables)")
	bindFlagToConfig(flags.Lookup(deciderTimeoutFlagName), deciderTimeoutConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl-C cancels the running command through its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// readDeciderArgs collects the decider settings from flags, env and config.
func readDeciderArgs(good, bad string) (domain.DeciderArgs, error) {
	decider := viper.GetString(deciderConfigKey)
	if decider == "" {
		return domain.DeciderArgs{}, errNoDecider
	}

	format, err := parseFormat(viper.GetString(formatConfigKey))
	if err != nil {
		return domain.DeciderArgs{}, err
	}

	return domain.DeciderArgs{
		Good:           m.Path(good),
		Bad:            m.Path(bad),
		Format:         format,
		Decider:        decider,
		DeciderTimeout: viper.GetDuration(deciderTimeoutConfigKey),
	}, nil
}

func parseFormat(value string) (m.Format, error) {
	if value == "" {
		return "", nil
	}

	format := m.Format(value)
	if !slices.Contains(m.Formats, format) {
		return "", fmt.Errorf("%w %q (want one of %v)", adapter.ErrUnknownFormat, value, m.Formats)
	}

	return format, nil
}
