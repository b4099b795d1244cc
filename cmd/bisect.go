package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"profbisect.dev/pkg/profbisect/internal/domain"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

// bisectCmd represents the bisect command.
var bisectCmd = newBisectCmd()

func newBisectCmd() *cobra.Command {
	var (
		good           string
		bad            string
		seed           int64
		parallel       int
		rangeTrials    int
		skipValidation bool
		history        bool
		metricsFile    string
	)

	cmd := &cobra.Command{
		Use:   "bisect --good GOOD --bad BAD",
		Short: "Find the components that make the bad profile bad",
		Long:  bisectLongDescription,
		Example: `  profbisect bisect --good good.afdo --bad bad.afdo --decider ./decider.sh
  profbisect bisect --good good.yaml --bad bad.yaml -d ./decider.sh -o report.yaml --history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deciderArgs, err := readDeciderArgs(good, bad)
			if err != nil {
				return err
			}

			return workflow.Bisect(cmd.Context(), domain.BisectArgs{
				DeciderArgs: deciderArgs,
				SearchOptions: domain.SearchOptions{
					Parallel:    viper.GetInt(parallelConfigKey),
					RangeTrials: viper.GetInt(rangeTrialsConfigKey),
				},
				Output:         m.Path(viper.GetString(outputConfigKey)),
				Seed:           viper.GetInt64(seedConfigKey),
				SkipValidation: viper.GetBool(skipValidationConfigKey),
				History:        viper.GetBool(historyConfigKey),
				MetricsFile:    m.Path(viper.GetString(metricsFileConfigKey)),
			})
		},
	}

	configureProfileFlags(cmd, &good, &bad)

	flags := cmd.Flags()

	flags.Int64Var(&seed, seedFlagName, viper.GetInt64(seedConfigKey), "seed for the shuffles of the range search (0 picks one from the clock)")
	bindFlagToConfig(flags.Lookup(seedFlagName), seedConfigKey)

	flags.IntVarP(&parallel, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "query both halves of a split concurrently when greater than 1")
	bindFlagToConfig(flags.Lookup(parallelFlagName), parallelConfigKey)

	flags.IntVar(&rangeTrials, rangeTrialsFlagName, viper.GetInt(rangeTrialsConfigKey), "rounds of the range search before it settles on the shortest bad range")
	bindFlagToConfig(flags.Lookup(rangeTrialsFlagName), rangeTrialsConfigKey)

	flags.BoolVar(&skipValidation, skipValidationFlagName, viper.GetBool(skipValidationConfigKey), "do not check that the good profile is GOOD and the bad one BAD first")
	bindFlagToConfig(flags.Lookup(skipValidationFlagName), skipValidationConfigKey)

	flags.BoolVar(&history, historyFlagName, viper.GetBool(historyConfigKey), "store every decider run in the report")
	bindFlagToConfig(flags.Lookup(historyFlagName), historyConfigKey)

	flags.StringVar(&metricsFile, metricsFileFlagName, viper.GetString(metricsFileConfigKey), "write Prometheus metrics of the run to this file")
	bindFlagToConfig(flags.Lookup(metricsFileFlagName), metricsFileConfigKey)

	return cmd
}

// configureProfileFlags registers the required --good and --bad flags. They
// name per-run inputs, so they are not read from the config file.
func configureProfileFlags(cmd *cobra.Command, good, bad *string) {
	cmd.Flags().StringVarP(good, goodFlagName, "g", "", "profile known to be GOOD")
	cmd.Flags().StringVarP(bad, badFlagName, "b", "", "profile known to be BAD")
	cobra.CheckErr(cmd.MarkFlagRequired(goodFlagName))
	cobra.CheckErr(cmd.MarkFlagRequired(badFlagName))
}

func init() {
	rootCmd.AddCommand(bisectCmd)
}
