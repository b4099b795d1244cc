package cmd

import (
	"github.com/spf13/cobra"

	"profbisect.dev/pkg/profbisect/internal/domain"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	var good, bad string

	cmd := &cobra.Command{
		Use:   "check --good GOOD --bad BAD",
		Short: "Check that the decider agrees with the good/bad labels",
		Long: `Ask the decider about both inputs and about the boundary candidates
(good plus the bad-only components, bad minus its own extras) without bisecting.
Fails when the good profile is not GOOD or the bad profile is not BAD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deciderArgs, err := readDeciderArgs(good, bad)
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), domain.CheckArgs{DeciderArgs: deciderArgs})
		},
	}

	configureProfileFlags(cmd, &good, &bad)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
