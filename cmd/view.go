package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"profbisect.dev/pkg/profbisect/internal/domain"
	m "profbisect.dev/pkg/profbisect/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [report]",
		Short: "View a previously saved bisection report",
		Long:  "View a bisection report. Without an argument the report at --output is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := m.Path(viper.GetString(outputConfigKey))
			if len(args) == 1 {
				report = m.Path(args[0])
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{Report: report})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
