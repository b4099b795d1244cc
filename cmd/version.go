package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// modulePath is the main module profbisect is built from.
const modulePath = "profbisect.dev/pkg/profbisect"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the profbisect version, module, VCS revision and Go version it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			for _, line := range versionLines(info, ok) {
				cmd.Println(line)
			}
		},
	}
}

// versionLines formats build info. A missing main version falls back to
// "unknown" but the remaining lines are still printed.
func versionLines(info *debug.BuildInfo, ok bool) []string {
	if !ok || info == nil {
		return []string{"profbisect version\t unknown"}
	}

	version := info.Main.Version
	if version == "" {
		version = "unknown"
	}

	module := info.Main.Path
	if module == "" {
		module = modulePath
	}

	lines := []string{
		"profbisect version\t " + version,
		"module\t " + module,
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			lines = append(lines, fmt.Sprintf("revision\t %s", setting.Value))
		}
	}

	return append(lines, "go version\t "+info.GoVersion)
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
