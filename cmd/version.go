package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bootup version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(w, "bootup CLI")
		for _, line := range [][2]string{
			{"Version", version},
			{"Commit", commit},
			{"Built", date},
			{"Runtime", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
		} {
			_, _ = fmt.Fprintf(w, "  %-8s %s\n", line[0]+":", line[1])
		}
	},
}
