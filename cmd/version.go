package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"built_at"`
	BuiltBy  string `json:"built_by"`
	Platform string `json:"platform"`
	DBusName string `json:"dbus_name"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		DBusName: constant.DBusName,
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
	versionCmd.Flags().BoolP("json", "j", false, "Print build information as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := currentVersion()

		switch {
		case lo.Must(cmd.Flags().GetBool("short")):
			cmd.Println(info.Version)
			return
		case lo.Must(cmd.Flags().GetBool("json")):
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		defer version.Notify()

		cmd.Printf("%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Fg(color.Purple)(constant.Lrcshow))
		for _, row := range []lo.Tuple2[string, string]{
			{A: "Version", B: info.Version},
			{A: "Git Commit", B: info.Revision},
			{A: "Build Date", B: info.BuiltAt},
			{A: "Built By", B: info.BuiltBy},
			{A: "Platform", B: info.Platform},
			{A: "D-Bus Name", B: info.DBusName},
		} {
			cmd.Printf("  %-12s %s\n", style.Faint(row.A), style.Bold(row.B))
		}
	},
}
