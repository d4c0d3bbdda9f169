package cmd

import (
	"os"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/config"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// envNames lists every environment variable lrcshow reads.
func envNames() []string {
	names := lo.FilterMap(config.EnvExposed, func(k string, _ int) (string, bool) {
		field, ok := config.Default[k]
		return field.Env(), ok
	})
	names = append(names, where.EnvConfigPath, envSessionBus)
	slices.Sort(names)
	return names
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Show only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Show only variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the environment variables lrcshow reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, name := range envNames() {
			value, present := os.LookupEnv(name)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			shown := style.Fg(color.Red)("unset")
			if present {
				shown = style.Fg(color.Green)(value)
			}

			cmd.Println(style.New().Bold(true).Foreground(color.Purple).Render(name) + "=" + shown)
		}
	},
}
