package cmd

import (
	"os"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/config"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type location struct {
	flag, short string
	title       string
	path        func() string
}

var locations = []location{
	{"config", "c", "Config directory", where.Config},
	{"config-file", "f", "Config file", config.File},
	{"resolvers", "r", "Lua resolvers", where.Resolvers},
	{"logs", "l", "Logs", where.Logs},
	{"cache", "", "Cache", where.Cache},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, l := range locations {
		whereCmd.Flags().BoolP(l.flag, l.short, false, "Print only the "+l.title+" path")
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(locations, func(l location, _ int) string {
		return l.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print where lrcshow keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		if l, ok := lo.Find(locations, func(l location) bool {
			return lo.Must(cmd.Flags().GetBool(l.flag))
		}); ok {
			cmd.Println(l.path())
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		for i, l := range locations {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", header(l.title), style.Fg(color.Yellow)("--"+l.flag), l.path())
		}
	},
}
