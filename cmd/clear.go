package cmd

import (
	"fmt"

	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var clearable = []location{
	{"cache", "c", "cache", where.Cache},
	{"logs", "l", "logs", where.Logs},
	{"temp", "t", "temporary files", where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, l := range clearable {
		clearCmd.Flags().BoolP(l.flag, l.short, false, "Clear "+l.title)
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached files and logs",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearable, func(l location, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(l.flag))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, l := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), l.title))
			err := util.Delete(l.path())
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(l.title))
		}
	},
}
