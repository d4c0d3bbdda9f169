package cmd

import (
	"errors"
	"os"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lrcCmd)
}

// lrcCmd groups the lyrics file utilities.
var lrcCmd = &cobra.Command{
	Use:   "lrc",
	Short: "Inspect LRC lyrics files",
}

func init() {
	lrcCmd.AddCommand(lrcCheckCmd)
	lrcCheckCmd.Flags().BoolP("marks", "m", false, "Print every timing mark")
	lrcCheckCmd.SetOut(os.Stdout)
}

// lrcCheckCmd parses lyrics files and reports the first error of each.
var lrcCheckCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Parse lyrics files and report errors",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var failed bool

		for _, path := range args {
			lyrics, err := lrc.Load(path)
			if err != nil {
				failed = true

				var parseErr *lrc.ParseError
				if errors.As(err, &parseErr) {
					cmd.Printf("%s %s:%d %s\n", icon.Get(icon.Fail), path, parseErr.Line, style.Fg(color.Red)(parseErr.Err.Error()))
				} else {
					cmd.Printf("%s %s\n", icon.Get(icon.Fail), style.Fg(color.Red)(err.Error()))
				}
				continue
			}

			cmd.Printf(
				"%s %s %s, %s\n",
				icon.Get(icon.Success),
				path,
				util.Quantify(len(lyrics.Lines), "line", "lines"),
				util.Quantify(len(lyrics.Marks), "mark", "marks"),
			)

			for _, key := range []string{"ar", "ti", "al"} {
				if value, ok := lyrics.Tag(key); ok {
					cmd.Printf("  %s %s\n", style.Faint(key), value)
				}
			}

			if lo.Must(cmd.Flags().GetBool("marks")) {
				for _, mark := range lyrics.Marks {
					text := ""
					if mark.Line < len(lyrics.Lines) {
						text = highlight(lyrics.Lines[mark.Line], mark.From, mark.To)
					}
					cmd.Printf("  %s %s\n", style.Faint(lrc.FormatDuration(mark.Time)), text)
				}
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}
