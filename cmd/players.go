package cmd

import (
	"context"
	"os"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/config"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/lrcshow-cli/lrcshow/mpris"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playersCmd)
	playersCmd.Flags().BoolP("raw", "r", false, "Print player names only")
	playersCmd.SetOut(os.Stdout)
}

// playersCmd lists the MPRIS players on the session bus.
var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the MPRIS players running on the session bus",
	Run: func(cmd *cobra.Command, args []string) {
		CheckSessionBus()

		client, err := mpris.Connect(config.QueryTimeout())
		handleErr(err)
		defer client.Close()

		ctx := context.Background()

		players, err := client.ListPlayers(ctx)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, name := range players {
				cmd.Println(name)
			}
			return
		}

		if len(players) == 0 {
			cmd.Printf("%s no players running\n", icon.Get(icon.Info))
			return
		}

		for _, name := range players {
			line := style.Bold(name)

			owner, err := client.OwnerName(ctx, name)
			if err == nil {
				if state, err := client.QueryState(ctx, owner); err == nil {
					line += " " + style.Fg(color.Yellow)(string(state.Status))
					line += " " + style.Faint(lrc.FormatDuration(state.Snapshot.Position))
					if path, ok := state.Path().Get(); ok {
						line += " " + style.Fg(color.Cyan)(path)
					}
				}
			}

			cmd.Printf("%s %s\n", icon.Get(icon.Player), line)
		}
	},
}
