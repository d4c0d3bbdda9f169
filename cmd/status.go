package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/lrcshow-cli/lrcshow/server"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// statusOutput is what status --json prints.
type statusOutput struct {
	Running bool           `json:"running" jsonschema:"description=Whether a daemon owns the bus name"`
	Lyrics  server.Lyrics  `json:"lyrics"`
	Segment server.Segment `json:"segment"`
	Line    string         `json:"line,omitempty" jsonschema:"description=Text of the active line"`
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON object")
	statusCmd.SetOut(os.Stdout)
}

// statusCmd queries a running daemon.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the lyrics and the active segment of a running daemon",
	Run: func(cmd *cobra.Command, args []string) {
		CheckSessionBus()

		remote, err := server.Dial()
		handleErr(err)
		defer remote.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		output := statusOutput{Segment: server.NoSegment, Lyrics: server.Lyrics{Lines: []string{}}}

		output.Running, err = remote.Running(ctx)
		handleErr(err)

		if output.Running {
			output.Lyrics.Lines, err = remote.Lyrics(ctx)
			handleErr(err)
			output.Lyrics.Loaded = len(output.Lyrics.Lines) > 0

			output.Segment, err = remote.Segment(ctx)
			handleErr(err)

			if output.Segment.Present() && int(output.Segment.Line) < len(output.Lyrics.Lines) {
				output.Line = output.Lyrics.Lines[output.Segment.Line]
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(output))
			return
		}

		if !output.Running {
			cmd.Printf("%s daemon is not running\n", icon.Get(icon.Warn))
			return
		}

		cmd.Printf("%s %s\n", icon.Get(icon.Lyrics), style.Faint(lrc.FormatDuration(output.Segment.Time())))
		if output.Segment.Present() {
			cmd.Println(highlight(output.Line, int(output.Segment.From), int(output.Segment.To)))
		} else {
			cmd.Println(style.Fg(color.Gray)("no active segment"))
		}
	},
}

func init() {
	statusCmd.AddCommand(statusSchemaCmd)
}

// statusSchemaCmd prints the JSON schema of status --json.
var statusSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the status output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&statusOutput{})))
	},
}
