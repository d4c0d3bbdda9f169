package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/lrcshow-cli/lrcshow/server"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// printer writes the active line to a terminal, the sung part highlighted.
type printer struct {
	out   io.Writer
	lines []string
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) OnLyricsChanged(lines mo.Option[[]string]) {
	p.setLines(lines.OrEmpty())
}

func (p *printer) OnActiveSegmentChanged(mark mo.Option[lrc.TimingMark]) {
	p.show(server.SegmentOf(mark))
}

func (p *printer) setLines(lines []string) {
	p.lines = lines
	_, _ = fmt.Fprintf(p.out, "%s %s\n", icon.Get(icon.Lyrics), style.Faint(util.Quantify(len(lines), "line", "lines")))
}

func (p *printer) show(s server.Segment) {
	if !s.Present() || int(s.Line) >= len(p.lines) {
		return
	}

	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}

	line := highlight(p.lines[s.Line], int(s.From), int(s.To))
	_, _ = fmt.Fprintf(p.out, "%s %s\n", style.Faint(lrc.FormatDuration(s.Time())), wordwrap.String(line, width-10))
}

// highlight renders line with the byte range [from, to) emphasized and what
// was sung before it faint.
func highlight(line string, from, to int) string {
	from = util.Clamp(from, 0, len(line))
	to = util.Clamp(to, from, len(line))

	if from == to {
		return line
	}

	return style.Fg(color.HiPurple)(line[:from]) +
		style.New().Bold(true).Foreground(color.HiYellow).Render(line[from:to]) +
		line[to:]
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.SetOut(os.Stdout)
}

// listenCmd follows a running daemon and prints the active line.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print the active lyrics line of a running daemon as it changes",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		remote, err := server.Dial()
		handleErr(err)
		defer remote.Close()

		notifications, err := remote.Subscribe(ctx)
		handleErr(err)

		p := newPrinter(cmd.OutOrStdout())

		lines, err := remote.Lyrics(ctx)
		handleErr(err)
		p.setLines(lines)

		segment, err := remote.Segment(ctx)
		handleErr(err)
		p.show(segment)

		for n := range notifications {
			if !n.LyricsChanged {
				p.show(n.Segment)
				continue
			}

			lines, err := remote.Lyrics(ctx)
			handleErr(err)
			p.setLines(lines)
		}
	},
}
