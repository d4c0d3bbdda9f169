// Package cmd implements the command-line interface for lrcshow.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/lrcshow-cli/lrcshow/version"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().Bool("verbose", false, "Print logs to stderr")

	rootCmd.Flags().StringP("player", "p", "", "MPRIS player to follow, partial names are matched against running players")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("player", completionPlayers))
	lo.Must0(viper.BindPFlag(key.PlayerName, rootCmd.Flags().Lookup("player")))

	rootCmd.Flags().StringP("lyrics", "l", "", "Lyrics file to use for every track")
	lo.Must0(viper.BindPFlag(key.LyricsPath, rootCmd.Flags().Lookup("lyrics")))

	rootCmd.Flags().Int("tick", 16, "Synchronization tick period in milliseconds")
	lo.Must0(viper.BindPFlag(key.DaemonTickMs, rootCmd.Flags().Lookup("tick")))

	rootCmd.Flags().Bool("http", false, "Serve lyrics and position over HTTP")
	lo.Must0(viper.BindPFlag(key.ServerHTTPEnabled, rootCmd.Flags().Lookup("http")))

	rootCmd.Flags().Bool("print", false, "Print the active line whenever it changes")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd runs the synchronization daemon.
var rootCmd = &cobra.Command{
	Use:   constant.Lrcshow,
	Short: "Synchronized lyrics for MPRIS media players",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Synchronized lyrics for MPRIS media players"),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("verbose")) {
			log.Attach(os.Stderr, viper.GetString(key.LogsLevel))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if path := viper.GetString(key.LyricsPath); path != "" {
			handleErr(checkLyricsFile(path))
		}

		CheckSessionBus()

		options := daemonOptions{
			Print: lo.Must(cmd.Flags().GetBool("print")),
		}
		handleErr(runDaemon(cmd.Context(), options))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
