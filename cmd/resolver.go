package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/open"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolverCmd)
}

// resolverCmd groups the commands managing Lua lyrics resolvers.
var resolverCmd = &cobra.Command{
	Use:   "resolver",
	Short: "Manage Lua scripts that locate lyrics files",
}

func init() {
	resolverCmd.AddCommand(resolverListCmd)
	resolverListCmd.SetOut(os.Stdout)
}

// resolverListCmd lists the scripts in the resolvers directory.
var resolverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scripts in the resolvers directory",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := filesystem.API().ReadDir(where.Resolvers())
		handleErr(err)

		active := viper.GetString(key.LyricsResolverScript)

		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
				continue
			}

			path := filepath.Join(where.Resolvers(), entry.Name())
			if path == active {
				cmd.Printf("%s %s\n", style.Fg(color.Green)(util.FileStem(entry.Name())), style.Faint("(active)"))
			} else {
				cmd.Println(util.FileStem(entry.Name()))
			}
		}
	},
}

func init() {
	resolverCmd.AddCommand(resolverGenCmd)

	resolverGenCmd.Flags().StringP("name", "n", "", "Name of the new resolver")
	resolverGenCmd.Flags().BoolP("edit", "e", false, "Open the new script in your editor")
	lo.Must0(resolverGenCmd.MarkFlagRequired("name"))
}

// resolverGenCmd scaffolds a Lua resolver script.
var resolverGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new Lua resolver script",
	Long: fmt.Sprintf(`Generate a Lua resolver script in the resolvers directory.
Set %s to its path to use it.`, key.LyricsResolverScript),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		var author string
		usr, err := user.Current()
		if err == nil {
			author = usr.Username
		} else {
			author = "Anonymous"
		}

		s := struct {
			Name            string
			Author          string
			ResolveLyricsFn string
		}{
			Name:            lo.Must(cmd.Flags().GetString("name")),
			Author:          author,
			ResolveLyricsFn: constant.ResolveLyricsFn,
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    func(a, b int) int { return max(a, b) },
		}

		tmpl, err := template.New("resolver").Funcs(funcMap).Parse(constant.ResolverTemplate)
		handleErr(err)

		target := filepath.Join(where.Resolvers(), util.SanitizeFilename(s.Name)+".lua")
		f, err := filesystem.API().Create(target)
		handleErr(err)

		defer util.Ignore(f.Close)

		err = tmpl.Execute(f, s)
		handleErr(err)

		cmd.Println(target)

		if lo.Must(cmd.Flags().GetBool("edit")) {
			handleErr(open.Edit(target))
		}
	},
}

func init() {
	resolverCmd.AddCommand(resolverTestCmd)

	resolverTestCmd.Flags().StringP("script", "s", "", "Resolver script to run, defaults to the configured one")
	resolverTestCmd.Flags().StringP("title", "t", "", "Track title")
	resolverTestCmd.Flags().StringP("album", "a", "", "Track album")
	resolverTestCmd.Flags().StringSliceP("artist", "A", nil, "Track artists")
	resolverTestCmd.SetOut(os.Stdout)
}

// resolverTestCmd runs the resolvers against a track given on the command line.
var resolverTestCmd = &cobra.Command{
	Use:   "test [audio file]",
	Short: "Show which lyrics file a track resolves to",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		meta := player.Metadata{
			Title:   lo.Must(cmd.Flags().GetString("title")),
			Album:   lo.Must(cmd.Flags().GetString("album")),
			Artists: lo.Must(cmd.Flags().GetStringSlice("artist")),
		}

		if len(args) > 0 {
			path, err := filepath.Abs(args[0])
			handleErr(err)
			meta.Path = path
		}

		if script := lo.Must(cmd.Flags().GetString("script")); script != "" {
			viper.Set(key.LyricsResolverScript, script)
		}

		resolver, err := buildResolver()
		handleErr(err)
		defer resolver.Close()

		path, err := resolver.Resolve(meta)
		handleErr(err)

		if path == "" {
			cmd.Printf("%s no lyrics file\n", icon.Get(icon.Warn))
			return
		}

		exists, err := filesystem.API().Exists(path)
		handleErr(err)

		if exists {
			cmd.Printf("%s %s\n", icon.Get(icon.Success), path)
		} else {
			cmd.Printf("%s %s %s\n", icon.Get(icon.Warn), path, style.Faint("(missing)"))
		}
	},
}
