package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/lrcshow-cli/lrcshow/config"
	"github.com/lrcshow-cli/lrcshow/daemon"
	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/lyrics"
	"github.com/lrcshow-cli/lrcshow/mpris"
	"github.com/lrcshow-cli/lrcshow/server"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	errNoPlayers   = errors.New("no MPRIS player is running, start one or pass --player")
	errManyPlayers = errors.New("several players are running, choose one with --player")
)

// checkLyricsFile verifies that a fixed lyrics path names a regular file.
func checkLyricsFile(path string) error {
	info, err := filesystem.API().Stat(path)
	if err != nil {
		return fmt.Errorf("lyrics path: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("lyrics path must be a file: %s", path)
	}

	return nil
}

type daemonOptions struct {
	Print bool
}

func runDaemon(parent context.Context, options daemonOptions) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mpris.Connect(config.QueryTimeout())
	if err != nil {
		return err
	}
	defer client.Close()

	name, err := choosePlayer(ctx, client)
	if err != nil {
		return err
	}

	resolver, err := buildResolver()
	if err != nil {
		return err
	}
	defer resolver.Close()

	manager, err := lyrics.NewManager()
	if err != nil {
		return fmt.Errorf("watch lyrics: %w", err)
	}
	defer manager.Close()

	cache := &server.Cache{}
	var publishers []server.Publisher

	if viper.GetBool(key.ServerDBus) {
		exported, err := server.ExportDBus(cache)
		if err != nil {
			return err
		}
		defer exported.Close()
		publishers = append(publishers, exported)
	}

	if viper.GetBool(key.ServerHTTPEnabled) {
		endpoint := server.NewHTTP(cache, viper.GetString(key.ServerHTTPAddress), viper.GetStringSlice(key.ServerHTTPCorsOrigins))
		publishers = append(publishers, endpoint)

		go func() {
			if err := endpoint.ListenAndServe(); err != nil {
				log.Errorf("http: %s", err)
				stop()
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = endpoint.Shutdown(shutdownCtx)
		}()
	}

	sink := daemon.MultiSink{server.New(cache, publishers...)}
	if options.Print {
		sink = append(sink, newPrinter(os.Stdout))
	}

	listener := mpris.NewListener(client, name, viper.GetInt(key.MprisStartedRetries))
	if err := listener.Start(ctx); err != nil {
		return err
	}
	defer listener.Stop()

	go manager.Run(ctx)

	fixed := mo.EmptyableToOption(viper.GetString(key.LyricsPath))

	log.WithField("player", name).Infof("daemon started, tick %s", config.Tick())

	loop := daemon.New(daemon.Options{
		Tick:        config.Tick(),
		Players:     listener.Events(),
		Lyrics:      manager.Events(),
		Paths:       manager,
		Resolver:    resolver,
		Sink:        sink,
		FixedLyrics: fixed,
	})

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if err == nil {
		err = listener.Err()
	}

	return err
}

// buildResolver chains the configured resolvers, the lyrics file next to the
// audio file coming last.
func buildResolver() (lyrics.Chain, error) {
	var chain lyrics.Chain

	if path := viper.GetString(key.LyricsResolverScript); path != "" {
		script, err := lyrics.LoadScript(path)
		if err != nil {
			return nil, fmt.Errorf("load resolver script: %w", err)
		}
		script.Timeout = config.QueryTimeout()
		chain = append(chain, script)
	}

	if dirs := viper.GetStringSlice(key.LyricsDirectories); len(dirs) > 0 {
		chain = append(chain, lyrics.Directories(dirs))
	}

	return append(chain, lyrics.Sibling{}), nil
}

// choosePlayer picks the player to follow. A configured name that matches no
// running player is kept as is, the daemon then waits for it to start.
func choosePlayer(ctx context.Context, client *mpris.Client) (string, error) {
	name := viper.GetString(key.PlayerName)

	players, err := client.ListPlayers(ctx)
	if err != nil {
		if name != "" {
			return name, nil
		}
		return "", err
	}

	if name != "" {
		if lo.Contains(players, name) {
			return name, nil
		}

		if matches := fuzzy.FindFold(name, players); len(matches) == 1 {
			log.Infof("matched player %s to %s", name, matches[0])
			return matches[0], nil
		}

		return name, nil
	}

	switch len(players) {
	case 0:
		return "", errNoPlayers
	case 1:
		return players[0], nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errManyPlayers
	}

	var chosen string
	prompt := &survey.Select{
		Message: "Player to follow",
		Options: players,
	}

	if err := survey.AskOne(prompt, &chosen); err != nil {
		return "", err
	}

	return chosen, nil
}

func completionPlayers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	client, err := mpris.Connect(config.QueryTimeout())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer client.Close()

	players, err := client.ListPlayers(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return players, cobra.ShellCompDirectiveNoFileComp
}
