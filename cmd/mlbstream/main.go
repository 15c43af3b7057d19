package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"mlbstream/internal/cli"
	"mlbstream/internal/config"
	"mlbstream/internal/domain"
	"mlbstream/internal/netx"
	"mlbstream/internal/session"
	"mlbstream/internal/util"
)

var (
	newLogger    = func(debug bool) loggerAPI { return cli.NewLogger(debug) }
	newStore     = session.NewFileStore
	newPlayer    = defaultPlayer
	loadConfigFn = config.Load
	loadGamesFn  = domain.LoadGameDirectory
	nowFn        = time.Now
	exitFn       = cli.Exit
)

type loggerAPI interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Success(msg string)
	Failure(msg string)
}

type playerAPI interface {
	Play(ctx context.Context, dir domain.GameDirectory, opt domain.PlayOptions) error
}

// errNotLoggedIn is what the default login step reports; acquiring a cookie
// interactively is not supported.
var errNotLoggedIn = errors.New("not logged in: store an authorization cookie with --set-auth-cookie")

func requireAuthCookie(ctx context.Context) error {
	return errNotLoggedIn
}

func defaultPlayer(cfg config.Config, store *session.Store, log domain.Logger) playerAPI {
	net := netx.NewClient(netx.Options{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: !cfg.TLSVerify(),
		Retry: netx.RetryOptions{
			Retries:   cfg.Retries,
			BaseDelay: 300 * time.Millisecond,
			MaxDelay:  2 * time.Second,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				log.Warn(fmt.Sprintf("request failed (%v): retry %d/%d in %s", err, attempt, cfg.Retries, wait.Round(time.Millisecond)))
			},
		},
	})
	return domain.NewPlayer(net, store, playerSettings(cfg), domain.ExecRunner{}, requireAuthCookie, log)
}

func playerSettings(cfg config.Config) domain.PlayerSettings {
	return domain.PlayerSettings{
		Stream: domain.StreamSettings{
			MediaServiceURL:  cfg.MediaServiceURL,
			PlaybackScenario: cfg.PlaybackScenario,
			Platform:         cfg.Platform,
			CDN:              cfg.CDN,
			UserAgent:        cfg.SvcUserAgent,
		},
		Launch: domain.LaunchSettings{
			Program:     cfg.Streamlink,
			VideoPlayer: cfg.VideoPlayer,
			Quality:     cfg.Resolution,
			Verbose:     cfg.Verbose,
		},
		IPhoneUserAgent: cfg.IPhoneUserAgent,
		PlaylistDir:     cfg.Dir,
	}
}

// execute runs one invocation and returns the process exit code: 2 for fatal
// pipeline errors and interrupts, 1 for usage, configuration, login and
// launcher problems, 0 otherwise.
func execute(ctx context.Context, args []string, usage io.Writer) int {
	a, err := cli.ParseArgs(args, usage)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		newLogger(false).Error(formatError(err))
		return 1
	}

	cfgPath, err := filepath.Abs(a.ConfigPath)
	if err != nil {
		newLogger(a.Debug).Error(formatError(err))
		return 1
	}
	cfg, err := loadConfigFn(cfgPath)
	if err != nil {
		newLogger(a.Debug).Error(formatError(err))
		return 1
	}
	debug := a.Debug || cfg.Debug
	cfg.Verbose = cfg.Verbose || a.Verbose
	logger := newLogger(debug)

	store := newStore(cfg.SessionFile)
	if a.StoresSession() {
		if err := storeSession(store, a); err != nil {
			logger.Error(formatError(err))
			return 1
		}
		logger.Success("Stored session in " + store.Path())
		return 0
	}
	if !cfg.TLSVerify() {
		logger.Warn("TLS certificate verification is disabled (verify_ssl: false)")
	}

	gamesPath := a.GamesFile
	if gamesPath == "" {
		gamesPath = cfg.GamesFile
	}
	if gamesPath == "" {
		logger.Error("no game directory: set games_file or pass --games")
		return 1
	}
	dir, err := loadGamesFn(gamesPath)
	if err != nil {
		logger.Error(formatError(err))
		return 1
	}
	feed, err := domain.ParseFeedKind(a.Feed)
	if err != nil {
		logger.Error(formatError(err))
		return 1
	}
	date, err := util.ResolveDate(nowFn(), a.Date, dir.Date)
	if err != nil {
		logger.Error(formatError(err))
		return 1
	}

	favs := cfg.Favourites()
	for _, g := range domain.FilterFavourites(dir.Games, favs, cfg.Filter) {
		mark := ""
		if domain.IsFavourite(g, favs) {
			mark = " *"
		}
		logger.Debug(fmt.Sprintf("%s %s: %s @ %s%s", date, g.GamePk, g.AwayAbbrev, g.HomeAbbrev, mark))
	}

	team := strings.ToUpper(strings.TrimSpace(a.Team))
	player := newPlayer(cfg, store, logger)
	err = player.Play(ctx, dir, domain.PlayOptions{
		Team:         team,
		Feed:         feed,
		Date:         date,
		Record:       a.Record,
		RecordDir:    cfg.Dir,
		DumpPlaylist: debug,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("Interrupted")
		return 2
	case domain.IsFatal(err):
		logger.Failure(formatError(err))
		return 2
	default:
		logger.Error(formatError(err))
		return 1
	}
}

// storeSession writes the cookies given on the command line.
func storeSession(store *session.Store, a cli.Args) error {
	if a.SetAuthCookie != "" {
		if err := store.SetAuthCookie(a.SetAuthCookie); err != nil {
			return err
		}
	}
	for _, c := range a.SetCookies {
		name, value, _ := strings.Cut(c, "=")
		if err := store.SetCookie(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stderr)
	stop()
	exitFn(code)
}

func formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
