package domain

import (
	"context"
	"fmt"

	"mlbstream/internal/netx"
	"mlbstream/internal/session"
	"mlbstream/internal/util"
)

// PlayOptions describes one play request.
type PlayOptions struct {
	Team string
	// Feed is empty when the user did not ask for a kind.
	Feed FeedKind
	// Date names recordings, "YYYY-MM-DD".
	Date      string
	Record    bool
	RecordDir string
	// DumpPlaylist saves the manifest before launching.
	DumpPlaylist bool
}

// PlayerSettings groups the configuration a Player needs.
type PlayerSettings struct {
	Stream          StreamSettings
	Launch          LaunchSettings
	IPhoneUserAgent string
	PlaylistDir     string
}

// LoginFunc is called when no auth cookie is present before a full-game
// resolution.
type LoginFunc func(ctx context.Context) error

type streamAPI interface {
	Resolve(ctx context.Context, gamePk, contentID, eventID string) (Resolution, error)
}

type dumperAPI interface {
	Dump(ctx context.Context, streamURL, mediaAuth string) (string, error)
}

type launcherAPI interface {
	Launch(ctx context.Context, c LaunchCommand) ([]string, error)
}

// Player orchestrates feed selection, stream resolution and the launch.
type Player struct {
	auth     authAPI
	stream   streamAPI
	dumper   dumperAPI
	launcher launcherAPI
	settings PlayerSettings
	login    LoginFunc
	log      Logger
}

// NewPlayer wires the pipeline with default concrete components.
func NewPlayer(net *netx.Client, store *session.Store, settings PlayerSettings, runner Runner, login LoginFunc, log Logger) *Player {
	log = orNop(log)
	auth := NewAuthClient(net, store, settings.Stream, log)
	return &Player{
		auth:     auth,
		stream:   NewStreamResolver(net, auth, settings.Stream, log),
		dumper:   NewPlaylistDumper(net, auth, settings.PlaylistDir, settings.Stream.UserAgent, log),
		launcher: NewLauncher(runner, log),
		settings: settings,
		login:    login,
		log:      log,
	}
}

// Play finds the team's game in dir and launches the requested feed.
//
// A missing game or highlight URL is fatal. Failing to pick a feed or to
// resolve a stream is logged and returns nil.
func (p *Player) Play(ctx context.Context, dir GameDirectory, opt PlayOptions) error {
	game, ok := dir.FindByTeam(opt.Team)
	if !ok {
		return fatal(fmt.Errorf("%w for team %s", ErrNoGame, opt.Team))
	}

	if opt.Feed.IsHighlight() {
		playbackURL, err := ResolveHighlight(p.log, game, opt.Feed)
		if err != nil {
			return err
		}
		if playbackURL == "" {
			return fatal(fmt.Errorf("%w for feed '%s'", ErrNoPlaybackURL, opt.Feed))
		}
		record := util.RecordingPath(opt.Record, opt.RecordDir, opt.Date, game.AwayAbbrev, game.HomeAbbrev, string(opt.Feed))
		_, err = p.launcher.Launch(ctx, HighlightCommand(playbackURL, record, p.settings.Launch))
		return err
	}

	// Full games are the only path that needs an authenticated session.
	if p.auth.AuthCookie() == "" && p.login != nil {
		if err := p.login(ctx); err != nil {
			return err
		}
	}
	p.log.Debug("Authorization cookie: " + p.auth.AuthCookie())

	feed, ok := SelectFeed(p.log, game, opt.Team, opt.Feed)
	if !ok {
		p.log.Info("No game found for " + opt.Team)
		return nil
	}
	res, err := p.stream.Resolve(ctx, game.GamePk, feed.MediaPlaybackID, feed.EventID)
	if err != nil {
		return err
	}
	if res.Empty() {
		p.log.Error("No stream URL")
		return nil
	}
	if opt.DumpPlaylist {
		if _, err := p.dumper.Dump(ctx, res.StreamURL, res.MediaAuth); err != nil {
			return err
		}
	}
	record := util.RecordingPath(opt.Record, opt.RecordDir, opt.Date, game.AwayAbbrev, game.HomeAbbrev, string(feed.Kind))
	_, err = p.launcher.Launch(ctx, FullGameCommand(PlaybackRequest{
		StreamURL:  res.StreamURL,
		AuthCookie: p.auth.AuthCookie(),
		MediaAuth:  res.MediaAuth,
		UserAgent:  p.settings.IPhoneUserAgent,
		RecordPath: record,
	}, p.settings.Launch))
	return err
}
