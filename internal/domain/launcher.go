package domain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PlaybackRequest is everything a full-game launch needs. It is built once per
// run and consumed by FullGameCommand.
type PlaybackRequest struct {
	StreamURL  string
	AuthCookie string
	MediaAuth  string
	UserAgent  string
	// RecordPath is "" unless recording.
	RecordPath string
}

// LaunchSettings are the configured launcher preferences.
type LaunchSettings struct {
	Program     string
	VideoPlayer string
	Quality     string
	Verbose     bool
}

// LaunchCommand is a streamlink invocation. Args serializes the fields in a
// fixed order regardless of how the command was assembled.
type LaunchCommand struct {
	Program     string
	NoSSLVerify bool
	Cookies     []string
	Headers     []string
	Output      string
	Player      string
	Debug       bool
	URL         string
	Quality     string
	Highlight   bool
}

// Args returns the argument vector without the program name.
func (c LaunchCommand) Args() []string {
	args := make([]string, 0, 16)
	if c.NoSSLVerify {
		args = append(args, "--http-no-ssl-verify")
	}
	args = append(args, "--player-no-close")
	for _, ck := range c.Cookies {
		args = append(args, "--http-cookie", ck)
	}
	for _, h := range c.Headers {
		args = append(args, "--http-header", h)
	}
	if c.Output != "" {
		args = append(args, "--output", c.Output)
	} else if c.Player != "" {
		args = append(args, "--player", c.Player)
	}
	if c.Debug {
		args = append(args, "--loglevel", "debug")
	}
	quality := c.Quality
	if quality == "" {
		quality = "best"
	}
	return append(args, c.URL, quality)
}

// Argv returns the program name followed by Args.
func (c LaunchCommand) Argv() []string {
	program := c.Program
	if program == "" {
		program = "streamlink"
	}
	return append([]string{program}, c.Args()...)
}

// FullGameCommand builds the invocation for a live or archived game, carrying
// the auth cookie, the media-auth cookie and the user agent.
func FullGameCommand(req PlaybackRequest, s LaunchSettings) LaunchCommand {
	c := baseCommand(req.StreamURL, req.RecordPath, s)
	c.NoSSLVerify = true
	c.Cookies = []string{"Authorization=" + req.AuthCookie, req.MediaAuth}
	c.Headers = []string{"User-Agent=" + req.UserAgent}
	return c
}

// HighlightCommand builds the invocation for a condensed game or recap.
func HighlightCommand(playbackURL, recordPath string, s LaunchSettings) LaunchCommand {
	c := baseCommand(playbackURL, recordPath, s)
	c.Highlight = true
	return c
}

func baseCommand(streamURL, recordPath string, s LaunchSettings) LaunchCommand {
	c := LaunchCommand{
		Program: s.Program,
		Debug:   s.Verbose,
		URL:     streamURL,
		Quality: s.Quality,
	}
	if recordPath != "" {
		c.Output = recordPath
	} else {
		c.Player = strings.TrimSpace(s.VideoPlayer)
	}
	return c
}

// Runner executes an argument vector and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands as child processes attached to the terminal.
type ExecRunner struct{}

// Run starts argv[0] with the remaining arguments and waits for it.
func (ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Launcher logs and runs launch commands.
type Launcher struct {
	runner Runner
	log    Logger
}

// NewLauncher builds a Launcher; a nil runner uses ExecRunner.
func NewLauncher(runner Runner, log Logger) *Launcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Launcher{runner: runner, log: orNop(log)}
}

// Launch runs c to completion and returns the argv it ran.
func (l *Launcher) Launch(ctx context.Context, c LaunchCommand) ([]string, error) {
	argv := c.Argv()
	if c.Highlight {
		l.log.Info("Playing highlight: " + strings.Join(argv, " "))
	} else {
		l.log.Info("Stream url: " + c.URL)
		l.log.Info("Playing: " + strings.Join(argv, " "))
	}
	if c.Output == "" && c.Player != "" {
		l.log.Debug("Using video_player: " + c.Player)
	}
	if err := l.runner.Run(ctx, argv); err != nil {
		return argv, fmt.Errorf("launch %s: %w", argv[0], err)
	}
	return argv, nil
}
