package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"rsc.io/getopt"
)

// Args holds the parsed command line.
type Args struct {
	ConfigPath    string
	Team          string
	Feed          string
	Date          string
	GamesFile     string
	SetAuthCookie string
	// SetCookies are provider cookies given as "name=value".
	SetCookies []string
	Record        bool
	Debug         bool
	Verbose       bool
}

// ErrUsage is returned when required arguments are missing.
var ErrUsage = errors.New("usage: mlbstream [OPTIONS...] --team <CODE>")

// ParseArgs parses argv with short and long aliases.
//
// The config path falls back to `config.yaml`. A team is required unless the
// invocation only stores an auth cookie.
func ParseArgs(argv []string, usage io.Writer) (Args, error) {
	var a Args
	fs := getopt.NewFlagSet("mlbstream", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.StringVar(&a.ConfigPath, "c", "config.yaml", "Config file path")
	fs.StringVar(&a.Team, "t", "", "Team code to play, e.g. NYY")
	fs.StringVar(&a.Feed, "f", "", "Feed kind: home, away, french, national, condensed or recap")
	fs.StringVar(&a.Date, "d", "", "Game date (YYYY-MM-DD), used for recording names")
	fs.StringVar(&a.GamesFile, "g", "", "Game directory file (overrides games_file)")
	fs.BoolVar(&a.Record, "r", false, "Record to a file instead of playing")
	fs.BoolVar(&a.Verbose, "v", false, "Pass --loglevel debug to streamlink")
	fs.BoolVar(&a.Debug, "debug", false, "Debug logging and playlist dump")
	fs.StringVar(&a.SetAuthCookie, "set-auth-cookie", "", "Store an authorization cookie in the session file and exit")
	fs.Var((*cookieList)(&a.SetCookies), "set-cookie", "Store a provider cookie (name=value, repeatable) in the session file and exit")
	fs.Aliases(
		"c", "config",
		"t", "team",
		"f", "feed",
		"d", "date",
		"g", "games",
		"r", "record",
		"v", "verbose",
	)
	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}
	if fs.NArg() > 0 {
		return Args{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if a.Team == "" && !a.StoresSession() {
		fmt.Fprintln(usage, ErrUsage.Error())
		fs.PrintDefaults()
		return Args{}, ErrUsage
	}
	return a, nil
}

// StoresSession reports whether the invocation only updates the session file.
func (a Args) StoresSession() bool {
	return a.SetAuthCookie != "" || len(a.SetCookies) > 0
}

type cookieList []string

func (c *cookieList) String() string {
	if c == nil {
		return ""
	}
	return strings.Join(*c, ",")
}

func (c *cookieList) Set(v string) error {
	if name, _, ok := strings.Cut(v, "="); !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("cookie must be name=value: %s", v)
	}
	*c = append(*c, v)
	return nil
}

// Exit terminates the process with the given exit code.
func Exit(code int) {
	os.Exit(code)
}
