package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultMediaServiceURL  = "https://mf.svc.nhl.com/ws/media/mf/v2.4/stream"
	defaultPlaybackScenario = "HTTP_CLOUD_WIRED_60"
	defaultPlatform         = "IPHONE"
	defaultSvcUserAgent     = "NHL/11779 CFNetwork/808.3 Darwin/16.3.0"
	defaultIPhoneUserAgent  = "AppleCoreMedia/1.0.0.15B202 (iPhone; U; CPU OS 11_1_2 like Mac OS X; en_us)"
)

// Config defines runtime settings loaded from YAML.
type Config struct {
	// MediaServiceURL is the provider media-access endpoint.
	MediaServiceURL string `yaml:"mf_svc_url"`
	// PlaybackScenario and Platform are sent verbatim on media-access requests.
	PlaybackScenario string `yaml:"playback_scenario"`
	Platform         string `yaml:"platform"`
	// CDN is the preferred CDN name: akamai, level3 or empty.
	CDN string `yaml:"cdn"`
	// SvcUserAgent is used for provider API calls, IPhoneUserAgent for streamlink.
	SvcUserAgent    string `yaml:"svc_user_agent"`
	IPhoneUserAgent string `yaml:"ua_iphone"`
	// VideoPlayer is passed to streamlink with --player when not recording.
	VideoPlayer string `yaml:"video_player"`
	// Resolution is the streamlink quality token.
	Resolution string `yaml:"resolution"`
	// VerifySSL toggles TLS certificate verification. Nil means true.
	VerifySSL *bool `yaml:"verify_ssl"`
	Debug     bool  `yaml:"debug"`
	Verbose   bool  `yaml:"verbose"`
	// Favs is a comma separated list of team codes.
	Favs   string `yaml:"favs"`
	Filter bool   `yaml:"filter"`
	// Dir is the working directory for the session file and playlist dumps.
	Dir string `yaml:"dir"`
	// Streamlink is the launcher executable.
	Streamlink  string `yaml:"streamlink"`
	SessionFile string `yaml:"session_file"`
	GamesFile   string `yaml:"games_file"`
	// Timeout bounds each HTTP request, e.g. "30s".
	Timeout time.Duration `yaml:"timeout"`
	// Retries enables retrying transient HTTP failures. Zero disables it.
	Retries int `yaml:"retries"`
}

// TLSVerify reports whether TLS certificates must be verified.
func (c Config) TLSVerify() bool {
	return c.VerifySSL == nil || *c.VerifySSL
}

// Favourites returns the trimmed, non-empty entries of Favs.
func (c Config) Favourites() []string {
	out := make([]string, 0)
	for _, f := range strings.Split(c.Favs, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Load reads, validates, and normalizes config from a YAML file path.
//
// A `.env` file in the working directory is loaded first when present, and
// MLBSTREAM_* environment variables override the matching YAML keys.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, err
	}
	if err := overrideFromEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.normalize(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns a normalized config without reading any file.
func Default() Config {
	var c Config
	_ = c.normalize()
	return c
}

func (c *Config) normalize() error {
	// Keep defaults centralized so callers can rely on normalized values.
	if c.MediaServiceURL == "" {
		c.MediaServiceURL = defaultMediaServiceURL
	}
	if c.PlaybackScenario == "" {
		c.PlaybackScenario = defaultPlaybackScenario
	}
	if c.Platform == "" {
		c.Platform = defaultPlatform
	}
	if c.SvcUserAgent == "" {
		c.SvcUserAgent = defaultSvcUserAgent
	}
	if c.IPhoneUserAgent == "" {
		c.IPhoneUserAgent = defaultIPhoneUserAgent
	}
	if c.Resolution == "" {
		c.Resolution = "best"
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Streamlink == "" {
		c.Streamlink = "streamlink"
	}
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(c.Dir, "session.json")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retries < 0 {
		return fmt.Errorf("config `retries` must not be negative")
	}
	c.CDN = strings.ToLower(strings.TrimSpace(c.CDN))
	return nil
}

func overrideFromEnv(c *Config) error {
	if v := os.Getenv("MLBSTREAM_CDN"); v != "" {
		c.CDN = v
	}
	if v := os.Getenv("MLBSTREAM_RESOLUTION"); v != "" {
		c.Resolution = v
	}
	if v := os.Getenv("MLBSTREAM_VIDEO_PLAYER"); v != "" {
		c.VideoPlayer = v
	}
	if v := os.Getenv("MLBSTREAM_VERIFY_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MLBSTREAM_VERIFY_SSL: %w", err)
		}
		c.VerifySSL = &b
	}
	return nil
}
