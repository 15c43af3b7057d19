package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeedKind is the broadcast category of a game feed.
type FeedKind string

const (
	FeedHome      FeedKind = "home"
	FeedAway      FeedKind = "away"
	FeedFrench    FeedKind = "french"
	FeedNational  FeedKind = "national"
	FeedCondensed FeedKind = "condensed"
	FeedRecap     FeedKind = "recap"
)

var feedKinds = []FeedKind{FeedHome, FeedAway, FeedFrench, FeedNational, FeedCondensed, FeedRecap}

// ParseFeedKind validates s against the known feed kinds. An empty string
// yields the empty kind, meaning "not specified".
func ParseFeedKind(s string) (FeedKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, k := range feedKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown feed kind: %s", s)
}

// IsHighlight reports whether k is served as a direct playback URL rather
// than through the media-access session.
func (k FeedKind) IsHighlight() bool {
	return k == FeedCondensed || k == FeedRecap
}

// UnmarshalYAML rejects unknown kinds at load time.
func (k *FeedKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseFeedKind(s)
	if err != nil {
		return err
	}
	if parsed == "" {
		return fmt.Errorf("feed kind must not be empty (line %d)", value.Line)
	}
	*k = parsed
	return nil
}

// Feed is one broadcast of a game.
type Feed struct {
	Kind            FeedKind `yaml:"kind"`
	MediaPlaybackID string   `yaml:"mediaPlaybackId"`
	EventID         string   `yaml:"eventId"`
	// PlaybackURL is only set for highlight kinds.
	PlaybackURL string `yaml:"playbackUrl"`
}

// GameRecord identifies one scheduled contest. Feeds keeps provider order so
// the fallback feed choice is deterministic.
type GameRecord struct {
	GamePk     string `yaml:"gamePk"`
	AwayAbbrev string `yaml:"awayAbbrev"`
	HomeAbbrev string `yaml:"homeAbbrev"`
	// Favourite overrides the configured favourites list when set.
	Favourite *bool  `yaml:"favourite"`
	Feeds     []Feed `yaml:"feeds"`
}

// Feed returns the feed of the given kind.
func (g GameRecord) Feed(kind FeedKind) (Feed, bool) {
	for _, f := range g.Feeds {
		if f.Kind == kind {
			return f, true
		}
	}
	return Feed{}, false
}

// HasTeam reports whether team plays in g.
func (g GameRecord) HasTeam(team string) bool {
	return team == g.AwayAbbrev || team == g.HomeAbbrev
}

// GameDirectory is the set of games for one date.
type GameDirectory struct {
	Date  string       `yaml:"date"`
	Games []GameRecord `yaml:"games"`
}

// FindByTeam returns the first game involving team.
func (d GameDirectory) FindByTeam(team string) (GameRecord, bool) {
	for _, g := range d.Games {
		if g.HasTeam(team) {
			return g, true
		}
	}
	return GameRecord{}, false
}

// LoadGameDirectory reads a YAML (or JSON) game directory file.
func LoadGameDirectory(path string) (GameDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GameDirectory{}, err
	}
	var d GameDirectory
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return GameDirectory{}, fmt.Errorf("parse game directory %s: %w", path, err)
	}
	if err := d.validate(); err != nil {
		return GameDirectory{}, fmt.Errorf("game directory %s: %w", path, err)
	}
	return d, nil
}

func (d GameDirectory) validate() error {
	for i, g := range d.Games {
		if g.GamePk == "" || g.AwayAbbrev == "" || g.HomeAbbrev == "" {
			return fmt.Errorf("game %d: gamePk, awayAbbrev and homeAbbrev are required", i)
		}
		for _, f := range g.Feeds {
			// Live and archived feeds are only playable through the session API.
			if !f.Kind.IsHighlight() && (f.MediaPlaybackID == "" || f.EventID == "") {
				return fmt.Errorf("game %s: %s feed needs mediaPlaybackId and eventId", g.GamePk, f.Kind)
			}
		}
	}
	return nil
}

// IsFavourite reports whether g involves one of favs, unless the record
// carries an explicit favourite flag.
func IsFavourite(g GameRecord, favs []string) bool {
	if g.Favourite != nil {
		return *g.Favourite
	}
	for _, f := range favs {
		if g.HasTeam(f) {
			return true
		}
	}
	return false
}

// FilterFavourites returns the games involving a favourite team when filter is
// on and favs is non-empty; otherwise it returns games unchanged.
func FilterFavourites(games []GameRecord, favs []string, filter bool) []GameRecord {
	if !filter || len(favs) == 0 {
		return games
	}
	out := make([]GameRecord, 0, len(games))
	for _, g := range games {
		for _, f := range favs {
			if g.HasTeam(f) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
