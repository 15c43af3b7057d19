package domain

import "fmt"

// SelectFeed picks the feed to play for team in game.
//
// An unspecified kind defaults to the team's own broadcast (away feed for the
// away side, home feed for the home side), then to the first feed the game
// lists. It reports false when team is not in the game or the chosen kind has
// no feed.
func SelectFeed(log Logger, game GameRecord, team string, requested FeedKind) (Feed, bool) {
	log = orNop(log)
	var side FeedKind
	switch team {
	case game.AwayAbbrev:
		side = FeedAway
	case game.HomeAbbrev:
		side = FeedHome
	default:
		return Feed{}, false
	}

	kind := requested
	if kind == "" {
		if _, ok := game.Feed(side); ok {
			kind = side
		}
	}
	if kind == "" {
		log.Info("Default (home/away) feed not found: choosing first available feed")
		if len(game.Feeds) > 0 {
			kind = game.Feeds[0].Kind
			log.Info(fmt.Sprintf("Chose '%s' feed (override with --feed option)", kind))
		}
	}
	feed, ok := game.Feed(kind)
	if !ok {
		log.Error(fmt.Sprintf("Feed is not available: %s", kind))
		return Feed{}, false
	}
	return feed, true
}

// ResolveHighlight returns the direct playback URL of a condensed or recap
// feed. A missing URL is reported as "" with a nil error.
func ResolveHighlight(log Logger, game GameRecord, kind FeedKind) (string, error) {
	if !kind.IsHighlight() {
		return "", ErrInvalidFeedKind
	}
	if f, ok := game.Feed(kind); ok && f.PlaybackURL != "" {
		return f.PlaybackURL, nil
	}
	orNop(log).Error(fmt.Sprintf("No playback_url found for %s vs %s", game.AwayAbbrev, game.HomeAbbrev))
	return "", nil
}
