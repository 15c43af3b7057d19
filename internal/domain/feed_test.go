package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFeedTeamNotInGame(t *testing.T) {
	log := &recordingLogger{}
	for _, kind := range []FeedKind{"", FeedHome, FeedAway} {
		f, ok := SelectFeed(log, testGame(), "TOR", kind)
		assert.False(t, ok)
		assert.Equal(t, Feed{}, f)
	}
	assert.Empty(t, log.entries)
}

func TestSelectFeedNaturalSide(t *testing.T) {
	f, ok := SelectFeed(nil, testGame(), "NYY", "")
	require.True(t, ok)
	assert.Equal(t, "away-pb", f.MediaPlaybackID)
	assert.Equal(t, "ev-1", f.EventID)

	f, ok = SelectFeed(nil, testGame(), "BOS", "")
	require.True(t, ok)
	assert.Equal(t, "home-pb", f.MediaPlaybackID)
}

func TestSelectFeedExplicitKindWins(t *testing.T) {
	f, ok := SelectFeed(nil, testGame(), "NYY", FeedHome)
	require.True(t, ok)
	assert.Equal(t, "home-pb", f.MediaPlaybackID)
}

func TestSelectFeedFallsBackToFirstFeed(t *testing.T) {
	g := GameRecord{
		GamePk:     "1",
		AwayAbbrev: "NYY",
		HomeAbbrev: "BOS",
		Feeds: []Feed{
			{Kind: FeedNational, MediaPlaybackID: "nat-pb", EventID: "ev"},
			{Kind: FeedFrench, MediaPlaybackID: "fr-pb", EventID: "ev"},
		},
	}
	log := &recordingLogger{}
	f, ok := SelectFeed(log, g, "BOS", "")
	require.True(t, ok)
	assert.Equal(t, "nat-pb", f.MediaPlaybackID)
	assert.True(t, log.has("INFO", "choosing first available feed"))
	assert.True(t, log.has("INFO", "Chose 'national' feed (override with --feed option)"))
}

func TestSelectFeedUnavailableKind(t *testing.T) {
	log := &recordingLogger{}
	_, ok := SelectFeed(log, testGame(), "NYY", FeedFrench)
	assert.False(t, ok)
	assert.True(t, log.has("ERROR", "Feed is not available: french"))
}

func TestSelectFeedNoFeeds(t *testing.T) {
	log := &recordingLogger{}
	g := GameRecord{GamePk: "1", AwayAbbrev: "NYY", HomeAbbrev: "BOS"}
	_, ok := SelectFeed(log, g, "NYY", "")
	assert.False(t, ok)
	assert.True(t, log.has("ERROR", "Feed is not available"))
}

func TestResolveHighlight(t *testing.T) {
	u, err := ResolveHighlight(nil, testGame(), FeedCondensed)
	require.NoError(t, err)
	assert.Equal(t, "https://highlights.example/condensed.m3u8", u)

	log := &recordingLogger{}
	u, err = ResolveHighlight(log, testGame(), FeedRecap)
	require.NoError(t, err)
	assert.Empty(t, u)
	assert.True(t, log.has("ERROR", "No playback_url found for NYY vs BOS"))
}

func TestResolveHighlightInvalidKind(t *testing.T) {
	for _, kind := range []FeedKind{"", FeedHome, FeedAway, FeedFrench, FeedNational} {
		_, err := ResolveHighlight(nil, testGame(), kind)
		assert.ErrorIs(t, err, ErrInvalidFeedKind, "kind %q", kind)
	}
}
