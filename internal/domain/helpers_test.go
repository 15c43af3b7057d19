package domain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mlbstream/internal/netx"
)

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(msg string) { l.entries = append(l.entries, "DEBUG "+msg) }
func (l *recordingLogger) Info(msg string)  { l.entries = append(l.entries, "INFO "+msg) }
func (l *recordingLogger) Warn(msg string)  { l.entries = append(l.entries, "WARN "+msg) }
func (l *recordingLogger) Error(msg string) { l.entries = append(l.entries, "ERROR "+msg) }

func (l *recordingLogger) has(prefix, substr string) bool {
	for _, e := range l.entries {
		if strings.HasPrefix(e, prefix+" ") && strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

type fakeAuth struct {
	cookie   string
	key      string
	keyErr   error
	updated  []string
	cookies  []*http.Cookie
	keyCalls int
}

func (f *fakeAuth) AuthCookie() string { return f.cookie }

func (f *fakeAuth) SessionKey(ctx context.Context, gamePk, eventID, contentID, authCookie string) (string, error) {
	f.keyCalls++
	if f.keyErr != nil {
		return "", f.keyErr
	}
	return f.key, nil
}

func (f *fakeAuth) UpdateSessionKey(key string) error {
	f.updated = append(f.updated, key)
	return nil
}

func (f *fakeAuth) Cookies() []*http.Cookie { return f.cookies }

// newMockNetClient starts a TLS server for handler and returns a client that
// trusts it along with the server's base URL.
func newMockNetClient(t *testing.T, handler http.HandlerFunc) (*netx.Client, string) {
	t.Helper()
	s := httptest.NewTLSServer(handler)
	t.Cleanup(s.Close)
	hc := s.Client()
	hc.Timeout = 2 * time.Second
	return netx.NewClientWithHTTPClient(hc, netx.RetryOptions{Retries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}), s.URL
}

func testGame() GameRecord {
	return GameRecord{
		GamePk:     "717465",
		AwayAbbrev: "NYY",
		HomeAbbrev: "BOS",
		Feeds: []Feed{
			{Kind: FeedHome, MediaPlaybackID: "home-pb", EventID: "ev-1"},
			{Kind: FeedAway, MediaPlaybackID: "away-pb", EventID: "ev-1"},
			{Kind: FeedCondensed, PlaybackURL: "https://highlights.example/condensed.m3u8"},
			{Kind: FeedRecap},
		},
	}
}

const successEnvelope = `{
  "status_code": 1,
  "status_message": "Success",
  "user_verified_event": [{
    "user_verified_content": [{
      "user_verified_media_item": [{
        "blackout_status": {"status": "SuccessStatus"},
        "auth_status": "SuccessStatus",
        "url": "https://cdn.example/master.m3u8"
      }]
    }]
  }],
  "session_info": {"sessionAttributes": [{"attributeName": "mediaAuth_v2", "attributeValue": "abc123"}]},
  "session_key": "rotated-key"
}`
