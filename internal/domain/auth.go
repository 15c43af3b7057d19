package domain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mlbstream/internal/netx"
	"mlbstream/internal/session"
)

// BlackoutSessionKey is the session-key value meaning the game is blacked out.
const BlackoutSessionKey = "blackout"

// sessionKeyMaxAge bounds reuse of a stored session key.
const sessionKeyMaxAge = 24 * time.Hour

// AuthClient exposes the session operations the stream resolver consumes:
// the authorization cookie, the provider cookies and the rotating session key.
// Acquiring the cookie in the first place (login) is not its job.
type AuthClient struct {
	net      *netx.Client
	store    *session.Store
	settings StreamSettings
	log      Logger
	now      func() time.Time
}

// NewAuthClient builds an AuthClient over a session store.
func NewAuthClient(net *netx.Client, store *session.Store, settings StreamSettings, log Logger) *AuthClient {
	return &AuthClient{
		net:      net,
		store:    store,
		settings: settings,
		log:      orNop(log),
		now:      time.Now,
	}
}

// AuthCookie returns the authorization cookie, or "" when not logged in.
func (a *AuthClient) AuthCookie() string {
	return a.store.AuthCookie()
}

// Cookies returns the provider cookies stored with the session.
func (a *AuthClient) Cookies() []*http.Cookie {
	return a.store.Cookies()
}

// UpdateSessionKey stores a rotated session key.
func (a *AuthClient) UpdateSessionKey(key string) error {
	return a.store.UpdateSessionKey(key)
}

// SessionKey returns a session key for the requested content.
//
// A stored key younger than a day is reused. Otherwise the media service is
// asked for the event's coverage: a blacked-out media item yields
// BlackoutSessionKey, an envelope without a key yields "", and a new key is
// stored before being returned. A failed request or rejected envelope is
// fatal.
func (a *AuthClient) SessionKey(ctx context.Context, gamePk, eventID, contentID, authCookie string) (string, error) {
	if key, at := a.store.SessionKey(); key != "" && a.now().Sub(at) < sessionKeyMaxAge {
		a.log.Debug("reusing stored session key")
		return key, nil
	}

	u := fmt.Sprintf("%s?contentId=%s&eventId=%s&format=json&platform=%s&subject=LIVE_EVENT_COVERAGE",
		a.settings.MediaServiceURL, contentID, eventID, a.settings.Platform)
	a.log.Debug(fmt.Sprintf("session key request for game %s: %s", gamePk, u))
	status, body, err := a.net.Get(ctx, netx.Request{
		URL: u,
		Headers: http.Header{
			"Accept":          []string{"application/json"},
			"Accept-Encoding": []string{"identity"},
			"Accept-Language": []string{"en-US,en;q=0.8"},
			"Connection":      []string{"keep-alive"},
			"Authorization":   []string{authCookie},
			"User-Agent":      []string{a.settings.UserAgent},
		},
		Cookies: a.store.Cookies(),
	})
	if err != nil {
		return "", fatal(fmt.Errorf("session key request: %w", err))
	}
	env, err := decodeEnvelope(body, status)
	if err != nil {
		return "", fatal(err)
	}
	if err := env.checkStatus(); err != nil {
		return "", fatal(err)
	}
	if item, err := env.firstMediaItem(); err == nil {
		out, err := item.blackedOut()
		if err != nil {
			return "", fatal(err)
		}
		if out {
			return BlackoutSessionKey, nil
		}
	}
	key, err := env.sessionKey()
	if err != nil {
		a.log.Warn(fmt.Sprintf("no session key: %v", err))
		return "", nil
	}
	if err := a.store.UpdateSessionKey(key); err != nil {
		a.log.Warn(fmt.Sprintf("could not persist session key: %v", err))
	}
	return key, nil
}
