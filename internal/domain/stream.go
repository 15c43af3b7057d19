package domain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"mlbstream/internal/netx"
)

// StreamSettings are the media-service request parameters.
type StreamSettings struct {
	MediaServiceURL  string
	PlaybackScenario string
	Platform         string
	// CDN is a preference name; see cdnName.
	CDN string
	// UserAgent is sent on provider API calls.
	UserAgent string
}

// Resolution is a playable stream URL plus the media-auth cookie required to
// fetch it. The zero value reports a handled failure.
type Resolution struct {
	StreamURL string
	MediaAuth string
}

// Empty reports whether no stream was resolved.
func (r Resolution) Empty() bool {
	return r.StreamURL == ""
}

type authAPI interface {
	AuthCookie() string
	SessionKey(ctx context.Context, gamePk, eventID, contentID, authCookie string) (string, error)
	UpdateSessionKey(key string) error
	Cookies() []*http.Cookie
}

// StreamResolver turns a feed into a Resolution through the media service.
type StreamResolver struct {
	net      *netx.Client
	auth     authAPI
	settings StreamSettings
	log      Logger
}

// NewStreamResolver wires a resolver to the shared client and auth collaborator.
func NewStreamResolver(net *netx.Client, auth authAPI, settings StreamSettings, log Logger) *StreamResolver {
	return &StreamResolver{net: net, auth: auth, settings: settings, log: orNop(log)}
}

// cdnName maps a CDN preference to the provider identifier, or "".
func cdnName(pref string) string {
	switch pref {
	case "akamai":
		return "MED2_AKAMAI_SECURE"
	case "level3":
		return "MED2_LEVEL3_SECURE"
	default:
		return ""
	}
}

// MediaRequestURL builds the media-access URL for contentID.
func (s StreamSettings) MediaRequestURL(contentID, sessionKey string) string {
	u := s.MediaServiceURL +
		"?contentId=" + contentID +
		"&playbackScenario=" + s.PlaybackScenario +
		"&platform=" + s.Platform +
		"&sessionKey=" + url.QueryEscape(sessionKey)
	if cdn := cdnName(s.CDN); cdn != "" {
		u += "&cdnName=" + cdn
	}
	return u
}

// Resolve runs the session pipeline for one feed.
//
// Not being logged in, getting no session key and a blackout reported while
// negotiating the session key return an empty Resolution and a nil error.
// A rejected or malformed media-access response, a blacked-out media item and
// a missing subscription return a FatalError, as does a failed request.
func (r *StreamResolver) Resolve(ctx context.Context, gamePk, contentID, eventID string) (Resolution, error) {
	authCookie := r.auth.AuthCookie()
	if authCookie == "" {
		r.log.Error("resolve stream: not logged in")
		return Resolution{}, nil
	}

	sessionKey, err := r.auth.SessionKey(ctx, gamePk, eventID, contentID, authCookie)
	if err != nil {
		return Resolution{}, err
	}
	switch sessionKey {
	case "":
		r.log.Warn("resolve stream: no session key")
		return Resolution{}, nil
	case BlackoutSessionKey:
		r.log.Info(ErrBlackedOut.Error() + ": " + blackoutMessage)
		return Resolution{}, nil
	}

	reqURL := r.settings.MediaRequestURL(contentID, sessionKey)
	r.log.Debug("media request: GET " + reqURL)
	status, body, err := r.net.Get(ctx, netx.Request{
		URL: reqURL,
		Headers: http.Header{
			"Accept":           []string{"*/*"},
			"Accept-Encoding":  []string{"identity"},
			"Accept-Language":  []string{"en-US,en;q=0.8"},
			"Connection":       []string{"keep-alive"},
			"Authorization":    []string{authCookie},
			"User-Agent":       []string{r.settings.UserAgent},
			"Proxy-Connection": []string{"keep-alive"},
		},
		Cookies: r.auth.Cookies(),
	})
	if err != nil {
		return Resolution{}, fatal(fmt.Errorf("media request: %w", err))
	}

	env, err := decodeEnvelope(body, status)
	if err != nil {
		return Resolution{}, fatal(err)
	}
	if err := env.checkStatus(); err != nil {
		return Resolution{}, fatal(err)
	}
	res, newKey, err := resolutionFrom(env)
	if err != nil {
		return Resolution{}, fatal(err)
	}
	if err := r.auth.UpdateSessionKey(newKey); err != nil {
		r.log.Warn(fmt.Sprintf("could not persist session key: %v", err))
	}
	r.log.Debug("stream url: " + res.StreamURL)
	r.log.Debug("media auth: " + res.MediaAuth)
	return res, nil
}

// resolutionFrom reads the terminal state of a status_code=1 envelope.
func resolutionFrom(env mediaEnvelope) (Resolution, string, error) {
	item, err := env.firstMediaItem()
	if err != nil {
		return Resolution{}, "", err
	}
	out, err := item.blackedOut()
	if err != nil {
		return Resolution{}, "", err
	}
	if out {
		return Resolution{}, "", fmt.Errorf("%w: %s", ErrBlackedOut, blackoutMessage)
	}
	denied, err := item.notAuthorized()
	if err != nil {
		return Resolution{}, "", err
	}
	if denied {
		return Resolution{}, "", fmt.Errorf("%w: %s", ErrNotAuthorized, notAuthorizedMessage)
	}
	streamURL, err := item.streamURL()
	if err != nil {
		return Resolution{}, "", err
	}
	mediaAuth, err := env.mediaAuth()
	if err != nil {
		return Resolution{}, "", err
	}
	key, err := env.sessionKey()
	if err != nil {
		return Resolution{}, "", err
	}
	return Resolution{StreamURL: streamURL, MediaAuth: mediaAuth}, key, nil
}
