package domain

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/grafov/m3u8"

	"mlbstream/internal/netx"
	"mlbstream/internal/util"
)

type cookieSource interface {
	Cookies() []*http.Cookie
}

// PlaylistDumper saves the raw stream manifest for diagnostics.
type PlaylistDumper struct {
	net       *netx.Client
	cookies   cookieSource
	dir       string
	userAgent string
	log       Logger
	now       func() time.Time
}

// NewPlaylistDumper writes dumps into dir.
func NewPlaylistDumper(net *netx.Client, cookies cookieSource, dir, userAgent string, log Logger) *PlaylistDumper {
	return &PlaylistDumper{net: net, cookies: cookies, dir: dir, userAgent: userAgent, log: orNop(log), now: time.Now}
}

// Dump fetches streamURL with the media-auth cookie and writes the body
// verbatim to <dir>/playlist-<YYYY-MM-DD>.m3u8, replacing an earlier dump of
// the same day. It returns the written path.
func (d *PlaylistDumper) Dump(ctx context.Context, streamURL, mediaAuth string) (string, error) {
	var cookies []*http.Cookie
	if d.cookies != nil {
		cookies = d.cookies.Cookies()
	}
	d.log.Debug("playlist request: GET " + streamURL)
	status, body, err := d.net.Get(ctx, netx.Request{
		URL: streamURL,
		Headers: http.Header{
			"Accept":          []string{"*/*"},
			"Accept-Encoding": []string{"identity"},
			"Accept-Language": []string{"en-US,en;q=0.8"},
			"Connection":      []string{"keep-alive"},
			"User-Agent":      []string{d.userAgent},
			"Cookie":          []string{mediaAuth},
		},
		Cookies: cookies,
	})
	if err != nil {
		return "", fmt.Errorf("playlist request: %w", err)
	}
	if status < 200 || status >= 300 {
		d.log.Warn(fmt.Sprintf("playlist request returned %d; saving body anyway", status))
	}
	d.describe(body)

	path := filepath.Join(d.dir, util.PlaylistFileName(util.FormatDate(d.now())))
	d.log.Debug("writing playlist to: " + path)
	if err := writeFileAtomic(path, body); err != nil {
		return "", err
	}
	return path, nil
}

// describe logs what kind of playlist the manifest is.
func (d *PlaylistDumper) describe(body []byte) {
	p, _, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		d.log.Debug(fmt.Sprintf("playlist is not a parsable m3u8: %v", err))
		return
	}
	switch pl := p.(type) {
	case *m3u8.MasterPlaylist:
		d.log.Debug(fmt.Sprintf("master playlist with %d variants", len(pl.Variants)))
	case *m3u8.MediaPlaylist:
		d.log.Debug(fmt.Sprintf("media playlist with %d segments", pl.Count()))
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create playlist dir: %w", err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending playlist file: %w", err)
	}
	// No-op once the file has been committed.
	defer func() { _ = pending.Cleanup() }()
	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace playlist file: %w", err)
	}
	return nil
}
