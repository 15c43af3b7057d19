// Package session holds the viewing-session state shared by the auth
// collaborator and the stream resolver: the authorization cookie, the provider
// cookies and the rotating session key.
package session

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// Cookie is a persisted name/value cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// State is the persisted session document.
type State struct {
	AuthCookie string   `json:"authCookie,omitempty"`
	Cookies    []Cookie `json:"cookies,omitempty"`
	SessionKey string   `json:"sessionKey,omitempty"`
	// SessionKeyTime is when SessionKey was last stored, in unix ms.
	SessionKeyTime int64 `json:"sessionKeyTime,omitempty"`
}

// Store guards one State and optionally persists it to a JSON file.
//
// Concurrent processes sharing a file get last-writer-wins semantics.
type Store struct {
	path     string
	loadOnce sync.Once
	mu       sync.Mutex
	state    State
	now      func() time.Time
}

// NewFileStore returns a Store backed by path. The file is read lazily on
// first access; a missing or malformed file yields an empty state.
func NewFileStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewMemoryStore returns a Store that never touches disk.
func NewMemoryStore(initial State) *Store {
	s := &Store{state: initial, now: time.Now}
	s.loadOnce.Do(func() {})
	return s
}

// Path returns the backing file, or "" for memory stores.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.state
	cp.Cookies = append([]Cookie(nil), s.state.Cookies...)
	return cp
}

// AuthCookie returns the authorization cookie, or "" when not logged in.
func (s *Store) AuthCookie() string {
	return s.Snapshot().AuthCookie
}

// SetAuthCookie stores the authorization cookie and persists the state.
func (s *Store) SetAuthCookie(value string) error {
	s.ensureLoaded()
	s.mu.Lock()
	s.state.AuthCookie = value
	s.mu.Unlock()
	return s.save()
}

// SetCookie adds or replaces a provider cookie and persists the state.
func (s *Store) SetCookie(name, value string) error {
	s.ensureLoaded()
	s.mu.Lock()
	replaced := false
	for i := range s.state.Cookies {
		if s.state.Cookies[i].Name == name {
			s.state.Cookies[i].Value = value
			replaced = true
		}
	}
	if !replaced {
		s.state.Cookies = append(s.state.Cookies, Cookie{Name: name, Value: value})
	}
	s.mu.Unlock()
	return s.save()
}

// Cookies returns the provider cookies for request decoration.
func (s *Store) Cookies() []*http.Cookie {
	st := s.Snapshot()
	out := make([]*http.Cookie, 0, len(st.Cookies))
	for _, c := range st.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SessionKey returns the stored session key and when it was stored.
func (s *Store) SessionKey() (string, time.Time) {
	st := s.Snapshot()
	if st.SessionKey == "" {
		return "", time.Time{}
	}
	return st.SessionKey, time.UnixMilli(st.SessionKeyTime)
}

// UpdateSessionKey replaces the session key and persists the state.
func (s *Store) UpdateSessionKey(key string) error {
	s.ensureLoaded()
	s.mu.Lock()
	s.state.SessionKey = key
	s.state.SessionKeyTime = s.now().UnixMilli()
	s.mu.Unlock()
	return s.save()
}

func (s *Store) ensureLoaded() {
	s.loadOnce.Do(func() {
		if s.path == "" {
			return
		}
		raw, err := os.ReadFile(s.path)
		if err != nil {
			// Missing/unreadable session is the logged-out state.
			return
		}
		var st State
		if err := json.Unmarshal(raw, &st); err != nil {
			return
		}
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	})
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	b, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(s.path, b, 0o600)
}
