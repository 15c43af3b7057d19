package domain

import (
	"errors"
	"fmt"
)

const (
	blackoutMessage = "The game you are trying to access is not currently available due to local " +
		"or national blackout restrictions.\n" +
		" Full game archives will be available 48 hours after completion of this game."
	notAuthorizedMessage = "You do not have an active subscription. To access this content please purchase a subscription."
)

var (
	// ErrInvalidFeedKind is a caller bug: highlights are condensed or recap.
	ErrInvalidFeedKind = errors.New("highlight: feed kind must be condensed or recap")
	ErrBlackedOut      = errors.New("game blacked out")
	ErrNotAuthorized   = errors.New("account not authorized")
	ErrNoGame          = errors.New("no game found")
	ErrNoPlaybackURL   = errors.New("no playback url")
)

// ProviderError carries the status_message of a rejected media-service call.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("error fetching stream: %s (status_code=%d)", e.Message, e.Code)
}

// MalformedResponseError names the first required response field that was
// missing or unusable.
type MalformedResponseError struct {
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed media-service response: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed media-service response: missing %s", e.Field)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// FatalError marks outcomes that end the run: no local retry can fix them.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is, or wraps, a FatalError.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

func fatal(err error) error {
	return &FatalError{Err: err}
}
