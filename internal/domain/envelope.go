package domain

import (
	"encoding/json"
	"fmt"
)

const (
	statusOK            = 1
	blackedOutStatus    = "BlackedOutStatus"
	notAuthorizedStatus = "NotAuthorizedStatus"
)

// mediaEnvelope is the media-service JSON response. Pointer fields are
// required on some paths; accessors turn absence into MalformedResponseError.
type mediaEnvelope struct {
	StatusCode        *int            `json:"status_code"`
	StatusMessage     string          `json:"status_message"`
	UserVerifiedEvent []verifiedEvent `json:"user_verified_event"`
	SessionInfo       *sessionInfo    `json:"session_info"`
	SessionKey        *string         `json:"session_key"`
}

type verifiedEvent struct {
	UserVerifiedContent []verifiedContent `json:"user_verified_content"`
}

type verifiedContent struct {
	UserVerifiedMediaItem []mediaItem `json:"user_verified_media_item"`
}

type mediaItem struct {
	BlackoutStatus *struct {
		Status string `json:"status"`
	} `json:"blackout_status"`
	AuthStatus *string `json:"auth_status"`
	URL        string  `json:"url"`
}

type sessionInfo struct {
	SessionAttributes []sessionAttribute `json:"sessionAttributes"`
}

type sessionAttribute struct {
	AttributeName  *string `json:"attributeName"`
	AttributeValue *string `json:"attributeValue"`
}

func decodeEnvelope(body []byte, httpStatus int) (mediaEnvelope, error) {
	var env mediaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return mediaEnvelope{}, &MalformedResponseError{Field: "body", Err: fmt.Errorf("http %d: %w", httpStatus, err)}
	}
	return env, nil
}

// checkStatus returns a ProviderError unless status_code is 1.
func (e mediaEnvelope) checkStatus() error {
	if e.StatusCode == nil {
		return &MalformedResponseError{Field: "status_code"}
	}
	if *e.StatusCode != statusOK {
		return &ProviderError{Code: *e.StatusCode, Message: e.StatusMessage}
	}
	return nil
}

func (e mediaEnvelope) firstMediaItem() (mediaItem, error) {
	if len(e.UserVerifiedEvent) == 0 {
		return mediaItem{}, &MalformedResponseError{Field: "user_verified_event[0]"}
	}
	content := e.UserVerifiedEvent[0].UserVerifiedContent
	if len(content) == 0 {
		return mediaItem{}, &MalformedResponseError{Field: "user_verified_event[0].user_verified_content[0]"}
	}
	items := content[0].UserVerifiedMediaItem
	if len(items) == 0 {
		return mediaItem{}, &MalformedResponseError{Field: "user_verified_event[0].user_verified_content[0].user_verified_media_item[0]"}
	}
	return items[0], nil
}

func (m mediaItem) blackedOut() (bool, error) {
	if m.BlackoutStatus == nil {
		return false, &MalformedResponseError{Field: "user_verified_media_item[0].blackout_status"}
	}
	return m.BlackoutStatus.Status == blackedOutStatus, nil
}

func (m mediaItem) notAuthorized() (bool, error) {
	if m.AuthStatus == nil {
		return false, &MalformedResponseError{Field: "user_verified_media_item[0].auth_status"}
	}
	return *m.AuthStatus == notAuthorizedStatus, nil
}

func (m mediaItem) streamURL() (string, error) {
	if m.URL == "" {
		return "", &MalformedResponseError{Field: "user_verified_media_item[0].url"}
	}
	return m.URL, nil
}

// mediaAuth formats the first session attribute as "name=value".
func (e mediaEnvelope) mediaAuth() (string, error) {
	if e.SessionInfo == nil {
		return "", &MalformedResponseError{Field: "session_info"}
	}
	if len(e.SessionInfo.SessionAttributes) == 0 {
		return "", &MalformedResponseError{Field: "session_info.sessionAttributes[0]"}
	}
	attr := e.SessionInfo.SessionAttributes[0]
	if attr.AttributeName == nil {
		return "", &MalformedResponseError{Field: "session_info.sessionAttributes[0].attributeName"}
	}
	if attr.AttributeValue == nil {
		return "", &MalformedResponseError{Field: "session_info.sessionAttributes[0].attributeValue"}
	}
	return *attr.AttributeName + "=" + *attr.AttributeValue, nil
}

func (e mediaEnvelope) sessionKey() (string, error) {
	if e.SessionKey == nil || *e.SessionKey == "" {
		return "", &MalformedResponseError{Field: "session_key"}
	}
	return *e.SessionKey, nil
}
