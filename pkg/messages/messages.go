package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type tags one protocol frame. The set below is the whole protocol.
type Type string

const (
	// Inbound, from page contexts on allowed sites.
	TypeCheckAuthStatus Type = "CHECK_AUTH_STATUS"
	TypeLogout          Type = "LOGOUT"
	TypeSaveContent     Type = "SAVE_CONTENT"
	TypeGenerateSummary Type = "GENERATE_SUMMARY"
	TypeCheckSummary    Type = "CHECK_SUMMARY"

	// Inbound, from trusted web-app origins only.
	TypeExternalAuthSuccess Type = "EXTERNAL_AUTH_SUCCESS"
	TypeExternalLogout      Type = "EXTERNAL_LOGOUT"

	// Outbound broadcast.
	TypeAuthChanged Type = "AUTH_CHANGED"
)

var knownTypes = map[Type]struct{}{
	TypeCheckAuthStatus:     {},
	TypeLogout:              {},
	TypeSaveContent:         {},
	TypeGenerateSummary:     {},
	TypeCheckSummary:        {},
	TypeExternalAuthSuccess: {},
	TypeExternalLogout:      {},
	TypeAuthChanged:         {},
}

// External reports whether the type is only accepted from trusted web-app
// origins and must pass the origin gate.
func (t Type) External() bool {
	return t == TypeExternalAuthSuccess || t == TypeExternalLogout
}

// Envelope is one protocol frame: a type tag and the type-specific payload.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds an envelope with the given payload marshaled in place.
func New(t Type, payload any) (Envelope, error) {
	env := Envelope{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("messages: marshal payload for %s: %w", t, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Decode parses one frame and enforces the closed type set.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	if _, ok := knownTypes[env.Type]; !ok {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return env, nil
}

// DecodePayload strictly decodes the envelope's payload into v. Unknown
// fields are rejected so shape drift between client and coordinator
// surfaces immediately.
func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: %s carries no payload", ErrMalformedPayload, e.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(e.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedPayload, e.Type, err)
	}
	return nil
}

// UserInfo is the user profile as it travels on the wire.
type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Credits int    `json:"credits,omitempty"`
	Plan    string `json:"plan,omitempty"`
}

// ExternalAuth is the payload of EXTERNAL_AUTH_SUCCESS: a full credential
// set handed over by the web app after login. ExpiresAt is Unix
// milliseconds; zero means the coordinator applies its default lifetime.
type ExternalAuth struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         UserInfo `json:"user"`
	ExpiresAt    int64    `json:"expiresAt,omitempty"`
}

// SaveContent is the payload of SAVE_CONTENT: one extracted piece of page
// content to persist and deliver.
type SaveContent struct {
	SourceKind string            `json:"sourceKind"`
	SourceID   string            `json:"sourceId,omitempty"`
	Title      string            `json:"title,omitempty"`
	Author     string            `json:"author,omitempty"`
	Content    string            `json:"content,omitempty"`
	URL        string            `json:"url,omitempty"`
	Engagement map[string]int    `json:"engagement,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// GenerateSummary is the payload of GENERATE_SUMMARY.
type GenerateSummary struct {
	VideoID     string   `json:"videoId"`
	Title       string   `json:"title,omitempty"`
	ChannelName string   `json:"channelName,omitempty"`
	URL         string   `json:"url,omitempty"`
	Transcript  []string `json:"transcript,omitempty"`
}

// CheckSummary is the payload of CHECK_SUMMARY.
type CheckSummary struct {
	VideoID string `json:"videoId"`
}

// AuthChanged is the payload of the AUTH_CHANGED broadcast.
type AuthChanged struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *UserInfo `json:"user,omitempty"`
}

// Result is the direct reply to an inbound frame.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK builds a successful Result with the given data marshaled in place.
func OK(data any) (Result, error) {
	res := Result{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Result{}, fmt.Errorf("messages: marshal result data: %w", err)
		}
		res.Data = raw
	}
	return res, nil
}

// Fail builds a failed Result carrying the error text.
func Fail(err error) Result {
	res := Result{Success: false}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
