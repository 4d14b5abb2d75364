package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/knugget/coordinator/pkg/saves"
	"github.com/knugget/coordinator/pkg/session"
)

// Client talks to the knugget backend API.
// Zero value is not usable; use New to create instances.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a backend API client from the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidBaseURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	c := &Client{
		baseURL: base,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// refreshResponse is the payload of a successful token refresh.
type refreshResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    int64       `json:"expiresAt"`
	User         refreshUser `json:"user"`
}

type refreshUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
	Plan    string `json:"plan"`
}

// Refresh exchanges a refresh token for a new credential set.
//
// A 401 or 403 answer means the refresh token itself was rejected and is
// reported as session.ErrRefreshRejected; the caller should treat the
// session as dead. Any other failure, including network errors, leaves
// open the possibility that the token is still good.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*session.Candidate, error) {
	body := map[string]string{"refreshToken": refreshToken}

	var data refreshResponse
	status, err := c.do(ctx, http.MethodPost, "/auth/refresh", "", body, &data)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", session.ErrRefreshRejected, err)
		}
		return nil, err
	}

	candidate := &session.Candidate{
		AccessToken:  data.Token,
		RefreshToken: data.RefreshToken,
		User: session.User{
			ID:          data.User.ID,
			DisplayName: data.User.Name,
			Email:       data.User.Email,
			Credits:     data.User.Credits,
			Plan:        session.Plan(data.User.Plan),
		},
	}
	if data.ExpiresAt > 0 {
		candidate.ExpiresAt = time.UnixMilli(data.ExpiresAt)
	}
	return candidate, nil
}

// submitResponse is the payload of a successful content submission.
type submitResponse struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"savedAt"`
}

// SubmitRecord delivers one saved record to the backend, routed by source
// kind. Rejected credentials (401/403) are reported as
// saves.ErrUnauthorized so the queue can keep the record pending instead
// of retrying with a dead token.
func (c *Client) SubmitRecord(ctx context.Context, accessToken string, record saves.Record) (*saves.Remote, error) {
	var path string
	switch record.SourceKind {
	case saves.SourceYouTube:
		path = "/summary/save"
	case saves.SourceLinkedIn:
		path = "/linkedin/posts"
	default:
		path = "/posts"
	}

	var data submitResponse
	status, err := c.do(ctx, http.MethodPost, path, accessToken, record.Payload, &data)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", saves.ErrUnauthorized, err)
		}
		return nil, err
	}

	return &saves.Remote{ID: data.ID, SavedAt: data.SavedAt}, nil
}

// SummaryRequest carries the transcript material for summary generation.
type SummaryRequest struct {
	VideoID     string   `json:"videoId"`
	Title       string   `json:"title"`
	ChannelName string   `json:"channelName"`
	URL         string   `json:"url,omitempty"`
	Transcript  []string `json:"transcript"`
}

// Summary is a generated or previously stored video summary.
type Summary struct {
	ID          string   `json:"id,omitempty"`
	VideoID     string   `json:"videoId,omitempty"`
	Title       string   `json:"title"`
	KeyPoints   []string `json:"keyPoints"`
	FullSummary string   `json:"fullSummary"`
	Tags        []string `json:"tags,omitempty"`
}

// GenerateSummary asks the backend to summarize a video transcript.
func (c *Client) GenerateSummary(ctx context.Context, accessToken string, req SummaryRequest) (*Summary, error) {
	var data Summary
	status, err := c.do(ctx, http.MethodPost, "/summary/generate", accessToken, req, &data)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", saves.ErrUnauthorized, err)
		}
		return nil, err
	}
	return &data, nil
}

// GetSummaryByVideoID looks up a previously generated summary. A missing
// summary is not an error: it returns (nil, nil) on 404.
func (c *Client) GetSummaryByVideoID(ctx context.Context, accessToken, videoID string) (*Summary, error) {
	var data Summary
	status, err := c.do(ctx, http.MethodGet, "/summary/video/"+url.PathEscape(videoID), accessToken, nil, &data)
	if err != nil {
		switch status {
		case http.StatusNotFound:
			return nil, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %w", saves.ErrUnauthorized, err)
		}
		return nil, err
	}
	return &data, nil
}

// Healthy reports whether the backend answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// do executes one JSON request and decodes the enveloped response into
// out. It returns the HTTP status code alongside the error so callers can
// map specific codes onto sentinel errors.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("apiclient: marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %s", ErrRequestFailed, method, path, errorMessage(resp.StatusCode, raw))
	}

	if out == nil {
		return resp.StatusCode, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode response: %w", ErrRequestFailed, err)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode response data: %w", ErrRequestFailed, err)
		}
	}
	return resp.StatusCode, nil
}

// errorMessage extracts a readable failure reason from an error response,
// falling back to the status code.
func errorMessage(status int, raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return fmt.Sprintf("http %d", status)
}
