package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/knugget/coordinator/pkg/apiclient"
	"github.com/knugget/coordinator/pkg/logger"
	"github.com/knugget/coordinator/pkg/messages"
	"github.com/knugget/coordinator/pkg/saves"
	"github.com/knugget/coordinator/pkg/session"
)

// SessionManager is the slice of the session manager the router needs.
type SessionManager interface {
	IsAuthenticated() bool
	CurrentUser() *session.User
	AccessToken() string
	RefreshDue() bool
	Refresh(ctx context.Context) bool
	ApplyExternalLogin(ctx context.Context, candidate session.Candidate) error
	Logout(ctx context.Context) error
}

// SaveQueue accepts save requests from page contexts.
type SaveQueue interface {
	Submit(ctx context.Context, payload saves.Payload, kind saves.SourceKind) (*saves.Result, error)
}

// SummaryService proxies summary generation and lookup to the backend.
type SummaryService interface {
	GenerateSummary(ctx context.Context, accessToken string, req apiclient.SummaryRequest) (*apiclient.Summary, error)
	GetSummaryByVideoID(ctx context.Context, accessToken, videoID string) (*apiclient.Summary, error)
}

// OriginGate authorizes senders of external auth frames.
type OriginGate interface {
	Require(rawURL string) error
}

var (
	// ErrOutboundOnly is returned when a client sends a broadcast-only type.
	ErrOutboundOnly = errors.New("handler.outbound_only")

	// ErrUnknownSourceKind is returned for a SAVE_CONTENT frame naming a
	// source kind outside the supported set.
	ErrUnknownSourceKind = errors.New("handler.unknown_source_kind")
)

// Router dispatches inbound frames to the coordinator's components.
type Router struct {
	sessions  SessionManager
	queue     SaveQueue
	summaries SummaryService
	gate      OriginGate
	logger    *slog.Logger
}

// NewRouter creates a frame router. All four dependencies are required.
func NewRouter(sessions SessionManager, queue SaveQueue, summaries SummaryService, gate OriginGate, log *slog.Logger) (*Router, error) {
	if sessions == nil || queue == nil || summaries == nil || gate == nil {
		return nil, errors.New("handler: router requires sessions, queue, summaries and gate")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		sessions:  sessions,
		queue:     queue,
		summaries: summaries,
		gate:      gate,
		logger:    log,
	}, nil
}

// Handle processes one decoded frame from the given sender origin and
// returns the direct reply. External auth types are origin-gated before
// any state changes; a rejected sender mutates nothing.
func (r *Router) Handle(ctx context.Context, senderOrigin string, env messages.Envelope) messages.Result {
	if env.Type.External() {
		if err := r.gate.Require(senderOrigin); err != nil {
			r.logger.WarnContext(ctx, "rejected external frame",
				logger.MessageType(string(env.Type)),
				logger.Origin(senderOrigin))
			return messages.Fail(err)
		}
	}

	switch env.Type {
	case messages.TypeCheckAuthStatus:
		return r.handleCheckAuthStatus(ctx)
	case messages.TypeLogout, messages.TypeExternalLogout:
		return r.handleLogout(ctx)
	case messages.TypeExternalAuthSuccess:
		return r.handleExternalAuth(ctx, env)
	case messages.TypeSaveContent:
		return r.handleSaveContent(ctx, env)
	case messages.TypeGenerateSummary:
		return r.handleGenerateSummary(ctx, env)
	case messages.TypeCheckSummary:
		return r.handleCheckSummary(ctx, env)
	default:
		return messages.Fail(fmt.Errorf("%w: %s", ErrOutboundOnly, env.Type))
	}
}

func (r *Router) handleCheckAuthStatus(ctx context.Context) messages.Result {
	// An almost-expired credential is refreshed before reporting, so the
	// caller never receives a token that dies under it moments later.
	if r.sessions.IsAuthenticated() && r.sessions.RefreshDue() {
		r.sessions.Refresh(ctx)
	}

	status := messages.AuthChanged{IsAuthenticated: r.sessions.IsAuthenticated()}
	if user := r.sessions.CurrentUser(); user != nil {
		status.User = wireUser(user)
	}

	res, err := messages.OK(status)
	if err != nil {
		return messages.Fail(err)
	}
	return res
}

func (r *Router) handleLogout(ctx context.Context) messages.Result {
	if err := r.sessions.Logout(ctx); err != nil {
		return messages.Fail(err)
	}
	res, _ := messages.OK(nil)
	return res
}

func (r *Router) handleExternalAuth(ctx context.Context, env messages.Envelope) messages.Result {
	var auth messages.ExternalAuth
	if err := env.DecodePayload(&auth); err != nil {
		return messages.Fail(err)
	}

	candidate := session.Candidate{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		User: session.User{
			ID:          auth.User.ID,
			DisplayName: auth.User.Name,
			Email:       auth.User.Email,
			Credits:     auth.User.Credits,
			Plan:        normalizePlan(auth.User.Plan),
		},
	}
	if auth.ExpiresAt > 0 {
		candidate.ExpiresAt = time.UnixMilli(auth.ExpiresAt)
	}

	if err := r.sessions.ApplyExternalLogin(ctx, candidate); err != nil {
		return messages.Fail(err)
	}
	res, _ := messages.OK(nil)
	return res
}

type saveReply struct {
	ID       string `json:"id"`
	RemoteID string `json:"remoteId,omitempty"`
	Synced   bool   `json:"synced"`
}

func (r *Router) handleSaveContent(ctx context.Context, env messages.Envelope) messages.Result {
	var save messages.SaveContent
	if err := env.DecodePayload(&save); err != nil {
		return messages.Fail(err)
	}

	kind, err := sourceKind(save.SourceKind)
	if err != nil {
		return messages.Fail(err)
	}

	result, err := r.queue.Submit(ctx, saves.Payload{
		SourceID:   save.SourceID,
		Title:      save.Title,
		Author:     save.Author,
		Content:    save.Content,
		URL:        save.URL,
		Engagement: save.Engagement,
		Tags:       save.Tags,
		Metadata:   save.Metadata,
	}, kind)
	if err != nil {
		return messages.Fail(err)
	}

	res, err := messages.OK(saveReply{
		ID:       result.Record.ID,
		RemoteID: result.Record.RemoteID,
		Synced:   result.Synced,
	})
	if err != nil {
		return messages.Fail(err)
	}
	return res
}

func (r *Router) handleGenerateSummary(ctx context.Context, env messages.Envelope) messages.Result {
	var req messages.GenerateSummary
	if err := env.DecodePayload(&req); err != nil {
		return messages.Fail(err)
	}
	if !r.sessions.IsAuthenticated() {
		return messages.Fail(saves.ErrAuthRequired)
	}

	summary, err := r.summaries.GenerateSummary(ctx, r.sessions.AccessToken(), apiclient.SummaryRequest{
		VideoID:     req.VideoID,
		Title:       req.Title,
		ChannelName: req.ChannelName,
		URL:         req.URL,
		Transcript:  req.Transcript,
	})
	if err != nil {
		return messages.Fail(err)
	}

	res, err := messages.OK(summary)
	if err != nil {
		return messages.Fail(err)
	}
	return res
}

func (r *Router) handleCheckSummary(ctx context.Context, env messages.Envelope) messages.Result {
	var check messages.CheckSummary
	if err := env.DecodePayload(&check); err != nil {
		return messages.Fail(err)
	}
	if !r.sessions.IsAuthenticated() {
		return messages.Fail(saves.ErrAuthRequired)
	}

	summary, err := r.summaries.GetSummaryByVideoID(ctx, r.sessions.AccessToken(), check.VideoID)
	if err != nil {
		return messages.Fail(err)
	}
	if summary == nil {
		// A miss is a successful answer with no data.
		res, _ := messages.OK(nil)
		return res
	}

	res, err := messages.OK(summary)
	if err != nil {
		return messages.Fail(err)
	}
	return res
}

func sourceKind(raw string) (saves.SourceKind, error) {
	switch saves.SourceKind(raw) {
	case saves.SourceYouTube, saves.SourceLinkedIn, saves.SourceWebsite:
		return saves.SourceKind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSourceKind, raw)
	}
}

func wireUser(user *session.User) *messages.UserInfo {
	return &messages.UserInfo{
		ID:      user.ID,
		Name:    user.DisplayName,
		Email:   user.Email,
		Credits: user.Credits,
		Plan:    string(user.Plan),
	}
}

// normalizePlan maps the web app's plan spelling onto the session model.
func normalizePlan(raw string) session.Plan {
	switch raw {
	case "premium", "PREMIUM":
		return session.PlanPremium
	default:
		return session.PlanFree
	}
}
