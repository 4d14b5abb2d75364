package handler

import (
	"context"
	"log/slog"

	"github.com/knugget/coordinator/pkg/broadcast"
	"github.com/knugget/coordinator/pkg/logger"
	"github.com/knugget/coordinator/pkg/messages"
	"github.com/knugget/coordinator/pkg/session"
)

// AuthBroadcaster turns session auth-state changes into AUTH_CHANGED
// broadcasts to every connected page context on a tracked site. It
// satisfies the session manager's Broadcaster interface.
type AuthBroadcaster struct {
	dispatcher *broadcast.Dispatcher
	logger     *slog.Logger
}

// NewAuthBroadcaster wires the dispatcher into the session manager.
func NewAuthBroadcaster(dispatcher *broadcast.Dispatcher, log *slog.Logger) *AuthBroadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &AuthBroadcaster{dispatcher: dispatcher, logger: log}
}

// AuthChanged fans the new auth state out to matching targets. Delivery
// is best effort; failures never reach the session manager.
func (b *AuthBroadcaster) AuthChanged(ctx context.Context, authenticated bool, user *session.User) {
	payload := messages.AuthChanged{IsAuthenticated: authenticated}
	if user != nil {
		payload.User = wireUser(user)
	}

	event, err := broadcast.NewEvent(string(messages.TypeAuthChanged), payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to build auth change event", logger.Error(err))
		return
	}

	tally := b.dispatcher.Broadcast(ctx, event)
	b.logger.DebugContext(ctx, "auth change broadcast",
		slog.Bool("authenticated", authenticated),
		slog.Int("matched", tally.Matched),
		slog.Int("delivered", tally.Delivered),
		slog.Int("failed", tally.Failed))
}
