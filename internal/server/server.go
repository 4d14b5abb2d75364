package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/knugget/coordinator/pkg/broadcast"
	"github.com/knugget/coordinator/pkg/httpserver"
	"github.com/knugget/coordinator/pkg/logger"
	"github.com/knugget/coordinator/pkg/messages"
)

// FrameHandler routes one decoded frame and produces the direct reply.
type FrameHandler interface {
	Handle(ctx context.Context, senderOrigin string, env messages.Envelope) messages.Result
}

// Server owns the websocket endpoint and connection lifecycle.
type Server struct {
	frames   FrameHandler
	registry *broadcast.Registry
	checks   []func(context.Context) error
	logger   *slog.Logger
}

// New creates the HTTP-facing server. Readiness checks, if any, back the
// health endpoint.
func New(frames FrameHandler, registry *broadcast.Registry, log *slog.Logger, checks ...func(context.Context) error) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		frames:   frames,
		registry: registry,
		checks:   checks,
		logger:   log,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(context.Background(), s.logger, s.checks...))
	r.Get("/ws", s.handleWS)

	return r
}

// reply is the direct answer to one inbound frame, echoing its type so
// the client can correlate it.
type reply struct {
	Type    messages.Type   `json:"type"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("page_url")
	senderOrigin := r.Header.Get("Origin")

	// Any origin may connect; the origin gate decides per frame what a
	// sender is allowed to do.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", logger.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s.serve(r.Context(), conn, pageURL, senderOrigin)
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, pageURL, senderOrigin string) {
	// Writes come from the read loop and from broadcast goroutines.
	var writeMu sync.Mutex
	write := func(ctx context.Context, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.Write(ctx, websocket.MessageText, data)
	}

	if pageURL != "" {
		target, unregister, err := s.registry.Register(pageURL, func(ctx context.Context, event broadcast.Event) error {
			return write(ctx, messages.Envelope{Type: messages.Type(event.Type), Payload: event.Payload})
		})
		if err != nil {
			s.logger.Warn("broadcast registration failed",
				slog.String("page_url", pageURL),
				logger.Error(err))
		} else {
			defer unregister()
			s.logger.Debug("page context connected",
				logger.TargetID(target.ID.String()),
				slog.String("host", target.Host),
				logger.Origin(senderOrigin))
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.logger.Debug("connection closed", logger.Error(err))
			return
		}

		env, err := messages.Decode(data)
		if err != nil {
			if writeErr := write(ctx, reply{Success: false, Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		result := s.frames.Handle(ctx, senderOrigin, env)
		if err := write(ctx, reply{
			Type:    env.Type,
			Success: result.Success,
			Error:   result.Error,
			Data:    result.Data,
		}); err != nil {
			s.logger.Debug("reply write failed",
				logger.MessageType(string(env.Type)),
				logger.Error(err))
			return
		}
	}
}
