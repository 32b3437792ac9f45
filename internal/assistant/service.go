package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-vlyx/internal/cache"
	"github.com/noah-isme/backend-vlyx/internal/obs"
)

// ErrEmptyMessage is returned when a request carries no user text.
var ErrEmptyMessage = errors.New("assistant: message is empty")

// Reply modes.
const (
	ModeAI       = "ai"
	ModeFallback = "fallback"
)

// Message is one prior turn of the conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant model"`
	Content string `json:"content" validate:"required,max=4000"`
}

// Request is a user message with optional conversation history.
type Request struct {
	Message string    `json:"message" validate:"max=2000"`
	History []Message `json:"history" validate:"max=20,dive"`
}

// Reply is the assistant's answer.
type Reply struct {
	Text string `json:"response"`
	Mode string `json:"mode"`
}

// Prompt is what a Generator is asked to complete.
type Prompt struct {
	Instructions string
	History      []Message
	Message      string
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Config configures a Service.
type Config struct {
	// Generator may be nil, in which case every reply is a fallback.
	Generator    Generator
	Static       StaticResponder
	Cache        *cache.JSON
	Instructions string
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// Service answers assistant requests, falling back to canned replies when the generator is
// unavailable.
type Service struct {
	cfg Config
}

// NewService constructs a Service.
func NewService(cfg Config) *Service {
	if cfg.Instructions == "" {
		cfg.Instructions = Instructions()
	}
	return &Service{cfg: cfg}
}

// Reply answers req. Upstream failures never surface as errors; they produce a fallback reply.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Reply{}, ErrEmptyMessage
	}
	if s.cfg.Generator == nil {
		return s.fallback(msg), nil
	}

	// Replies that depend on history are never cached.
	cacheKey := ""
	if len(req.History) == 0 {
		cacheKey = cache.KeyAssistantReply(msg)
		var cached Reply
		hit, err := s.cfg.Cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.cfg.Logger.Warn().Err(err).Msg("assistant cache read failed")
		}
		if hit && cached.Text != "" {
			obs.IncCounter(obs.AssistantRepliesTotal, "cache")
			return cached, nil
		}
	}

	genCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	genCtx, span := obs.StartSpan(genCtx, "assistant.generate", attribute.Int("assistant.history", len(req.History)))
	text, err := s.cfg.Generator.Generate(genCtx, Prompt{
		Instructions: s.cfg.Instructions,
		History:      req.History,
		Message:      msg,
	})
	obs.EndSpan(span, err)
	if err != nil || strings.TrimSpace(text) == "" {
		s.cfg.Logger.Warn().Err(err).Msg("assistant generator unavailable, using fallback")
		return s.fallback(msg), nil
	}

	reply := Reply{Text: text, Mode: ModeAI}
	obs.IncCounter(obs.AssistantRepliesTotal, ModeAI)
	if cacheKey != "" {
		if err := s.cfg.Cache.SetJSON(ctx, cacheKey, reply); err != nil {
			s.cfg.Logger.Warn().Err(err).Msg("assistant cache write failed")
		}
	}
	return reply, nil
}

func (s *Service) fallback(msg string) Reply {
	obs.IncCounter(obs.AssistantRepliesTotal, ModeFallback)
	return Reply{Text: s.cfg.Static.Respond(msg), Mode: ModeFallback}
}
