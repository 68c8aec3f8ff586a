package conversation

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/internal/service/ai"
)

// ErrInvalidRequest 表示请求缺少必填字段。
var ErrInvalidRequest = errors.New("invalid chat request")

// Replier generates the model reply for one turn.
type Replier interface {
	GenerateReply(ctx context.Context, req ai.ReplyRequest) (*ai.Reply, error)
}

// Transcripts stores the per-session history.
type Transcripts interface {
	LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error)
	SaveExchange(ctx context.Context, sessionID, modelName string, request chat.Message, reply chat.Message) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Service runs one exchange: load history, ask the model, record both turns.
// It backs both the HTTP and the websocket endpoints.
type Service struct {
	transcripts Transcripts
	replier     Replier
}

// NewService wires the exchange path.
func NewService(transcripts Transcripts, replier Replier) *Service {
	return &Service{transcripts: transcripts, replier: replier}
}

// Respond answers a chat request.
func (s *Service) Respond(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "sessionId is required")
	}
	kind, text := req.Normalize()
	if text == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "message is required")
	}

	history, err := s.transcripts.LoadTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.replier.GenerateReply(ctx, ai.ReplyRequest{
		SessionID:     sessionID,
		Kind:          kind,
		Text:          text,
		SystemMessage: req.SystemMessage,
		PromptContext: req.PromptContext,
		Model:         req.Model,
		History:       history,
	})
	if err != nil {
		return nil, err
	}

	sender := chat.SenderUser
	if kind == chat.KindDirective {
		sender = chat.SenderDirective
	}
	request := chat.Message{Sender: sender, Content: text}
	answer := chat.Message{Sender: chat.SenderAssistant, Content: reply.Content}

	if err := s.transcripts.SaveExchange(ctx, sessionID, reply.Model, request, answer); err != nil {
		// 回复已生成，记录失败不影响本次应答。
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", sessionID).Msg("failed to save exchange")
	}

	return &chat.ChatResponse{Response: reply.Content}, nil
}

// Forget drops the history of a session.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	return s.transcripts.DeleteSession(ctx, sessionID)
}
