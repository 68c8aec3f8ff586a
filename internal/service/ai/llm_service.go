package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sms-sim/internal/config"
	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

var (
	// ErrModelUnavailable 表示请求的模型未知或其提供方未配置密钥。
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyReply 表示模型返回了空内容。
	ErrEmptyReply = errors.New("model returned an empty reply")
)

// ReplyRequest is one turn sent to the model.
type ReplyRequest struct {
	SessionID     string
	Kind          chat.Kind
	Text          string
	SystemMessage string
	PromptContext string
	Model         string
	History       []chat.Message
}

// Reply is the model's answer together with the model that produced it.
type Reply struct {
	Content string
	Model   string
}

// Option customises a Service.
type Option func(*Service)

// WithChatModel installs a chat model for a provider, replacing the one
// built from configuration.
func WithChatModel(provider Provider, chatModel model.BaseChatModel) Option {
	return func(s *Service) {
		s.models[provider] = chatModel
	}
}

// WithTokenCounter overrides the history token counter.
func WithTokenCounter(counter TokenCounter) Option {
	return func(s *Service) {
		s.counter = counter
	}
}

// Service 封装多提供方的对话生成。每个提供方对应一条 eino 链，模型在调用时指定。
type Service struct {
	cfg     config.AIConfig
	catalog *Catalog
	counter TokenCounter
	models  map[Provider]model.BaseChatModel
	chains  map[Provider]compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a Service for every provider that has credentials.
func NewService(ctx context.Context, cfg config.AIConfig, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:     cfg,
		catalog: NewCatalog(cfg),
		models:  make(map[Provider]model.BaseChatModel),
		chains:  make(map[Provider]compose.Runnable[map[string]any, *schema.Message]),
	}

	if cfg.DeepSeekEnabled() {
		s.models[ProviderDeepSeek] = NewOpenAIModel(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, firstOr(cfg.DeepSeekModels, "deepseek-chat"), cfg.Temperature, cfg.MaxTokens)
	}
	if cfg.OpenAIEnabled() {
		s.models[ProviderOpenAI] = NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, firstOr(cfg.OpenAIModels, "gpt-4o-mini"), cfg.Temperature, cfg.MaxTokens)
	}
	if cfg.AnthropicEnabled() {
		s.models[ProviderAnthropic] = NewAnthropicModel(cfg.AnthropicAPIKey, firstOr(cfg.AnthropicModels, "claude-3-5-haiku-latest"), cfg.Temperature, cfg.MaxTokens)
	}
	if cfg.ArkEnabled() {
		s.models[ProviderArk] = newArkModels(cfg)
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.counter == nil {
		s.counter = NewTokenCounter()
	}

	for provider, chatModel := range s.models {
		runnable, err := compileChain(ctx, chatModel)
		if err != nil {
			return nil, errors.Wrapf(err, "compile %s chain", provider)
		}
		s.chains[provider] = runnable
	}

	log.Info().
		Int("providers", len(s.chains)).
		Strs("models", s.catalog.AvailableIDs()).
		Msg("ai service ready")

	return s, nil
}

func compileChain(ctx context.Context, chatModel model.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// Catalog exposes the model list.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// HasAPIKey reports whether any provider can serve requests.
func (s *Service) HasAPIKey() bool {
	return len(s.chains) > 0
}

// GenerateReply runs the prompt chain for one turn.
func (s *Service) GenerateReply(ctx context.Context, req ReplyRequest) (*Reply, error) {
	info, ok := s.catalog.Resolve(req.Model)
	if !ok {
		return nil, errors.Wrapf(ErrModelUnavailable, "unknown model %q", req.Model)
	}
	runnable, ok := s.chains[info.Provider]
	if !ok {
		return nil, errors.Wrapf(ErrModelUnavailable, "no API key configured for %s", info.Provider)
	}

	input := s.buildChainInput(req)
	response, err := runnable.Invoke(ctx, input, compose.WithChatModelOption(model.WithModel(info.ID)))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s chain", info.Provider)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return nil, ErrEmptyReply
	}

	log.Debug().
		Str("session", req.SessionID).
		Str("model", info.ID).
		Str("kind", string(req.Kind)).
		Int("length", len(response.Content)).
		Msg("generated reply")

	return &Reply{Content: strings.TrimSpace(response.Content), Model: info.ID}, nil
}

func (s *Service) buildChainInput(req ReplyRequest) map[string]any {
	system := buildSystemPrompt(req.SystemMessage, req.PromptContext)
	query := req.Text
	if req.Kind == chat.KindDirective {
		query = chat.WrapDirective(req.Text)
	}

	budget := s.cfg.HistoryTokenLimit - s.counter.Count(system) - s.counter.Count(query)
	return map[string]any{
		"system":  system,
		"history": buildHistoryMessages(req.History, s.counter, budget),
		"query":   query,
	}
}

func firstOr(values []string, fallback string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

// AvailableModels lists model ids whose provider has credentials.
func (s *Service) AvailableModels() []string {
	return s.catalog.AvailableIDs()
}
