package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// OpenAIModel adapts an OpenAI-compatible endpoint (OpenAI, DeepSeek) to
// eino's chat model interface.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ model.BaseChatModel = (*OpenAIModel)(nil)

// NewOpenAIModel creates a client for an OpenAI-compatible API.
func NewOpenAIModel(apiKey, baseURL, defaultModel string, temperature float32, maxTokens int) *OpenAIModel {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       defaultModel,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate runs a single non-streaming completion.
func (m *OpenAIModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: &m.temperature,
		MaxTokens:   &m.maxTokens,
	}, opts...)

	req := openai.ChatCompletionRequest{
		Model:    *options.Model,
		Messages: toOpenAIMessages(input),
		N:        1,
	}
	if options.Temperature != nil {
		req.Temperature = *options.Temperature
	}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		req.MaxTokens = *options.MaxTokens
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "chat completion with %s", req.Model)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

// Stream wraps Generate; replies are delivered whole.
func (m *OpenAIModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case schema.System:
			role = openai.ChatMessageRoleSystem
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}
