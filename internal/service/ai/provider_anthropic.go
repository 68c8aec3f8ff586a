package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/pkg/errors"
)

const defaultAnthropicMaxTokens = 512

// AnthropicModel adapts the Anthropic messages API to eino's chat model
// interface.
type AnthropicModel struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ model.BaseChatModel = (*AnthropicModel)(nil)

// NewAnthropicModel creates an Anthropic client.
func NewAnthropicModel(apiKey, defaultModel string, temperature float32, maxTokens int) *AnthropicModel {
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &AnthropicModel{
		client:      anthropic.NewClient(apiKey),
		model:       defaultModel,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate sends system turns as system parts and the rest as messages.
func (m *AnthropicModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: &m.temperature,
		MaxTokens:   &m.maxTokens,
	}, opts...)

	systemParts, messages := toAnthropicMessages(input)
	if len(messages) == 0 {
		return nil, errors.New("anthropic request has no user turn")
	}

	maxTokens := m.maxTokens
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		maxTokens = *options.MaxTokens
	}

	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(*options.Model),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: options.Temperature,
	}
	if len(systemParts) > 0 {
		req.MultiSystem = systemParts
	}

	resp, err := m.client.CreateMessages(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "create messages with %s", *options.Model)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyReply
	}

	return schema.AssistantMessage(text.String(), nil), nil
}

// Stream wraps Generate; replies are delivered whole.
func (m *AnthropicModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toAnthropicMessages splits system turns out and merges consecutive turns
// of the same role, since the API requires alternating roles.
func toAnthropicMessages(input []*schema.Message) ([]anthropic.MessageSystemPart, []anthropic.Message) {
	var systemParts []anthropic.MessageSystemPart
	var messages []anthropic.Message

	for _, msg := range input {
		if msg == nil {
			continue
		}
		if msg.Role == schema.System {
			systemParts = append(systemParts, anthropic.MessageSystemPart{
				Type: "text",
				Text: msg.Content,
			})
			continue
		}

		role := anthropic.RoleUser
		if msg.Role == schema.Assistant {
			role = anthropic.RoleAssistant
		}

		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, anthropic.NewTextMessageContent(msg.Content))
			continue
		}
		if len(messages) == 0 && role == anthropic.RoleAssistant {
			continue
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
		})
	}
	return systemParts, messages
}
