package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sms-sim/internal/config"
	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

type fakeChatModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	inputs [][]*schema.Message
	models []string
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if options.Model != nil {
		f.models = append(f.models, *options.Model)
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) lastInput() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs[len(f.inputs)-1]
}

type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func testConfig() config.AIConfig {
	return config.AIConfig{
		DefaultModel:      "deepseek-chat",
		DeepSeekAPIKey:    "test-key",
		DeepSeekModels:    []string{"deepseek-chat", "deepseek-reasoner"},
		AnthropicModels:   []string{"claude-3-5-haiku-latest"},
		Temperature:       0.7,
		MaxTokens:         256,
		HistoryTokenLimit: 1000,
	}
}

func newTestService(t *testing.T, fake *fakeChatModel) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), testConfig(),
		WithChatModel(ProviderDeepSeek, fake),
		WithTokenCounter(wordCounter{}),
	)
	require.NoError(t, err)
	return svc
}

func TestGenerateReplyUsesRequestedModel(t *testing.T) {
	fake := &fakeChatModel{reply: "  Hey Sam! Long time no see.  "}
	svc := newTestService(t, fake)

	reply, err := svc.GenerateReply(context.Background(), ReplyRequest{
		SessionID:     "session_1",
		Kind:          chat.KindMessage,
		Text:          "hi",
		SystemMessage: "You text for Joe's Pizza.",
		PromptContext: "Customer last ordered in May.",
		Model:         "deepseek-reasoner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hey Sam! Long time no see.", reply.Content)
	assert.Equal(t, "deepseek-reasoner", reply.Model)
	assert.Equal(t, []string{"deepseek-reasoner"}, fake.models)

	input := fake.lastInput()
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "You text for Joe's Pizza.\n\nAdditional context:\nCustomer last ordered in May.", input[0].Content)
	assert.Equal(t, schema.User, input[1].Role)
	assert.Equal(t, "hi", input[1].Content)
}

func TestGenerateReplyDefaultsModelAndWrapsDirective(t *testing.T) {
	fake := &fakeChatModel{reply: "Hi there!"}
	svc := newTestService(t, fake)

	_, err := svc.GenerateReply(context.Background(), ReplyRequest{
		SessionID: "session_1",
		Kind:      chat.KindDirective,
		Text:      "Send the first outreach message.",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"deepseek-chat"}, fake.models)

	input := fake.lastInput()
	assert.Equal(t, DefaultSystemPrompt, input[0].Content)
	assert.Equal(t, "[SYSTEM: Send the first outreach message.]", input[len(input)-1].Content)
}

func TestGenerateReplyIncludesHistory(t *testing.T) {
	fake := &fakeChatModel{reply: "Sounds good"}
	svc := newTestService(t, fake)

	history := []chat.Message{
		{Sender: chat.SenderDirective, Content: "start"},
		{Sender: chat.SenderAssistant, Content: "Hi Sam"},
		{Sender: chat.SenderUser, Content: "who is this"},
		{Sender: chat.SenderAssistant, Content: "Joe's Pizza"},
	}
	_, err := svc.GenerateReply(context.Background(), ReplyRequest{
		SessionID: "session_1",
		Text:      "oh cool",
		History:   history,
	})
	require.NoError(t, err)

	input := fake.lastInput()
	require.Len(t, input, 6)
	assert.Equal(t, "[SYSTEM: start]", input[1].Content)
	assert.Equal(t, schema.Assistant, input[2].Role)
	assert.Equal(t, "oh cool", input[5].Content)
}

func TestGenerateReplyUnavailableProvider(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "x"})

	_, err := svc.GenerateReply(context.Background(), ReplyRequest{Text: "hi", Model: "claude-3-5-haiku-latest"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelUnavailable)

	_, err = svc.GenerateReply(context.Background(), ReplyRequest{Text: "hi", Model: "mystery-model"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestGenerateReplyEmptyAndFailure(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "   "})
	_, err := svc.GenerateReply(context.Background(), ReplyRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrEmptyReply)

	boom := errors.New("upstream 500")
	svc = newTestService(t, &fakeChatModel{err: boom})
	_, err = svc.GenerateReply(context.Background(), ReplyRequest{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
}

func TestHasAPIKey(t *testing.T) {
	svc, err := NewService(context.Background(), config.AIConfig{HistoryTokenLimit: 100}, WithTokenCounter(wordCounter{}))
	require.NoError(t, err)
	assert.False(t, svc.HasAPIKey())

	svc = newTestService(t, &fakeChatModel{reply: "ok"})
	assert.True(t, svc.HasAPIKey())
}
