package ai

import (
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

// TokenCounter estimates how many prompt tokens a text costs.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// runeCounter 在编码表不可用时按字符粗略估算。
type runeCounter struct{}

func (runeCounter) Count(text string) int {
	return utf8.RuneCountInString(text)/4 + 1
}

// NewTokenCounter returns a cl100k_base counter, or a rough estimate when
// the encoding cannot be loaded.
func NewTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn().Err(err).Msg("tiktoken encoding unavailable, falling back to estimate")
		return runeCounter{}
	}
	return tiktokenCounter{enc: enc}
}

// perMessageOverhead 对应每条消息的角色与分隔符开销。
const perMessageOverhead = 4

// buildHistoryMessages keeps the newest turns that fit into budget tokens,
// dropping the oldest first. A history may not open with an assistant turn.
func buildHistoryMessages(messages []chat.Message, counter TokenCounter, budget int) []*schema.Message {
	if len(messages) == 0 || budget <= 0 {
		return nil
	}

	start := len(messages)
	used := 0
	for i := len(messages) - 1; i >= 0; i-- {
		cost := counter.Count(historyContent(messages[i])) + perMessageOverhead
		if used+cost > budget {
			break
		}
		used += cost
		start = i
	}

	for start < len(messages) && messages[start].Sender == chat.SenderAssistant {
		start++
	}

	history := make([]*schema.Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		switch msg.Sender {
		case chat.SenderUser, chat.SenderDirective:
			history = append(history, schema.UserMessage(historyContent(msg)))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

func historyContent(msg chat.Message) string {
	if msg.Sender == chat.SenderDirective {
		return chat.WrapDirective(msg.Content)
	}
	return msg.Content
}
