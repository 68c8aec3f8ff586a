package chat

import "strings"

// Kind discriminates a normal customer message from the synthetic opening
// directive that asks the model to start the conversation.
type Kind string

const (
	KindMessage   Kind = "message"
	KindDirective Kind = "directive"
)

const (
	legacyDirectivePrefix = "[SYSTEM:"
	legacyDirectiveSuffix = "]"
)

// ChatRequest is the body of POST /api/chat and of each websocket frame.
type ChatRequest struct {
	SessionID     string `json:"sessionId"`
	Message       string `json:"message"`
	Kind          Kind   `json:"kind,omitempty"`
	SystemMessage string `json:"systemMessage"`
	PromptContext string `json:"promptContext"`
	Model         string `json:"model"`
}

// ChatResponse carries the reply text of a successful exchange.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string   `json:"status"`
	HasAPIKey bool     `json:"hasApiKey"`
	Models    []string `json:"models,omitempty"`
}

// Normalize resolves the request kind and returns the instruction text.
// Requests without an explicit kind that follow the bracketed
// "[SYSTEM: ...]" convention are treated as directives.
func (r ChatRequest) Normalize() (Kind, string) {
	text := strings.TrimSpace(r.Message)
	switch r.Kind {
	case KindDirective:
		return KindDirective, stripDirective(text)
	case KindMessage:
		return KindMessage, text
	}

	if strings.HasPrefix(text, legacyDirectivePrefix) && strings.HasSuffix(text, legacyDirectiveSuffix) {
		return KindDirective, stripDirective(text)
	}
	return KindMessage, text
}

// WrapDirective renders directive text in the bracketed form the model is
// prompted with.
func WrapDirective(text string) string {
	return legacyDirectivePrefix + " " + strings.TrimSpace(text) + legacyDirectiveSuffix
}

func stripDirective(text string) string {
	if strings.HasPrefix(text, legacyDirectivePrefix) && strings.HasSuffix(text, legacyDirectiveSuffix) {
		text = strings.TrimSuffix(strings.TrimPrefix(text, legacyDirectivePrefix), legacyDirectiveSuffix)
	}
	return strings.TrimSpace(text)
}

// ExchangeReply is one answer frame on the websocket endpoint: either
// Response is set or Error (with optional Details).
type ExchangeReply struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}
