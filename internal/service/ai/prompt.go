package ai

import "strings"

// DefaultSystemPrompt is used when the request carries no system message.
const DefaultSystemPrompt = "You are a friendly team member at a local business texting a past customer. " +
	"Write like a real person sending an SMS: short, warm and natural. Never mention that you are an AI."

const contextHeader = "\n\nAdditional context:\n"

// buildSystemPrompt joins the system message with the optional context.
func buildSystemPrompt(systemMessage, promptContext string) string {
	system := strings.TrimSpace(systemMessage)
	if system == "" {
		system = DefaultSystemPrompt
	}

	promptContext = strings.TrimSpace(promptContext)
	if promptContext == "" {
		return system
	}
	return system + contextHeader + promptContext
}
