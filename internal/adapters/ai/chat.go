package ai

import (
	"context"
	"strings"
)

// ChatProvider is a single-shot chat completion backend
type ChatProvider interface {
	Name() ProviderName

	// Model returns the default model used when a request leaves it empty
	Model() string

	// Chat sends a chat completion request
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Message represents a single message in the conversation.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// System builds a system message
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	Model        string
	Content      string
	FinishReason FinishReason
	Usage        Usage
}

// Text returns the trimmed completion text
func (r *ChatResponse) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Content)
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop   FinishReason = "stop"
	FinishReasonLength FinishReason = "length"
	FinishReasonOther  FinishReason = "other"
)

func finishReason(raw string) FinishReason {
	switch strings.ToLower(raw) {
	case "stop", "end_turn":
		return FinishReasonStop
	case "length", "max_tokens":
		return FinishReasonLength
	default:
		return FinishReasonOther
	}
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// splitSystem separates system messages from the conversation turns
func splitSystem(messages []Message) (system string, turns []Message) {
	var parts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(parts, "\n\n"), turns
}
