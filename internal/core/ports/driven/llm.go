package driven

import "context"

// ChatMessage is one turn in a chat conversation.
type ChatMessage struct {
	// Role is "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// GenerateOptions configures single-prompt generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// ChatOptions configures multi-turn chat.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// LLMService is the boundary to the hosted language model.
type LLMService interface {
	// Generate produces a completion for a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the model identifier in use.
	ModelName() string

	// Ping validates the service is reachable and the key is accepted.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
