package domain

import "context"

// StateStore is a durable key -> JSON-document mapping. Values are opaque;
// the store performs no schema validation. Writes are upserts keyed by exact
// string equality, durable before the call returns (read-after-write per
// key). A backend failure surfaces as an error wrapping
// ErrStorageUnavailable, never as an absent key.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte) error
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ChatMessage is one entry of an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatOptions tune a single chat completion.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// ChatClient defines how the core talks to an LLM backend. Errors wrap
// ErrResponderUnavailable so callers can degrade instead of failing.
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}
