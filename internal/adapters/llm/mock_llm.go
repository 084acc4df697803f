package llm

import (
	"context"
	"fmt"

	"github.com/naschastye/salesim/internal/domain"
)

// MockLLM is a local stand-in for development and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Chat(_ context.Context, messages []domain.ChatMessage, _ domain.ChatOptions) (string, error) {
	if len(messages) == 0 {
		return "Слушаю вас!", nil
	}
	last := messages[len(messages)-1]
	return fmt.Sprintf("Понимаю. Вы сказали: %q. Расскажите подробнее?", last.Content), nil
}
