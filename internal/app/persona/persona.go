// Package persona produces the brand-voice replies of the simulated client
// and the coach. When no chat backend is configured, or a call fails, it
// degrades to deterministic canned replies so training never stalls.
package persona

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/naschastye/salesim/internal/domain"
)

const (
	coachSystemPrompt = `Ты — опытный коуч-наставник в проекте "На Счастье".
Твоя задача — помогать менеджерам учиться тёплому, эмпатичному общению с клиентами.

Стиль общения:
- Тёплый, мягкий, но честный
- Даёшь конструктивную обратную связь
- Поддерживаешь и подсказываешь, как улучшить
- Не критикуешь, а показываешь лучший путь
- Краткие, но ёмкие советы (2-3 предложения)

Критерии оценки менеджера:
- Тепло и эмпатия в сообщении
- Наличие открытых вопросов
- Понятность и структура
- Отсутствие давления на клиента
`

	clientSystemPrompt = `Ты — живой клиент в диалоге с менеджером проекта "На Счастье".
"На Счастье" создаёт уникальные песни по реальным историям людей.

Твой характер:
- Естественный, с эмоциями (радость, сомнения, интерес)
- Реагируешь на тон и подход менеджера
- Можешь сомневаться, если менеджер давит
- Открываешься, если менеджер тёплый и искренний
- Задаёшь естественные вопросы клиента

Помни:
- Ты не знаешь деталей услуги заранее
- Реагируешь человечески на каждое сообщение
- Можешь быть любопытным, но осторожным с деньгами
- Отвечай 2-3 предложениями, как в живой переписке
`
)

// Service generates role replies. A nil chat client means fallback-only mode.
type Service struct {
	chat    domain.ChatClient
	timeout time.Duration
}

func NewService(chat domain.ChatClient, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{chat: chat, timeout: timeout}
}

// Reply produces a client or coach message for the given history. It never
// fails: any backend error is absorbed by the deterministic fallback.
func (s *Service) Reply(ctx context.Context, role string, history []domain.ChatMessage) string {
	if s.chat == nil {
		return fallbackReply(role, history)
	}

	system := clientSystemPrompt
	if role == "coach" {
		system = coachSystemPrompt
	}

	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.chat.Chat(callCtx, messages, domain.ChatOptions{Temperature: 0.7, MaxTokens: 500})
	if err != nil {
		return fallbackReply(role, history)
	}
	return Stylize(text)
}

// Stylize rewrites formal or pushy phrasing into the brand voice.
func Stylize(text string) string {
	replacements := [][2]string{
		{"Извините", "Простите"},
		{"Вы должны", "Было бы здорово, если бы вы"},
		{"обязательно", "важно"},
		{"необходимо", "было бы отлично"},
		{"требуется", "нужно"},
	}
	styled := text
	for _, r := range replacements {
		styled = strings.ReplaceAll(styled, r[0], r[1])
	}
	return strings.TrimSpace(styled)
}

var coachFallbacks = []string{
	"Хорошее начало! Попробуй добавить больше тепла и задать уточняющий вопрос.",
	"Отлично! Ты проявил эмпатию. Теперь можно мягко подвести к следующему этапу.",
	"Обрати внимание: важно не давить, а показать ценность через историю клиента.",
	"Хорошо! Не забудь про открытый вопрос в конце, это поддерживает диалог.",
	"Супер! Теперь можно углубиться в детали и показать искренний интерес.",
}

var (
	clientDoubtFallbacks = []string{
		"Хм, звучит интересно, но я пока не уверен... Расскажите подробнее?",
		"Мне нравится идея, но нужно подумать. А сколько времени это занимает?",
		"Интересно, но я раньше не встречал такое. А как это работает?",
	}
	clientPositiveFallbacks = []string{
		"Да, мне интересно! Расскажите, как это происходит?",
		"Звучит здорово! А какие есть варианты?",
		"О, это то, что я искал! Что нужно для начала?",
		"Отлично! Мне нравится такой подход. Что дальше?",
	}
	clientNeutralFallbacks = []string{
		"Хм, интересно... Расскажите подробнее.",
		"Я слушаю вас. Что вы предлагаете?",
		"Понятно. А как это мне поможет?",
	}
)

var (
	positiveWords = []string{"спасибо", "отлично", "интересно", "хорошо", "да", "понял"}
	doubtWords    = []string{"не знаю", "дорого", "подумать", "позже", "сомневаюсь"}
)

// fallbackReply picks a canned response keyed off the last manager message.
// Selection hashes the message text so the same input always gets the same
// reply, which keeps drills reproducible.
func fallbackReply(role string, history []domain.ChatMessage) string {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	lower := strings.ToLower(last)

	if role == "coach" {
		return coachFallback(lower)
	}
	return clientFallback(lower)
}

func coachFallback(lower string) string {
	if len([]rune(lower)) < 30 {
		return "Хорошее начало! Попробуй развить мысль подробнее и добавь личный вопрос."
	}
	if !strings.Contains(lower, "?") {
		return "Отлично! Добавь вопрос в конце, чтобы поддержать диалог."
	}
	return coachFallbacks[pickIndex(lower, len(coachFallbacks))]
}

func clientFallback(lower string) string {
	hasDoubt := false
	for _, w := range doubtWords {
		if strings.Contains(lower, w) {
			hasDoubt = true
			break
		}
	}
	hasPositive := strings.Contains(lower, "?")
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			hasPositive = true
			break
		}
	}

	switch {
	case hasDoubt:
		return clientDoubtFallbacks[pickIndex(lower, len(clientDoubtFallbacks))]
	case hasPositive:
		return clientPositiveFallbacks[pickIndex(lower, len(clientPositiveFallbacks))]
	default:
		return clientNeutralFallbacks[pickIndex(lower, len(clientNeutralFallbacks))]
	}
}

func pickIndex(text string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return int(h.Sum32() % uint32(n))
}
