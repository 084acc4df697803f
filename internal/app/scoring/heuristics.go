// Package scoring holds the pure evaluation heuristics applied to manager
// messages. Every function here is deterministic and side-effect free:
// identical input text and turn index always produce identical scores.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Evaluation is the outcome of scoring one manager message.
type Evaluation struct {
	Scores  map[string]float64 // named sub-scores in [0,10]
	Overall float64            // aggregate in [0,10]
	Passed  bool               // scenario-specific pass threshold
}

// Lexicons are substring sets, matched case-insensitively against the
// message. The training dialogs are Russian, so are the keyword sets.
var (
	warmWords     = []string{"добр", "рад", "приятно", "здравствуйте", "привет", "😊", "🥰"}
	greetWords    = []string{"привет", "здравств", "рад", "понимаю", "спасибо"}
	empathyWords  = []string{"понимаю", "понятно", "согласен", "да, действительно", "вижу", "слышу", "чувствую", "важно"}
	examWarmWords = []string{"добр", "привет", "рад", "здравств", "приятно", "😊", "🥰"}
	examEmpathy   = []string{"понимаю", "важно", "интересно", "расскажите", "хотели бы"}
	pressureWords = []string{"акция", "скидка", "срочно", "успей", "только сегодня"}
	hardPressure  = []string{"должны", "обязательно", "срочно"}
	priceWords    = []string{"цена", "стоимость", "рубл", "тысяч"}
	productWords  = []string{"песн", "подарок", "память", "история"}

	upsellValueWords     = []string{"готов", "подарок", "удобно", "выгода", "ценность", "особенн", "уникальн", "больше", "вариант"}
	upsellPressureWords  = []string{"должны", "обязательно", "только сейчас", "последний шанс"}
	upsellPracticalWords = []string{"несколько", "разных", "выбор", "жена", "мама", "друг", "семья"}
)

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func countMatches(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

// EvaluateStageMessage scores a master-path turn on warmth, questions,
// clarity and length. Overall is the unweighted mean.
func EvaluateStageMessage(text string) Evaluation {
	lower := strings.ToLower(text)
	scores := map[string]float64{}

	if containsAny(lower, warmWords) {
		scores["warmth"] = 8
	} else {
		scores["warmth"] = 4
	}

	scores["questions"] = math.Min(10, float64(strings.Count(text, "?")*3))

	words := wordCount(text)
	switch {
	case words >= 10 && words <= 50:
		scores["clarity"] = 8
		scores["length"] = 8
	case words < 10:
		scores["clarity"] = 4
		scores["length"] = 4
	default:
		scores["clarity"] = 6
		scores["length"] = 6
	}

	overall := round1(mean(scores))
	return Evaluation{Scores: scores, Overall: overall, Passed: overall >= 6}
}

// EvaluateObjection scores an objection-handling reply on empathy, length
// and the presence of a dialog-sustaining question.
func EvaluateObjection(text string) Evaluation {
	lower := strings.ToLower(text)
	scores := map[string]float64{}

	if containsAny(lower, empathyWords) {
		scores["empathy"] = 8
	} else {
		scores["empathy"] = 3
	}

	switch words := wordCount(text); {
	case words >= 20:
		scores["length"] = 8
	case words >= 10:
		scores["length"] = 6
	default:
		scores["length"] = 3
	}

	if strings.Contains(text, "?") {
		scores["question"] = 10
	} else {
		scores["question"] = 2
	}

	overall := round1(mean(scores))
	return Evaluation{Scores: scores, Overall: overall, Passed: overall >= 6}
}

// EvaluateUpsell scores an upsell attempt: value shown, absence of pressure,
// practicality of the offer.
func EvaluateUpsell(text string) Evaluation {
	lower := strings.ToLower(text)
	scores := map[string]float64{}

	scores["value_shown"] = math.Min(10, float64(countMatches(lower, upsellValueWords)*3))

	if containsAny(lower, upsellPressureWords) {
		scores["no_pressure"] = 3
	} else {
		scores["no_pressure"] = 9
	}

	scores["practical"] = math.Min(10, float64(countMatches(lower, upsellPracticalWords)*4))

	overall := round1(mean(scores))
	return Evaluation{Scores: scores, Overall: overall, Passed: overall >= 6.5}
}

// EvaluateExamRound scores a single exam round additively on length, warmth,
// questioning, empathy and absence of pressure, capped at 10.
func EvaluateExamRound(text string) float64 {
	lower := strings.ToLower(text)
	total := 0.0

	switch words := wordCount(text); {
	case words >= 20:
		total += 3
	case words >= 10:
		total += 2
	default:
		total += 1
	}

	if containsAny(lower, examWarmWords) {
		total += 2
	} else {
		total += 1
	}

	if strings.Contains(text, "?") {
		total += 2
	} else {
		total += 1
	}

	if containsAny(lower, examEmpathy) {
		total += 2
	} else {
		total += 1
	}

	if !containsAny(lower, hardPressure) {
		total += 1
	}

	return math.Min(10, total)
}

// EvaluateMessage is the generic manager-message score shared by free-form
// practice. round is 0-based. Result is clamped to [1,10].
func EvaluateMessage(text string, round int) float64 {
	lower := strings.ToLower(text)
	runes := utf8.RuneCountInString(text)
	score := 5.0

	if strings.Contains(text, "?") {
		score++
	}
	if containsAny(lower, greetWords) {
		score++
	}
	if runes > 50 && runes < 300 {
		score++
	}
	// Product talk is rewarded only after rapport is built.
	if round > 2 && containsAny(lower, productWords) {
		score++
	}

	if containsAny(lower, pressureWords) {
		score -= 2
	}
	// Leading with price kills warm sales.
	if round <= 1 && containsAny(lower, priceWords) {
		score--
	}
	if runes < 20 {
		score--
	}
	if runes > 400 {
		score--
	}

	return math.Max(1, math.Min(10, score))
}

// MergeRunning folds one sample set into the running per-criterion averages.
// n is the turn count at the time of the update (1-based), so that after T
// turns the stored value equals the arithmetic mean of all T samples.
func MergeRunning(avgs, sample map[string]float64, n int) map[string]float64 {
	if n < 1 {
		n = 1
	}
	merged := make(map[string]float64, len(avgs)+len(sample))
	for k, v := range avgs {
		merged[k] = v
	}
	for k, s := range sample {
		old := merged[k]
		merged[k] = (old*float64(n-1) + s) / float64(n)
	}
	return merged
}

// Grade maps a final 0-100 score onto the 4-tier scale with its verdict.
func Grade(final int) (string, string) {
	switch {
	case final >= 85:
		return "A", "🏆 ОТЛИЧНО! Ты готов работать с реальными клиентами. Отличная эмпатия, структура и естественность."
	case final >= 70:
		return "B", "✅ ХОРОШО! Базовые навыки на месте. Продолжай практиковаться для уверенности."
	case final >= 55:
		return "C", "📚 УДОВЛЕТВОРИТЕЛЬНО. Есть понимание, но нужно больше практики. Повтори тренировки."
	default:
		return "D", "🔄 НУЖНА ПРАКТИКА. Вернись к базовым модулям и отработай навыки."
	}
}
