package scoring

import (
	"math"
	"strings"
)

// ScriptAnalysis is the detailed breakdown of one sales script.
// Sub-scores and the weighted overall are on the 0-100 scale.
type ScriptAnalysis struct {
	Overall    float64 `json:"overall_score"`
	Structure  float64 `json:"structure_score"`
	Psychology float64 `json:"psychology_score"`
	Softness   float64 `json:"softness_score"`
	Engagement float64 `json:"engagement_score"`
	CTA        float64 `json:"cta_score"`

	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Suggestions     []string `json:"suggestions"`
	ImprovedVersion string   `json:"improved_version,omitempty"`
}

// Aggregation weights, summing to 1.0.
const (
	weightStructure  = 0.25
	weightPsychology = 0.20
	weightSoftness   = 0.20
	weightEngagement = 0.20
	weightCTA        = 0.15
)

const (
	scriptMinWords        = 50
	scriptOptimalMinWords = 50
	scriptOptimalMaxWords = 300
)

// AnalyzeScript evaluates a sales script on five weighted criteria and
// produces textual feedback. Deterministic, like the rest of the package.
func AnalyzeScript(script string) ScriptAnalysis {
	structure := scoreStructure(script)
	psychology := scorePsychology(script)
	softness := scoreSoftness(script)
	engagement := scoreEngagement(script)
	cta := scoreCTA(script)

	overall := structure*weightStructure +
		psychology*weightPsychology +
		softness*weightSoftness +
		engagement*weightEngagement +
		cta*weightCTA

	scores := map[string]float64{
		"structure":  structure,
		"psychology": psychology,
		"softness":   softness,
		"engagement": engagement,
		"cta":        cta,
	}

	weaknesses := scriptWeaknesses(script, scores)
	suggestions := scriptSuggestions(script, weaknesses)

	return ScriptAnalysis{
		Overall:         round2(overall),
		Structure:       round2(structure),
		Psychology:      round2(psychology),
		Softness:        round2(softness),
		Engagement:      round2(engagement),
		CTA:             round2(cta),
		Strengths:       scriptStrengths(script, scores),
		Weaknesses:      weaknesses,
		Suggestions:     suggestions,
		ImprovedVersion: improvedScript(script, suggestions),
	}
}

// CriterionScores returns the analysis sub-scores rescaled to [0,10] so they
// can feed a session's running averages.
func (a ScriptAnalysis) CriterionScores() map[string]float64 {
	return map[string]float64{
		"structure":  a.Structure / 10,
		"psychology": a.Psychology / 10,
		"softness":   a.Softness / 10,
		"engagement": a.Engagement / 10,
		"cta":        a.CTA / 10,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func scoreStructure(script string) float64 {
	lower := strings.ToLower(script)
	score := 50.0

	if containsAny(lower, []string{"привет", "здравствуй", "добрый день", "hello"}) {
		score += 10
	}
	if containsAny(lower, []string{"меня зовут", "я из", "компани", "представляю"}) {
		score += 10
	}
	if strings.Contains(script, "?") {
		score += 10
	}
	if containsAny(lower, []string{"спасибо", "жду", "свяжемся", "до свидания"}) {
		score += 10
	}
	if words := wordCount(script); words >= scriptOptimalMinWords && words <= scriptOptimalMaxWords {
		score += 10
	}

	return math.Min(score, 100)
}

func scorePsychology(script string) float64 {
	lower := strings.ToLower(script)
	score := 50.0

	empathyHits := countMatches(lower, []string{"понимаю", "чувства", "эмоции", "история", "особенн"})
	score += math.Min(float64(empathyHits*7), 20)

	if containsAny(lower, []string{"для вас", "вы получите", "поможет", "позволит"}) {
		score += 10
	}
	if containsAny(lower, []string{"другие клиенты", "многие", "отзывы", "примеры"}) {
		score += 10
	}
	if countMatches(lower, []string{"ваш", "вас", "вам", "для вас"}) >= 3 {
		score += 10
	}

	return math.Min(score, 100)
}

func scoreSoftness(script string) float64 {
	lower := strings.ToLower(script)
	score := 70.0

	for _, w := range []string{"должны", "обязаны", "немедленно", "срочно купите", "только сейчас"} {
		if strings.Contains(lower, w) {
			score -= 15
		}
	}
	for _, w := range []string{"может быть", "возможно", "если хотите", "как вам", "что скажете"} {
		if strings.Contains(lower, w) {
			score += 6
		}
	}
	score += math.Min(float64(strings.Count(script, "?")*3), 15)

	return math.Max(math.Min(score, 100), 0)
}

func scoreEngagement(script string) float64 {
	lower := strings.ToLower(script)
	score := 50.0

	score += math.Min(float64(strings.Count(script, "?")*8), 25)

	emotionHits := countMatches(lower, []string{"представьте", "увидите", "почувствуете", "удивит", "восхит"})
	score += math.Min(float64(emotionHits*7), 20)

	if containsAny(lower, []string{"история", "однажды", "например", "случай"}) {
		score += 10
	}

	return math.Min(score, 100)
}

func scoreCTA(script string) float64 {
	lower := strings.ToLower(script)
	score := 50.0

	if containsAny(lower, []string{"давайте", "можем начать", "предлагаю", "что скажете", "начнем"}) {
		score += 20
	}
	if containsAny(lower, []string{"следующий шаг", "дальше", "затем", "после этого"}) {
		score += 15
	}
	if containsAny(lower, []string{"сегодня", "сейчас", "эту неделю"}) {
		score += 15
	}

	return math.Min(score, 100)
}

func scriptStrengths(script string, scores map[string]float64) []string {
	var strengths []string

	if scores["structure"] >= 75 {
		strengths = append(strengths, "Отличная структура скрипта - есть приветствие, основная часть и закрытие")
	}
	if scores["psychology"] >= 75 {
		strengths = append(strengths, "Сильный психологический подход - учитывает эмоции клиента")
	}
	if scores["softness"] >= 75 {
		strengths = append(strengths, "Мягкий и ненавязчивый стиль общения")
	}
	if scores["engagement"] >= 75 {
		strengths = append(strengths, "Высокий уровень вовлечения - хорошо использованы вопросы")
	}
	if scores["cta"] >= 75 {
		strengths = append(strengths, "Четкий призыв к действию")
	}
	if strings.Count(script, "?") >= 2 {
		strengths = append(strengths, "Хорошо задает вопросы клиенту")
	}
	if containsAny(strings.ToLower(script), []string{"представьте", "почувствуете"}) {
		strengths = append(strengths, "Использует визуализацию для вовлечения")
	}

	if len(strengths) == 0 {
		return []string{"Скрипт имеет базовую структуру"}
	}
	return strengths
}

func scriptWeaknesses(script string, scores map[string]float64) []string {
	var weaknesses []string

	if scores["structure"] < 60 {
		weaknesses = append(weaknesses, "Структура скрипта требует улучшения - не хватает четкого приветствия или закрытия")
	}
	if scores["psychology"] < 60 {
		weaknesses = append(weaknesses, "Недостаточно психологических триггеров - добавьте эмпатию и выгоды для клиента")
	}
	if scores["softness"] < 60 {
		weaknesses = append(weaknesses, "Слишком агрессивный тон - смягчите формулировки")
	}
	if scores["engagement"] < 60 {
		weaknesses = append(weaknesses, "Низкая вовлеченность - добавьте больше вопросов и эмоциональных триггеров")
	}
	if scores["cta"] < 60 {
		weaknesses = append(weaknesses, "Нечеткий призыв к действию - сделайте следующий шаг более понятным")
	}
	if strings.Count(script, "?") < 2 {
		weaknesses = append(weaknesses, "Мало вопросов - диалог должен быть двусторонним")
	}
	if wordCount(script) < scriptMinWords {
		weaknesses = append(weaknesses, "Скрипт слишком короткий - добавьте больше деталей")
	}

	if len(weaknesses) == 0 {
		return []string{"Требуется доработка отдельных элементов"}
	}
	return weaknesses
}

func scriptSuggestions(script string, weaknesses []string) []string {
	var suggestions []string
	lower := strings.ToLower(script)
	joined := strings.ToLower(strings.Join(weaknesses, " "))

	if strings.Contains(joined, "приветстви") || !containsAny(lower, []string{"привет", "здравствуй"}) {
		suggestions = append(suggestions, "Добавьте теплое приветствие: 'Привет! Меня зовут [имя] из компании На Счастье'")
	}
	if strings.Contains(joined, "вопросов") || strings.Count(script, "?") < 2 {
		suggestions = append(suggestions, "Добавьте открытые вопросы: 'Расскажите, для кого песня?', 'Какая у вас история?'")
	}
	if strings.Contains(joined, "психолог") {
		suggestions = append(suggestions, "Используйте эмпатию: 'Понимаю, как важно сделать особенный подарок'")
	}
	if strings.Contains(joined, "эмоц") || strings.Contains(joined, "вовлеч") {
		suggestions = append(suggestions, "Добавьте визуализацию: 'Представьте реакцию, когда она услышит песню о вашей истории'")
	}
	if strings.Contains(joined, "призыв") || strings.Contains(joined, "действи") {
		suggestions = append(suggestions, "Сделайте четкий CTA: 'Давайте начнем с того, что вы расскажете историю?'")
	}
	if strings.Contains(joined, "агрессив") {
		suggestions = append(suggestions, "Замените императивы на мягкие формулировки: 'давайте' вместо 'вы должны'")
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Добавьте больше персонализации и обращений к клиенту",
			"Используйте конкретные примеры из практики")
	}
	return suggestions
}

// improvedScript wraps the original script into a template applying the top
// suggestions. TODO: generate a real rewrite through the persona responder.
func improvedScript(script string, suggestions []string) string {
	parts := []string{
		"Привет! Меня зовут [Ваше имя], я из компании \"На Счастье\".",
		"Мы создаем персонализированные песни - уникальные музыкальные подарки на основе реальных историй.",
		"",
		strings.TrimSpace(script),
		"",
		"Расскажите, для кого планируете подарок? Какая у вас история?",
		"",
		"Представьте реакцию, когда этот человек услышит песню, созданную специально о ваших моментах!",
		"",
		"Давайте начнем? Я задам несколько вопросов, чтобы понять вашу историю.",
	}

	if len(suggestions) > 0 {
		parts = append(parts, "", "Рекомендации для улучшения:")
		for i, s := range suggestions {
			if i == 3 {
				break
			}
			parts = append(parts, "• "+s)
		}
	}

	return strings.Join(parts, "\n")
}

// OverallScriptFeedback gives the one-line verdict for a 0-100 script score.
func OverallScriptFeedback(score float64) string {
	switch {
	case score >= 85:
		return "🌟 Отличный скрипт! Профессиональный уровень."
	case score >= 70:
		return "👍 Хороший скрипт с небольшими замечаниями."
	case score >= 55:
		return "📝 Средний уровень. Есть что улучшить."
	default:
		return "⚠️ Требуется серьезная доработка."
	}
}
