package scoring_test

import (
	"strings"
	"testing"

	"github.com/naschastye/salesim/internal/app/scoring"
)

const strongScript = `Привет! Меня зовут Анна, я из компании На Счастье.
Понимаю, как важно сделать особенный подарок. Мы создаем персонализированные песни
на основе вашей истории. Расскажите, для кого планируете подарок? Какая у вас история?
Представьте реакцию, когда этот человек услышит песню о ваших моментах.
Многие клиенты говорят, что это лучший подарок, который они дарили.
Давайте начнем сегодня? Следующий шаг простой: вы рассказываете историю, мы пишем текст.
Что скажете? Спасибо, жду вашего ответа!`

func TestAnalyzeScriptStrong(t *testing.T) {
	a := scoring.AnalyzeScript(strongScript)

	if a.Overall < 70 {
		t.Fatalf("strong script scored %v, expected >= 70", a.Overall)
	}
	if a.Structure < 90 {
		t.Fatalf("expected near-full structure score, got %v", a.Structure)
	}
	if len(a.Strengths) == 0 {
		t.Fatalf("expected at least one strength")
	}
	if a.ImprovedVersion == "" {
		t.Fatalf("expected an improved version")
	}
}

func TestAnalyzeScriptWeak(t *testing.T) {
	a := scoring.AnalyzeScript("Купите песню. Вы должны решить срочно купите немедленно.")

	if a.Softness >= 60 {
		t.Fatalf("aggressive script should lose softness, got %v", a.Softness)
	}
	if len(a.Weaknesses) == 0 {
		t.Fatalf("expected weaknesses for a weak script")
	}
	found := false
	for _, w := range a.Weaknesses {
		if strings.Contains(w, "вопрос") {
			found = true
		}
	}
	if !found {
		t.Fatalf("scripts without questions should be flagged, got %v", a.Weaknesses)
	}
}

func TestAnalyzeScriptBounds(t *testing.T) {
	for _, script := range []string{"", "а", strongScript} {
		a := scoring.AnalyzeScript(script)
		for name, v := range map[string]float64{
			"overall":    a.Overall,
			"structure":  a.Structure,
			"psychology": a.Psychology,
			"softness":   a.Softness,
			"engagement": a.Engagement,
			"cta":        a.CTA,
		} {
			if v < 0 || v > 100 {
				t.Errorf("%s out of [0,100] for %q: %v", name, script, v)
			}
		}
	}
}

func TestAnalyzeScriptDeterministic(t *testing.T) {
	a := scoring.AnalyzeScript(strongScript)
	b := scoring.AnalyzeScript(strongScript)
	if a.Overall != b.Overall || len(a.Suggestions) != len(b.Suggestions) {
		t.Fatalf("same script analyzed differently: %v vs %v", a.Overall, b.Overall)
	}
}

func TestCriterionScoresRescaled(t *testing.T) {
	a := scoring.AnalyzeScript(strongScript)
	for k, v := range a.CriterionScores() {
		if v < 0 || v > 10 {
			t.Errorf("criterion %s out of [0,10]: %v", k, v)
		}
	}
}

func TestOverallScriptFeedback(t *testing.T) {
	if got := scoring.OverallScriptFeedback(90); !strings.Contains(got, "Отличный") {
		t.Errorf("unexpected feedback for 90: %s", got)
	}
	if got := scoring.OverallScriptFeedback(40); !strings.Contains(got, "доработка") {
		t.Errorf("unexpected feedback for 40: %s", got)
	}
}
