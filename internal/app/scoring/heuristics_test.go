package scoring_test

import (
	"math"
	"testing"

	"github.com/naschastye/salesim/internal/app/scoring"
)

func TestEvaluateObjectionEmpatheticQuestion(t *testing.T) {
	ev := scoring.EvaluateObjection("Я понимаю ваши сомнения, расскажите, что для вас важно в этом подарке?")

	if ev.Scores["empathy"] < 8 {
		t.Fatalf("expected empathy >= 8, got %v", ev.Scores["empathy"])
	}
	if ev.Scores["question"] < 8 {
		t.Fatalf("expected question >= 8, got %v", ev.Scores["question"])
	}
	if !ev.Passed {
		t.Fatalf("expected passing evaluation, got overall %v", ev.Overall)
	}
}

func TestEvaluateObjectionFlatReply(t *testing.T) {
	ev := scoring.EvaluateObjection("Нет.")

	if ev.Passed {
		t.Fatalf("one-word dismissal should not pass, got overall %v", ev.Overall)
	}
	if ev.Scores["question"] != 2 {
		t.Fatalf("expected question score 2 without a question mark, got %v", ev.Scores["question"])
	}
}

func TestEvaluateStageMessageBuckets(t *testing.T) {
	warm := scoring.EvaluateStageMessage("Здравствуйте! Рад знакомству. Расскажите, для кого вы хотите сделать подарок?")
	if warm.Scores["warmth"] != 8 {
		t.Fatalf("expected warmth 8, got %v", warm.Scores["warmth"])
	}
	if warm.Scores["clarity"] != 8 || warm.Scores["length"] != 8 {
		t.Fatalf("10-50 word message should score 8/8, got %v/%v", warm.Scores["clarity"], warm.Scores["length"])
	}

	short := scoring.EvaluateStageMessage("Ок")
	if short.Scores["clarity"] != 4 || short.Scores["length"] != 4 {
		t.Fatalf("short message should score 4/4, got %v/%v", short.Scores["clarity"], short.Scores["length"])
	}
}

func TestEvaluateUpsellPressurePenalty(t *testing.T) {
	pushy := scoring.EvaluateUpsell("Вы должны купить только сейчас, это последний шанс!")
	if pushy.Scores["no_pressure"] != 3 {
		t.Fatalf("expected no_pressure 3 under pressure, got %v", pushy.Scores["no_pressure"])
	}

	soft := scoring.EvaluateUpsell("Многие заказывают несколько разных версий: одну для мамы, одну для семьи. Это особенный подарок и отличная ценность.")
	if soft.Scores["no_pressure"] != 9 {
		t.Fatalf("expected no_pressure 9, got %v", soft.Scores["no_pressure"])
	}
	if soft.Scores["practical"] < 8 {
		t.Fatalf("expected practical >= 8, got %v", soft.Scores["practical"])
	}
}

func TestEvaluateExamRoundCap(t *testing.T) {
	text := "Здравствуйте! Я очень рад знакомству, понимаю, как важно выбрать особенный подарок. Расскажите, пожалуйста, для кого вы его готовите и какая у вас история?"
	if got := scoring.EvaluateExamRound(text); got != 10 {
		t.Fatalf("strong round should cap at 10, got %v", got)
	}
	if got := scoring.EvaluateExamRound(""); got < 1 || got > 10 {
		t.Fatalf("empty round out of range: %v", got)
	}
}

func TestEvaluateMessageClamp(t *testing.T) {
	if got := scoring.EvaluateMessage("", 0); got < 1 {
		t.Fatalf("score below floor: %v", got)
	}

	long := ""
	for i := 0; i < 100; i++ {
		long += "акция скидка срочно "
	}
	if got := scoring.EvaluateMessage(long, 0); got < 1 || got > 10 {
		t.Fatalf("score out of [1,10]: %v", got)
	}
}

func TestEvaluateMessageRoundContext(t *testing.T) {
	text := "Сколько стоит песня и какая цена за доставку?"
	early := scoring.EvaluateMessage(text, 0)
	late := scoring.EvaluateMessage(text, 3)
	if early >= late {
		t.Fatalf("leading with price should cost points early: early=%v late=%v", early, late)
	}
}

func TestScoringIsDeterministic(t *testing.T) {
	text := "Понимаю вас! Расскажите, какая у вас история?"
	a := scoring.EvaluateObjection(text)
	b := scoring.EvaluateObjection(text)
	if a.Overall != b.Overall || len(a.Scores) != len(b.Scores) {
		t.Fatalf("same input scored differently: %v vs %v", a, b)
	}
	for k, v := range a.Scores {
		if b.Scores[k] != v {
			t.Fatalf("criterion %s differs: %v vs %v", k, v, b.Scores[k])
		}
	}
}

func TestMergeRunningMatchesDirectMean(t *testing.T) {
	samples := []float64{8, 3, 6.5, 9}

	avgs := map[string]float64{}
	for i, s := range samples {
		avgs = scoring.MergeRunning(avgs, map[string]float64{"empathy": s}, i+1)
	}

	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	want := sum / float64(len(samples))

	if math.Abs(avgs["empathy"]-want) > 1e-9 {
		t.Fatalf("running average %v, direct mean %v", avgs["empathy"], want)
	}
}

func TestMergeRunningKeepsUntouchedCriteria(t *testing.T) {
	avgs := map[string]float64{"warmth": 7}
	merged := scoring.MergeRunning(avgs, map[string]float64{"empathy": 5}, 2)

	if merged["warmth"] != 7 {
		t.Fatalf("untouched criterion changed: %v", merged["warmth"])
	}
	if merged["empathy"] != 2.5 {
		t.Fatalf("new criterion should average against implicit zero, got %v", merged["empathy"])
	}
	if avgs["empathy"] != 0 {
		t.Fatalf("input map mutated")
	}
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "A"}, {85, "A"}, {84, "B"}, {70, "B"}, {69, "C"}, {55, "C"}, {54, "D"}, {0, "D"},
	}
	for _, c := range cases {
		grade, verdict := scoring.Grade(c.score)
		if grade != c.want {
			t.Errorf("Grade(%d) = %s, want %s", c.score, grade, c.want)
		}
		if verdict == "" {
			t.Errorf("Grade(%d) returned empty verdict", c.score)
		}
	}
}
