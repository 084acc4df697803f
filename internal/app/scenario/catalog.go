package scenario

import (
	"fmt"
	"strings"

	"github.com/naschastye/salesim/internal/app/scoring"
	"github.com/naschastye/salesim/internal/domain"
)

// Catalog returns the descriptors of every supported drill, keyed by kind.
func Catalog() map[domain.ScenarioKind]Descriptor {
	return map[domain.ScenarioKind]Descriptor{
		domain.ScenarioMasterPath: masterPathDescriptor(),
		domain.ScenarioObjections: objectionsDescriptor(),
		domain.ScenarioUpsell:     upsellDescriptor(),
		domain.ScenarioArena:      arenaDescriptor(),
		domain.ScenarioExam:       examDescriptor(),
		domain.ScenarioScriptLab:  scriptLabDescriptor(),
	}
}

func masterPathDescriptor() Descriptor {
	stages := []Stage{
		{
			Name:        "greeting",
			Description: "Первое касание с клиентом",
			Criteria: []string{
				"Тёплое приветствие",
				"Представление себя и проекта",
				"Вопрос: 'Кому хотите подарить песню?'",
			},
			CoachHint: "При первом касании важно создать тёплую атмосферу. Представься, кратко расскажи о проекте и задай открытый вопрос про получателя подарка.",
		},
		{
			Name:        "story",
			Description: "Сбор истории клиента",
			Criteria: []string{
				"Вопросы про имена людей",
				"Сколько времени вместе",
				"Как познакомились",
				"Какие моменты важны для песни",
			},
			CoachHint: "Собери детали истории: имена, важные даты, как познакомились, что клиент хочет передать в песне. Задавай открытые вопросы.",
		},
		{
			Name:        "texts",
			Description: "Подготовка вариантов текста песни",
			Criteria: []string{
				"Объяснение, что готовятся 2 варианта текста",
				"Уточнение деталей для текста",
				"Сроки подготовки",
			},
			CoachHint: "Объясни, что подготовишь два варианта текста на основе истории. Уточни оставшиеся детали и озвучь сроки.",
		},
		{
			Name:        "genre",
			Description: "Выбор жанра и исполнителя",
			Criteria: []string{
				"Предложение жанров",
				"Примеры исполнителей",
				"Учёт предпочтений клиента",
			},
			CoachHint: "Предложи несколько жанров (поп, рок, джаз и т.д.) и спроси, какие исполнители нравятся. Это поможет создать идеальное звучание.",
		},
		{
			Name:        "payment",
			Description: "Объяснение оплаты",
			Criteria: []string{
				"Мягкое объяснение предоплаты",
				"Прозрачная логика ('всё создаётся с нуля')",
				"Без извинений и давления",
			},
			CoachHint: "Объясни предоплату честно и прозрачно: всё создаётся индивидуально по их истории. Не извиняйся, а покажи ценность персонального подхода.",
		},
		{
			Name:        "demo",
			Description: "Отправка демо-версий",
			Criteria: []string{
				"Отправка 2 демо",
				"Предложение выбрать сердцем",
				"Возможность объединить лучшее",
			},
			CoachHint: "Отправь два демо и предложи послушать сердцем. Можно выбрать одно или объединить лучшие элементы обоих.",
		},
		{
			Name:        "final",
			Description: "Финальная версия и завершение",
			Criteria: []string{
				"Утверждение финальной версии",
				"Сроки готовности",
				"Тёплое завершение",
			},
			CoachHint: "Зафиксируй выбор клиента, озвучь сроки готовности финальной версии и поблагодари за доверие.",
		},
	}

	return Descriptor{
		Kind:                domain.ScenarioMasterPath,
		Progression:         ProgressStages,
		Stages:              stages,
		HistoryWindow:       5,
		IncludeCoachHistory: true,
		AdvanceScore:        6.5,
		AdvanceWords:        15,
		Evaluate: func(text string, _ int) scoring.Evaluation {
			return scoring.EvaluateStageMessage(text)
		},
		Intro: func(SubScenario) string {
			return `Привет! 👋

Это тренировка полного цикла сделки в проекте "На Счастье".
Ты пройдёшь все этапы: от первого касания до финальной песни.

Я буду в роли твоего коуча — подскажу, что можно улучшить.
"Клиент" будет отвечать как живой человек.

**Твоя первая задача:** напиши тёплое приветствие клиенту.
Представься, кратко расскажи о проекте и задай вопрос про получателя подарка.`
		},
		ClientContext: func(_ SubScenario, stage Stage, text string) string {
			return fmt.Sprintf("Этап сделки: %s. Менеджер написал: %s", stage.Description, text)
		},
		Coach: func(in CoachInput) (string, string) {
			var criteria strings.Builder
			for _, c := range in.Stage.Criteria {
				criteria.WriteString("- " + c + "\n")
			}
			prompt := fmt.Sprintf(`Менеджер на этапе "%s" написал: "%s"

Оценки: тепло=%.0f, вопросы=%.0f, ясность=%.0f

Критерии этапа:
%s
Подсказка: %s

Дай краткий совет (2-3 предложения), что улучшить или что хорошо.`,
				in.Stage.Name, in.Text,
				in.Eval.Scores["warmth"], in.Eval.Scores["questions"], in.Eval.Scores["clarity"],
				criteria.String(), in.Stage.CoachHint)
			return prompt, ""
		},
	}
}

func objectionsDescriptor() Descriptor {
	subs := []SubScenario{
		{
			Key:     "price",
			Name:    "Дорого",
			Context: "Клиент считает цену высокой",
			Opening: "Звучит интересно, но... это довольно дорого. Я не уверен, что готов столько платить.",
		},
		{
			Key:     "distrust",
			Name:    "Недоверие",
			Context: "Клиент не доверяет услуге",
			Opening: "Хм, я раньше не слышал о таком. Как я могу быть уверен, что это не обман?",
		},
		{
			Key:     "think",
			Name:    "Подумать",
			Context: "Клиент хочет отложить решение",
			Opening: "Интересно, но мне нужно подумать. Можно я вам позже напишу?",
		},
		{
			Key:     "later",
			Name:    "Позже",
			Context: "Клиент откладывает на потом",
			Opening: "Сейчас не очень удобно. Может, через месяц-другой...",
		},
		{
			Key:     "not_needed",
			Name:    "Не нужно",
			Context: "Клиент сомневается в необходимости",
			Opening: "Я подумал... наверное, это не для меня. Не уверен, что нам нужна песня.",
		},
	}

	return Descriptor{
		Kind:          domain.ScenarioObjections,
		Progression:   ProgressOpen,
		SubScenarios:  subs,
		HistoryWindow: 6,
		Evaluate: func(text string, _ int) scoring.Evaluation {
			return scoring.EvaluateObjection(text)
		},
		Intro: func(sub SubScenario) string {
			return fmt.Sprintf(`🎯 **Тренировка: Отработка возражений**

Тип возражения: **%s**

Твоя задача — отработать возражение мягко и эмпатично.

**Критерии:**
✓ Проявить эмпатию (понять чувства клиента)
✓ Дать развёрнутый ответ (не односложный)
✓ Задать вопрос в конце (поддержать диалог)

Не дави на клиента — помоги ему самому принять решение.

Клиент сейчас напишет возражение, а ты попробуй его отработать.`, sub.Name)
		},
		ClientContext: func(sub SubScenario, _ Stage, text string) string {
			return fmt.Sprintf("Контекст: %s. Менеджер ответил: %s", sub.Context, text)
		},
		Coach: func(in CoachInput) (string, string) {
			prompt := fmt.Sprintf(`Менеджер отрабатывает возражение "%s".

Его ответ: "%s"

Оценки: эмпатия=%.0f, длина=%.0f, вопрос=%.0f

Дай краткую обратную связь (2-3 предложения):
- Что получилось хорошо
- Что улучшить для мягкой отработки возражения без давления`,
				in.Sub.Name, in.Text,
				in.Eval.Scores["empathy"], in.Eval.Scores["length"], in.Eval.Scores["question"])
			return prompt, ""
		},
	}
}

func upsellDescriptor() Descriptor {
	subs := []SubScenario{
		{
			Key:     "texts_warmup",
			Name:    "Подогрев перед текстами",
			Context: "Клиент заказал песню, сейчас этап подготовки текстов",
			Opening: "Хорошо, жду ваши варианты текстов. Когда будут готовы?",
			Goal:    "Мягко упомянуть, что будет 2 варианта текста, создавая ожидание ценности",
		},
		{
			Key:     "both_demos",
			Name:    "Оба демо",
			Context: "Клиент прослушал два демо и выбирает",
			Opening: "Оба варианта классные! Сложно выбрать... Наверное, возьму первый.",
			Goal:    "Предложить взять оба демо в разных жанрах - больше вариантов для подарков",
		},
		{
			Key:     "ladder_2_to_4",
			Name:    "Лестница 2→4 песни",
			Context: "Клиент уже взял 2 песни",
			Opening: "Спасибо! Мне очень нравится, как вы работаете. Эти две песни будут отличным подарком.",
			Goal:    "Предложить акцию: при заказе 3-й песни — 4-я в подарок. Готовые подарки для разных людей",
		},
		{
			Key:     "additional_version",
			Name:    "Дополнительная версия",
			Context: "Клиент доволен финальной песней",
			Opening: "Песня получилась потрясающей! Спасибо вам большое!",
			Goal:    "Предложить дополнительную версию (акустика, ремикс) со скидкой",
		},
	}

	return Descriptor{
		Kind:          domain.ScenarioUpsell,
		Progression:   ProgressRounds,
		SubScenarios:  subs,
		HistoryWindow: 6,
		RoundBudget:   4,
		Evaluate: func(text string, _ int) scoring.Evaluation {
			return scoring.EvaluateUpsell(text)
		},
		Intro: func(sub SubScenario) string {
			return fmt.Sprintf(`💎 **Тренировка: Допродажи**

Сценарий: **%s**

Контекст: %s

Твоя задача: %s

**Важно:**
✓ Не дави — подсвети выгоду и удобство
✓ Покажи ценность через эмоции и практичность
✓ Дай клиенту самому захотеть больше

Клиент сейчас напишет, а ты попробуй сделать допродажу мягко и естественно.`,
				sub.Name, sub.Context, sub.Goal)
		},
		ClientContext: func(sub SubScenario, _ Stage, text string) string {
			return fmt.Sprintf("Контекст: %s. Менеджер предлагает: %s", sub.Context, text)
		},
		Coach: func(in CoachInput) (string, string) {
			prompt := fmt.Sprintf(`Менеджер делает допродажу в сценарии "%s".

Цель: %s

Его предложение: "%s"

Оценки: ценность=%.0f, нет давления=%.0f, практичность=%.0f

Дай краткую обратную связь (2-3 предложения):
- Что удалось в допродаже
- Как усилить ценность предложения без давления`,
				in.Sub.Name, in.Sub.Goal, in.Text,
				in.Eval.Scores["value_shown"], in.Eval.Scores["no_pressure"], in.Eval.Scores["practical"])
			return prompt, ""
		},
	}
}

func arenaDescriptor() Descriptor {
	subs := []SubScenario{
		{
			Key:     "calm",
			Name:    "Спокойный",
			Context: "Вдумчивый клиент, задаёт много вопросов, принимает решения медленно",
		},
		{
			Key:     "doubtful",
			Name:    "Сомневающийся",
			Context: "Клиент с множеством сомнений, нужно много эмпатии и терпения",
		},
		{
			Key:     "price_focused",
			Name:    "Ценовой",
			Context: "Клиент очень чувствителен к цене, ищет скидки и выгоду",
		},
		{
			Key:     "enthusiastic",
			Name:    "Восторженный",
			Context: "Клиент в восторге от идеи, но может потерять интерес если затянуть",
		},
		{
			Key:     "busy",
			Name:    "Занятой",
			Context: "Клиент торопится, хочет быстрых ответов и конкретики",
		},
	}

	return Descriptor{
		Kind:          domain.ScenarioArena,
		Progression:   ProgressOpen,
		SubScenarios:  subs,
		HistoryWindow: 8,
		Evaluate: func(text string, round int) scoring.Evaluation {
			s := scoring.EvaluateMessage(text, round)
			return scoring.Evaluation{
				Scores:  map[string]float64{"overall": s},
				Overall: s,
				Passed:  s >= 6,
			}
		},
		Intro: func(sub SubScenario) string {
			return fmt.Sprintf(`🎪 **Арена свободных диалогов**

Тип клиента: **%s**
%s

Это свободная практика. Веди диалог естественно, адаптируйся под клиента.

Я буду давать короткий анализ после каждого твоего сообщения.

Начинай диалог с приветствия!`, sub.Name, sub.Context)
		},
		ClientContext: func(sub SubScenario, _ Stage, text string) string {
			return fmt.Sprintf("Ты - %s. Менеджер написал: %s", sub.Context, text)
		},
		Coach: func(in CoachInput) (string, string) {
			prompt := fmt.Sprintf(`Менеджер общается с клиентом типа "%s" (%s).

Сообщение менеджера: "%s"

Это %d-й ход диалога.

Дай очень краткий анализ (1-2 предложения): что хорошо или что стоит учесть с таким типом клиента.`,
				in.Sub.Name, in.Sub.Context, in.Text, in.Round)
			return prompt, ""
		},
	}
}

func examDescriptor() Descriptor {
	subs := []SubScenario{
		{
			Key:     "master_path_short",
			Name:    "Быстрый цикл сделки",
			Context: "Пройди основные этапы: приветствие, история, оплата",
			Rounds:  5,
		},
		{
			Key:     "objection_handling",
			Name:    "Комплексные возражения",
			Context: "Отработай 3 разных возражения подряд",
			Rounds:  3,
		},
		{
			Key:     "upsell_combo",
			Name:    "Связка допродаж",
			Context: "Сделай 2 допродажи в одном диалоге",
			Rounds:  4,
		},
		{
			Key:     "mixed_arena",
			Name:    "Смешанная арена",
			Context: "Работа с разными типами клиентов",
			Rounds:  5,
		},
	}

	return Descriptor{
		Kind:          domain.ScenarioExam,
		Progression:   ProgressRounds,
		SubScenarios:  subs,
		HistoryWindow: 6,
		RoundBudget:   5,
		Evaluate: func(text string, _ int) scoring.Evaluation {
			s := scoring.EvaluateExamRound(text)
			return scoring.Evaluation{
				Scores:  map[string]float64{"overall": s},
				Overall: s,
				Passed:  s >= 6,
			}
		},
		Intro: func(sub SubScenario) string {
			return fmt.Sprintf(`📝 **ЭКЗАМЕН**

Сценарий: **%s**
%s

Раундов: %d

Это финальная проверка твоих навыков. Я буду оценивать:
✓ Эмпатию и тепло
✓ Структуру диалога
✓ Работу с возражениями
✓ Естественность общения

В конце получишь балл 0-100 и вердикт.

Начинаем! Твой первый ход — приветствие клиенту.`, sub.Name, sub.Context, sub.Rounds)
		},
		ClientContext: func(_ SubScenario, _ Stage, text string) string {
			return "Менеджер написал: " + text
		},
		Coach: func(in CoachInput) (string, string) {
			note := fmt.Sprintf("Раунд %d: %.0f/10", in.Round, in.Eval.Overall)
			if in.FinalRound {
				note += "\n\nЭкзамен завершён! Запроси результат."
			} else {
				note += fmt.Sprintf("\nПродолжаем, раунд %d/%d", in.Round+1, in.TotalRounds)
			}
			return "", note
		},
	}
}

func scriptLabDescriptor() Descriptor {
	subs := []SubScenario{
		{
			Key:     "full_sale",
			Name:    "Полная продажа",
			Context: "Весь процесс от первого касания до закрытия сделки",
		},
		{
			Key:     "first_contact",
			Name:    "Первый контакт",
			Context: "Приветствие и установление контакта",
		},
		{
			Key:     "objection_handling",
			Name:    "Работа с возражениями",
			Context: "Ответы на возражения клиента",
		},
		{
			Key:     "upsell",
			Name:    "Допродажа",
			Context: "Предложение дополнительных продуктов",
		},
		{
			Key:     "closing",
			Name:    "Закрытие сделки",
			Context: "Финализация и получение оплаты",
		},
	}

	return Descriptor{
		Kind:         domain.ScenarioScriptLab,
		Progression:  ProgressRounds,
		SubScenarios: subs,
		RoundBudget:  3,
		NoClient:     true,
		Evaluate: func(text string, _ int) scoring.Evaluation {
			a := scoring.AnalyzeScript(text)
			return scoring.Evaluation{
				Scores:  a.CriterionScores(),
				Overall: a.Overall / 10,
				Passed:  a.Overall >= 70,
			}
		},
		Intro: func(sub SubScenario) string {
			return fmt.Sprintf(`🧪 **Лаборатория скриптов**

Сценарий: **%s**
%s

Присылай свой скрипт продажи, я разберу его по пяти критериям:
структура, психология, мягкость, вовлечение и призыв к действию.

У тебя несколько попыток — улучшай скрипт по моим замечаниям.`, sub.Name, sub.Context)
		},
		ClientContext: func(SubScenario, Stage, string) string { return "" },
		Coach: func(in CoachInput) (string, string) {
			a := scoring.AnalyzeScript(in.Text)
			var b strings.Builder
			fmt.Fprintf(&b, "Оценка скрипта: %.0f/100\n%s\n", a.Overall, scoring.OverallScriptFeedback(a.Overall))
			if len(a.Strengths) > 0 {
				b.WriteString("\nСильные стороны:\n")
				for _, s := range a.Strengths {
					b.WriteString("✓ " + s + "\n")
				}
			}
			if len(a.Weaknesses) > 0 {
				b.WriteString("\nНад чем поработать:\n")
				for _, w := range a.Weaknesses {
					b.WriteString("• " + w + "\n")
				}
			}
			if in.FinalRound {
				b.WriteString("\nПопытки закончились. Запроси итоговый результат.")
			} else {
				fmt.Fprintf(&b, "\nПопытка %d/%d. Доработай скрипт и пришли снова.", in.Round, in.TotalRounds)
			}
			return "", strings.TrimRight(b.String(), "\n")
		},
	}
}
