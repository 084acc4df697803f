// Package scenario runs the training drills. Each drill kind is described
// declaratively by a Descriptor; one Engine executes all of them against the
// dialog repository and the persona responder.
package scenario

import (
	"context"

	"github.com/naschastye/salesim/internal/app/scoring"
	"github.com/naschastye/salesim/internal/domain"
)

// Responder produces client and coach replies. It never fails; degraded
// backends fall back to canned text.
type Responder interface {
	Reply(ctx context.Context, role string, history []domain.ChatMessage) string
}

// Progression says how a drill moves through its lifecycle.
type Progression int

const (
	// ProgressStages walks a fixed stage list, advancing on good turns.
	ProgressStages Progression = iota
	// ProgressRounds counts manager turns against a round budget and then
	// completes.
	ProgressRounds
	// ProgressOpen never completes on its own.
	ProgressOpen
)

// Stage is one step of a staged drill.
type Stage struct {
	Name        string
	Description string
	Criteria    []string
	CoachHint   string
}

// SubScenario is one concrete variant of a drill (an objection type, an
// upsell situation, a client personality, an exam program).
type SubScenario struct {
	Key     string
	Name    string
	Context string
	Opening string // initial client message, empty when the manager opens
	Goal    string
	Rounds  int // overrides the descriptor round budget when > 0
}

// CoachInput carries everything a descriptor needs to produce coach feedback
// for one turn.
type CoachInput struct {
	Sub         SubScenario
	Stage       Stage
	Text        string
	Eval        scoring.Evaluation
	Round       int
	TotalRounds int
	FinalRound  bool
}

// Descriptor is the declarative definition of one drill kind.
type Descriptor struct {
	Kind         domain.ScenarioKind
	Progression  Progression
	Stages       []Stage
	SubScenarios []SubScenario

	// HistoryWindow limits how much of the timeline the client persona
	// sees. IncludeCoachHistory keeps coach messages in that window.
	HistoryWindow       int
	IncludeCoachHistory bool

	// RoundBudget is the default round count for ProgressRounds drills.
	RoundBudget int

	// NoClient drills have no simulated client; only the coach replies.
	NoClient bool

	// AdvanceScore and AdvanceWords gate stage advancement for
	// ProgressStages drills.
	AdvanceScore float64
	AdvanceWords int

	Evaluate func(text string, round int) scoring.Evaluation

	// Intro builds the coach message that opens a session.
	Intro func(sub SubScenario) string

	// ClientContext builds the situational line appended to the client
	// persona's history.
	ClientContext func(sub SubScenario, stage Stage, text string) string

	// Coach returns either a prompt for the coach persona or a ready
	// note. A non-empty prompt wins; otherwise note is used verbatim.
	Coach func(in CoachInput) (prompt, note string)
}

func (d Descriptor) initialStage() string {
	switch d.Progression {
	case ProgressStages:
		if len(d.Stages) > 0 {
			return d.Stages[0].Name
		}
		return "active"
	case ProgressRounds:
		return "round_1"
	default:
		return "active"
	}
}

func (d Descriptor) stageByName(name string) Stage {
	for _, s := range d.Stages {
		if s.Name == name {
			return s
		}
	}
	if len(d.Stages) > 0 {
		return d.Stages[0]
	}
	return Stage{Name: name}
}

func (d Descriptor) nextStage(current string) (string, bool) {
	for i, s := range d.Stages {
		if s.Name == current {
			if i < len(d.Stages)-1 {
				return d.Stages[i+1].Name, true
			}
			return current, false
		}
	}
	return current, false
}

func (d Descriptor) subByKey(key string) (SubScenario, bool) {
	for _, s := range d.SubScenarios {
		if s.Key == key {
			return s, true
		}
	}
	return SubScenario{}, false
}

func (d Descriptor) rounds(sub SubScenario) int {
	if sub.Rounds > 0 {
		return sub.Rounds
	}
	return d.RoundBudget
}
