package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/naschastye/salesim/internal/app/dialog"
	"github.com/naschastye/salesim/internal/app/scoring"
	"github.com/naschastye/salesim/internal/domain"
)

// Engine runs every drill kind against the dialog repository and the persona
// responder. Randomness is confined to sub-scenario selection; everything
// after Start is deterministic for a given session.
type Engine struct {
	repo        *dialog.Repository
	responder   Responder
	descriptors map[domain.ScenarioKind]Descriptor
	pick        func(n int) int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPicker overrides the sub-scenario selector, used by tests to pin the
// variant a session gets.
func WithPicker(pick func(n int) int) EngineOption {
	return func(e *Engine) {
		e.pick = pick
	}
}

func NewEngine(repo *dialog.Repository, responder Responder, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:        repo,
		responder:   responder,
		descriptors: Catalog(),
		pick:        rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartOutput is the response to opening a session.
type StartOutput struct {
	Session      *domain.Session
	Sub          SubScenario
	CoachMessage string
	ClientReply  string
	TotalRounds  int
}

// TurnOutput is the response to one manager turn.
type TurnOutput struct {
	Session       *domain.Session
	Stage         string
	PreviousStage string
	StageAdvanced bool
	ClientReply   string
	CoachFeedback string
	Scores        map[string]float64
	Overall       float64
	Round         int
	TotalRounds   int
	FinalRound    bool
	Completed     bool
}

// ResultOutput is the final assessment of a session.
type ResultOutput struct {
	Status          string
	FinalScore      int
	Grade           string
	Verdict         string
	SubName         string
	CurrentRound    int
	TotalRounds     int
	RoundsCompleted int
	RoundScores     []float64
	AverageRound    float64
	Scores          map[string]float64
}

// SnapshotStats summarizes a session timeline.
type SnapshotStats struct {
	TotalMessages   int
	ManagerMessages int
	ClientMessages  int
}

// SnapshotOutput is the full state of a session.
type SnapshotOutput struct {
	Session          *domain.Session
	Stats            SnapshotStats
	StageDescription string
	ProgressPercent  int
}

func (e *Engine) descriptor(kind domain.ScenarioKind) (Descriptor, error) {
	desc, ok := e.descriptors[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("unsupported scenario kind %q", kind)
	}
	return desc, nil
}

// Start opens a fresh session. An empty session id gets a generated one. An
// empty or unknown selector picks a random sub-scenario, so a trainee can
// always just hit start.
func (e *Engine) Start(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID, selector string) (*StartOutput, error) {
	desc, err := e.descriptor(kind)
	if err != nil {
		return nil, err
	}

	if id == "" {
		id = domain.SessionID(uuid.NewString())
	}

	var sub SubScenario
	if len(desc.SubScenarios) > 0 {
		var ok bool
		sub, ok = desc.subByKey(selector)
		if !ok {
			sub = desc.SubScenarios[e.pick(len(desc.SubScenarios))]
		}
	}

	if _, err := e.repo.Start(ctx, owner, kind, id); err != nil {
		return nil, err
	}

	intro := desc.Intro(sub)
	sess, err := e.repo.Append(ctx, owner, kind, id, domain.RoleCoach, intro,
		dialog.AppendInput{Stage: desc.initialStage()})
	if err != nil {
		return nil, err
	}

	opening := ""
	if sub.Opening != "" && !desc.NoClient {
		opening = sub.Opening
		if sess, err = e.repo.Append(ctx, owner, kind, id, domain.RoleClient, opening, dialog.AppendInput{}); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{
		"sub_key":     sub.Key,
		"sub_name":    sub.Name,
		"sub_context": sub.Context,
		"goal":        sub.Goal,
	}
	totalRounds := 0
	if desc.Progression == ProgressRounds {
		totalRounds = desc.rounds(sub)
		fields["current_round"] = 1
		fields["total_rounds"] = totalRounds
		fields["round_scores"] = []float64{}
		fields["completed"] = false
	}
	if sess, err = e.repo.UpdateMetadata(ctx, owner, kind, id, fields); err != nil {
		return nil, err
	}

	return &StartOutput{
		Session:      sess,
		Sub:          sub,
		CoachMessage: intro,
		ClientReply:  opening,
		TotalRounds:  totalRounds,
	}, nil
}

// Turn processes one manager message: score it, let the client react, let the
// coach comment, advance the drill state.
func (e *Engine) Turn(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID, text string) (*TurnOutput, error) {
	desc, err := e.descriptor(kind)
	if err != nil {
		return nil, err
	}

	sess, err := e.repo.Get(ctx, owner, kind, id)
	if err != nil {
		return nil, err
	}
	if sess.Completed() {
		return nil, fmt.Errorf("%w: %s/%s/%s", domain.ErrSessionCompleted, owner, kind, id)
	}

	prior := sess.Messages
	prevStage := sess.Stage
	sub, _ := desc.subByKey(sess.MetaString("sub_key"))
	stage := desc.stageByName(prevStage)
	round := sess.MetaInt("current_round", 1)
	totalRounds := sess.MetaInt("total_rounds", desc.rounds(sub))

	appended, err := e.repo.Append(ctx, owner, kind, id, domain.RoleManager, text, dialog.AppendInput{})
	if err != nil {
		return nil, err
	}

	eval := desc.Evaluate(text, appended.TurnCount-1)
	merged := scoring.MergeRunning(appended.Scores, eval.Scores, appended.TurnCount)

	nextStage := prevStage
	advanced := false
	finalRound := false
	completed := false
	switch desc.Progression {
	case ProgressStages:
		if eval.Overall >= desc.AdvanceScore && len(strings.Fields(text)) >= desc.AdvanceWords {
			if ns, ok := desc.nextStage(prevStage); ok {
				nextStage = ns
				advanced = true
			} else {
				// Passing the last stage ends the drill.
				completed = true
			}
		}
	case ProgressRounds:
		finalRound = round >= totalRounds
		if finalRound {
			nextStage = "completed"
			completed = true
		} else {
			nextStage = fmt.Sprintf("round_%d", round+1)
		}
	case ProgressOpen:
		nextStage = "active"
	}

	clientReply := ""
	if !desc.NoClient {
		history := clientHistory(prior, desc)
		history = append(history, domain.ChatMessage{
			Role:    "user",
			Content: desc.ClientContext(sub, stage, text),
		})
		clientReply = e.responder.Reply(ctx, "client", history)
		if _, err := e.repo.Append(ctx, owner, kind, id, domain.RoleClient, clientReply, dialog.AppendInput{}); err != nil {
			return nil, err
		}
	}

	prompt, note := desc.Coach(CoachInput{
		Sub:         sub,
		Stage:       stage,
		Text:        text,
		Eval:        eval,
		Round:       round,
		TotalRounds: totalRounds,
		FinalRound:  finalRound,
	})
	feedback := note
	if prompt != "" {
		feedback = e.responder.Reply(ctx, "coach", []domain.ChatMessage{{Role: "user", Content: prompt}})
	}

	sess, err = e.repo.Append(ctx, owner, kind, id, domain.RoleCoach, feedback,
		dialog.AppendInput{Stage: nextStage, Scores: merged})
	if err != nil {
		return nil, err
	}

	switch {
	case desc.Progression == ProgressRounds:
		fields := map[string]any{
			"round_scores": append(sess.MetaFloats("round_scores"), eval.Overall),
			"completed":    finalRound,
		}
		if !finalRound {
			fields["current_round"] = round + 1
		}
		if sess, err = e.repo.UpdateMetadata(ctx, owner, kind, id, fields); err != nil {
			return nil, err
		}
	case completed:
		if sess, err = e.repo.UpdateMetadata(ctx, owner, kind, id, map[string]any{"completed": true}); err != nil {
			return nil, err
		}
	}

	return &TurnOutput{
		Session:       sess,
		Stage:         nextStage,
		PreviousStage: prevStage,
		StageAdvanced: advanced,
		ClientReply:   clientReply,
		CoachFeedback: feedback,
		Scores:        eval.Scores,
		Overall:       eval.Overall,
		Round:         round,
		TotalRounds:   totalRounds,
		FinalRound:    finalRound,
		Completed:     completed,
	}, nil
}

// Result computes the final assessment. Round-based drills must be completed
// first; open-ended drills report their running averages at any point.
func (e *Engine) Result(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) (*ResultOutput, error) {
	desc, err := e.descriptor(kind)
	if err != nil {
		return nil, err
	}

	sess, err := e.repo.Get(ctx, owner, kind, id)
	if err != nil {
		return nil, err
	}

	out := &ResultOutput{
		SubName: sess.MetaString("sub_name"),
		Scores:  sess.Scores,
	}

	if desc.Progression == ProgressRounds {
		roundScores := sess.MetaFloats("round_scores")
		if !sess.Completed() {
			out.Status = "in_progress"
			out.CurrentRound = sess.MetaInt("current_round", 1)
			out.TotalRounds = sess.MetaInt("total_rounds", desc.RoundBudget)
			return out, nil
		}

		avg := 0.0
		for _, s := range roundScores {
			avg += s
		}
		if len(roundScores) > 0 {
			avg /= float64(len(roundScores))
		}
		out.Status = "completed"
		out.FinalScore = int(avg / 10 * 100)
		out.RoundsCompleted = len(roundScores)
		out.RoundScores = roundScores
		out.AverageRound = math.Round(avg*10) / 10
	} else {
		// Open and staged drills report their running averages at any
		// point; completion is not a precondition.
		out.Status = "in_progress"
		if sess.Completed() {
			out.Status = "completed"
		}
		if sess.TurnCount == 0 {
			return out, nil
		}
		avg := 0.0
		for _, v := range sess.Scores {
			avg += v
		}
		if len(sess.Scores) > 0 {
			avg /= float64(len(sess.Scores))
		}
		out.FinalScore = int(avg * 10)
	}

	out.Grade, out.Verdict = scoring.Grade(out.FinalScore)
	return out, nil
}

// Snapshot returns the session with timeline statistics.
func (e *Engine) Snapshot(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) (*SnapshotOutput, error) {
	desc, err := e.descriptor(kind)
	if err != nil {
		return nil, err
	}

	sess, err := e.repo.Get(ctx, owner, kind, id)
	if err != nil {
		return nil, err
	}

	out := &SnapshotOutput{
		Session: sess,
		Stats: SnapshotStats{
			TotalMessages:   len(sess.Messages),
			ManagerMessages: sess.CountByRole(domain.RoleManager),
			ClientMessages:  sess.CountByRole(domain.RoleClient),
		},
	}

	if desc.Progression == ProgressStages && len(desc.Stages) > 0 {
		for i, s := range desc.Stages {
			if s.Name == sess.Stage {
				out.StageDescription = s.Description
				out.ProgressPercent = i * 100 / len(desc.Stages)
				break
			}
		}
	}
	return out, nil
}

// Sessions lists an owner's sessions, optionally filtered by kind.
func (e *Engine) Sessions(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind) ([]*domain.Session, error) {
	return e.repo.List(ctx, owner, kind)
}

func clientHistory(messages []domain.Message, desc Descriptor) []domain.ChatMessage {
	window := desc.HistoryWindow
	if window <= 0 {
		window = 6
	}

	start := len(messages) - window
	if start < 0 {
		start = 0
	}

	var history []domain.ChatMessage
	for _, m := range messages[start:] {
		if m.Role == domain.RoleCoach && !desc.IncludeCoachHistory {
			continue
		}
		role := "assistant"
		if m.Role == domain.RoleManager {
			role = "user"
		}
		history = append(history, domain.ChatMessage{Role: role, Content: m.Content})
	}
	return history
}
