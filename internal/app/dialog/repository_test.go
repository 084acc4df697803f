package dialog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naschastye/salesim/internal/adapters/storage/memory"
	"github.com/naschastye/salesim/internal/app/dialog"
	"github.com/naschastye/salesim/internal/domain"
)

func testClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestRepo() *dialog.Repository {
	return dialog.NewRepositoryWithClock(memory.NewStore(), testClock())
}

func TestStartOverwritesExistingSession(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, err := repo.Append(ctx, "u1", domain.ScenarioArena, "s1", domain.RoleManager, "привет", dialog.AppendInput{})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	sess, err := repo.Start(ctx, "u1", domain.ScenarioArena, "s1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(sess.Messages) != 0 || sess.TurnCount != 0 {
		t.Fatalf("restart should wipe history, got %d messages turn=%d", len(sess.Messages), sess.TurnCount)
	}
}

func TestAppendAutoCreates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	sess, err := repo.Append(ctx, "u1", domain.ScenarioExam, "s1", domain.RoleManager, "Здравствуйте!", dialog.AppendInput{})
	if err != nil {
		t.Fatalf("Append on missing session failed: %v", err)
	}
	if sess.TurnCount != 1 {
		t.Fatalf("manager message should bump turn count, got %d", sess.TurnCount)
	}
	if sess.Stage != "init" {
		t.Fatalf("fresh session stage = %q", sess.Stage)
	}
}

func TestTurnCountOnlyTracksManager(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, _ = repo.Start(ctx, "u1", domain.ScenarioObjections, "s1")
	_, _ = repo.Append(ctx, "u1", domain.ScenarioObjections, "s1", domain.RoleManager, "m1", dialog.AppendInput{})
	_, _ = repo.Append(ctx, "u1", domain.ScenarioObjections, "s1", domain.RoleClient, "c1", dialog.AppendInput{})
	_, _ = repo.Append(ctx, "u1", domain.ScenarioObjections, "s1", domain.RoleCoach, "k1", dialog.AppendInput{})
	sess, _ := repo.Append(ctx, "u1", domain.ScenarioObjections, "s1", domain.RoleManager, "m2", dialog.AppendInput{})

	if sess.TurnCount != 2 {
		t.Fatalf("expected 2 manager turns, got %d", sess.TurnCount)
	}
	if len(sess.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(sess.Messages))
	}
}

func TestAppendUpdatesStageAndScores(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, _ = repo.Start(ctx, "u1", domain.ScenarioMasterPath, "s1")
	sess, err := repo.Append(ctx, "u1", domain.ScenarioMasterPath, "s1", domain.RoleCoach, "note",
		dialog.AppendInput{Stage: "story", Scores: map[string]float64{"warmth": 8}})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if sess.Stage != "story" {
		t.Fatalf("stage not updated, got %q", sess.Stage)
	}
	if sess.Scores["warmth"] != 8 {
		t.Fatalf("scores not updated, got %v", sess.Scores)
	}
}

func TestGetMissingSession(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.Get(context.Background(), "ghost", domain.ScenarioExam, "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateMetadataMerges(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, _ = repo.Start(ctx, "u1", domain.ScenarioUpsell, "s1")
	_, _ = repo.UpdateMetadata(ctx, "u1", domain.ScenarioUpsell, "s1", map[string]any{"current_round": 1, "goal": "продать"})
	sess, err := repo.UpdateMetadata(ctx, "u1", domain.ScenarioUpsell, "s1", map[string]any{"current_round": 2})
	if err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	if sess.MetaInt("current_round", 0) != 2 {
		t.Fatalf("expected current_round 2, got %v", sess.Metadata["current_round"])
	}
	if sess.MetaString("goal") != "продать" {
		t.Fatalf("merge dropped existing key: %v", sess.Metadata)
	}
}

func TestListFiltersByScenario(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, _ = repo.Start(ctx, "u1", domain.ScenarioArena, "s1")
	_, _ = repo.Start(ctx, "u1", domain.ScenarioArena, "s2")
	_, _ = repo.Start(ctx, "u1", domain.ScenarioExam, "s3")
	_, _ = repo.Start(ctx, "u2", domain.ScenarioArena, "s4")

	all, err := repo.List(ctx, "u1", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions for u1, got %d", len(all))
	}

	arena, _ := repo.List(ctx, "u1", domain.ScenarioArena)
	if len(arena) != 2 {
		t.Fatalf("expected 2 arena sessions, got %d", len(arena))
	}

	// Newest first by update time.
	if len(all) > 1 && all[0].UpdatedAt.Before(all[1].UpdatedAt) {
		t.Fatalf("sessions not sorted newest first")
	}
}

func TestRoundTripPreservesDocument(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()

	_, _ = repo.Start(ctx, "u1", domain.ScenarioExam, "s1")
	_, _ = repo.Append(ctx, "u1", domain.ScenarioExam, "s1", domain.RoleManager, "Привет!", dialog.AppendInput{})
	_, _ = repo.UpdateMetadata(ctx, "u1", domain.ScenarioExam, "s1", map[string]any{"completed": true, "round_scores": []float64{7.5, 8}})

	sess, err := repo.Get(ctx, "u1", domain.ScenarioExam, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !sess.Completed() {
		t.Fatalf("completed flag lost")
	}
	got := sess.MetaFloats("round_scores")
	if len(got) != 2 || got[0] != 7.5 {
		t.Fatalf("round scores lost: %v", got)
	}
	if sess.Messages[0].Content != "Привет!" {
		t.Fatalf("message content lost: %v", sess.Messages[0])
	}
}
