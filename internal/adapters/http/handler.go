package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naschastye/salesim/internal/app/scenario"
	"github.com/naschastye/salesim/internal/app/scoring"
	"github.com/naschastye/salesim/internal/domain"
)

type Server struct {
	engine *scenario.Engine
}

func NewServer(engine *scenario.Engine) http.Handler {
	s := &Server{engine: engine}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /training/v1/{kind}/start", s.handleStart)
	mux.HandleFunc("POST /training/v1/{kind}/turn", s.handleTurn)
	mux.HandleFunc("GET /training/v1/{kind}/result/{owner}/{id}", s.handleResult)
	mux.HandleFunc("GET /training/v1/{kind}/snapshot/{owner}/{id}", s.handleSnapshot)

	mux.HandleFunc("GET /dialog/v1/sessions/{owner}", s.handleListSessions)

	mux.HandleFunc("POST /script_lab/v1/analyze", s.handleAnalyzeScript)

	return chainMiddlewares(mux, withCORS, withLogging)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type startRequest struct {
	OwnerID   string `json:"owner_id"`
	SessionID string `json:"session_id,omitempty"`
	Scenario  string `json:"scenario,omitempty"`
}

type startResponse struct {
	SessionID    string `json:"session_id"`
	Scenario     string `json:"scenario"`
	SubKey       string `json:"sub_key,omitempty"`
	SubName      string `json:"sub_name,omitempty"`
	Goal         string `json:"goal,omitempty"`
	Stage        string `json:"stage"`
	CoachMessage string `json:"coach_message"`
	ClientReply  string `json:"client_reply,omitempty"`
	TotalRounds  int    `json:"total_rounds,omitempty"`
	Status       string `json:"status"`
}

type turnRequest struct {
	OwnerID   string `json:"owner_id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type turnResponse struct {
	Stage         string             `json:"stage"`
	PreviousStage string             `json:"previous_stage"`
	StageAdvanced bool               `json:"stage_advanced"`
	ClientReply   string             `json:"client_reply,omitempty"`
	CoachFeedback string             `json:"coach_feedback"`
	Scores        map[string]float64 `json:"scores"`
	OverallScore  float64            `json:"overall_score"`
	Round         int                `json:"round,omitempty"`
	TotalRounds   int                `json:"total_rounds,omitempty"`
	FinalRound    bool               `json:"is_final_round,omitempty"`
	Completed     bool               `json:"completed"`
}

type resultResponse struct {
	Status          string             `json:"status"`
	FinalScore      int                `json:"final_score,omitempty"`
	Grade           string             `json:"grade,omitempty"`
	Verdict         string             `json:"verdict,omitempty"`
	ScenarioName    string             `json:"scenario_name,omitempty"`
	CurrentRound    int                `json:"current_round,omitempty"`
	TotalRounds     int                `json:"total_rounds,omitempty"`
	RoundsCompleted int                `json:"rounds_completed,omitempty"`
	RoundScores     []float64          `json:"round_scores,omitempty"`
	AverageRound    float64            `json:"average_round_score,omitempty"`
	Scores          map[string]float64 `json:"scores,omitempty"`
}

type messageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type snapshotResponse struct {
	SessionID        string             `json:"session_id"`
	OwnerID          string             `json:"owner_id"`
	Scenario         string             `json:"scenario"`
	Stage            string             `json:"stage"`
	StageDescription string             `json:"stage_description,omitempty"`
	ProgressPercent  int                `json:"progress_percent,omitempty"`
	TurnCount        int                `json:"turn_count"`
	Messages         []messageResponse  `json:"messages"`
	Scores           map[string]float64 `json:"scores"`
	Metadata         map[string]any     `json:"metadata"`
	Stats            snapshotStats      `json:"stats"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type snapshotStats struct {
	TotalMessages   int `json:"total_messages"`
	ManagerMessages int `json:"manager_messages"`
	ClientMessages  int `json:"client_messages"`
}

type sessionSummary struct {
	SessionID string    `json:"session_id"`
	Scenario  string    `json:"scenario"`
	Stage     string    `json:"stage"`
	TurnCount int       `json:"turn_count"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type analyzeRequest struct {
	Script   string `json:"script"`
	Scenario string `json:"scenario,omitempty"`
}

type analyzeResponse struct {
	OverallScore    float64            `json:"overall_score"`
	Scores          map[string]float64 `json:"scores"`
	Strengths       []string           `json:"strengths"`
	Weaknesses      []string           `json:"weaknesses"`
	Suggestions     []string           `json:"suggestions"`
	ImprovedVersion string             `json:"improved_version,omitempty"`
	Feedback        string             `json:"feedback"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseScenarioKind(r.PathValue("kind"))
	if !ok {
		badRequest(w, "unknown scenario kind")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.OwnerID == "" {
		badRequest(w, "owner_id is required")
		return
	}

	out, err := s.engine.Start(r.Context(), domain.OwnerID(req.OwnerID), kind,
		domain.SessionID(req.SessionID), req.Scenario)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{
		SessionID:    string(out.Session.SessionID),
		Scenario:     string(kind),
		SubKey:       out.Sub.Key,
		SubName:      out.Sub.Name,
		Goal:         out.Sub.Goal,
		Stage:        out.Session.Stage,
		CoachMessage: out.CoachMessage,
		ClientReply:  out.ClientReply,
		TotalRounds:  out.TotalRounds,
		Status:       "active",
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseScenarioKind(r.PathValue("kind"))
	if !ok {
		badRequest(w, "unknown scenario kind")
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.OwnerID == "" || req.SessionID == "" {
		badRequest(w, "owner_id and session_id are required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.engine.Turn(r.Context(), domain.OwnerID(req.OwnerID), kind,
		domain.SessionID(req.SessionID), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		Stage:         out.Stage,
		PreviousStage: out.PreviousStage,
		StageAdvanced: out.StageAdvanced,
		ClientReply:   out.ClientReply,
		CoachFeedback: out.CoachFeedback,
		Scores:        out.Scores,
		OverallScore:  out.Overall,
		Round:         out.Round,
		TotalRounds:   out.TotalRounds,
		FinalRound:    out.FinalRound,
		Completed:     out.Completed,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseScenarioKind(r.PathValue("kind"))
	if !ok {
		badRequest(w, "unknown scenario kind")
		return
	}

	out, err := s.engine.Result(r.Context(), domain.OwnerID(r.PathValue("owner")), kind,
		domain.SessionID(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		Status:          out.Status,
		FinalScore:      out.FinalScore,
		Grade:           out.Grade,
		Verdict:         out.Verdict,
		ScenarioName:    out.SubName,
		CurrentRound:    out.CurrentRound,
		TotalRounds:     out.TotalRounds,
		RoundsCompleted: out.RoundsCompleted,
		RoundScores:     out.RoundScores,
		AverageRound:    out.AverageRound,
		Scores:          out.Scores,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseScenarioKind(r.PathValue("kind"))
	if !ok {
		badRequest(w, "unknown scenario kind")
		return
	}

	out, err := s.engine.Snapshot(r.Context(), domain.OwnerID(r.PathValue("owner")), kind,
		domain.SessionID(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return
	}

	sess := out.Session
	writeJSON(w, http.StatusOK, snapshotResponse{
		SessionID:        string(sess.SessionID),
		OwnerID:          string(sess.OwnerID),
		Scenario:         string(sess.Scenario),
		Stage:            sess.Stage,
		StageDescription: out.StageDescription,
		ProgressPercent:  out.ProgressPercent,
		TurnCount:        sess.TurnCount,
		Messages:         toMessagesResponse(sess.Messages),
		Scores:           sess.Scores,
		Metadata:         sess.Metadata,
		Stats: snapshotStats{
			TotalMessages:   out.Stats.TotalMessages,
			ManagerMessages: out.Stats.ManagerMessages,
			ClientMessages:  out.Stats.ClientMessages,
		},
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	owner := domain.OwnerID(r.PathValue("owner"))

	var kind domain.ScenarioKind
	if raw := r.URL.Query().Get("scenario"); raw != "" {
		parsed, ok := domain.ParseScenarioKind(raw)
		if !ok {
			badRequest(w, "unknown scenario kind")
			return
		}
		kind = parsed
	}

	sessions, err := s.engine.Sessions(r.Context(), owner, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionSummary{
			SessionID: string(sess.SessionID),
			Scenario:  string(sess.Scenario),
			Stage:     sess.Stage,
			TurnCount: sess.TurnCount,
			Completed: sess.Completed(),
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out, "total": len(out)})
}

func (s *Server) handleAnalyzeScript(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Script)) < 10 {
		badRequest(w, "script is too short, provide at least 10 characters")
		return
	}

	a := scoring.AnalyzeScript(req.Script)
	writeJSON(w, http.StatusOK, analyzeResponse{
		OverallScore: a.Overall,
		Scores: map[string]float64{
			"structure":  a.Structure,
			"psychology": a.Psychology,
			"softness":   a.Softness,
			"engagement": a.Engagement,
			"cta":        a.CTA,
		},
		Strengths:       a.Strengths,
		Weaknesses:      a.Weaknesses,
		Suggestions:     a.Suggestions,
		ImprovedVersion: a.ImprovedVersion,
		Feedback:        scoring.OverallScriptFeedback(a.Overall),
	})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toMessagesResponse(msgs []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, domain.ErrSessionCompleted):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session already completed"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
