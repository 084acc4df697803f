package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/naschastye/salesim/internal/adapters/http"
	"github.com/naschastye/salesim/internal/adapters/storage/memory"
	"github.com/naschastye/salesim/internal/app/dialog"
	"github.com/naschastye/salesim/internal/app/persona"
	"github.com/naschastye/salesim/internal/app/scenario"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	repo := dialog.NewRepository(memory.NewStore())
	responder := persona.NewService(nil, time.Second)
	engine := scenario.NewEngine(repo, responder, scenario.WithPicker(func(int) int { return 0 }))

	return httpadapter.NewServer(engine)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("invalid JSON response for %s %s: %v", method, path, err)
		}
	}
	return w, parsed
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w, body := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestStartAndTurnRoundtrip(t *testing.T) {
	srv := newTestServer(t)

	w, start := doJSON(t, srv, http.MethodPost, "/training/v1/objections/start",
		`{"owner_id":"u1","session_id":"s1","scenario":"price"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d, body=%v", w.Code, start)
	}
	if start["sub_key"] != "price" {
		t.Fatalf("start should honor the selector: %v", start)
	}
	if start["coach_message"] == "" || start["client_reply"] == "" {
		t.Fatalf("start should return coach intro and objection: %v", start)
	}

	w, turn := doJSON(t, srv, http.MethodPost, "/training/v1/objections/turn",
		`{"owner_id":"u1","session_id":"s1","text":"Я понимаю ваши сомнения, расскажите, что для вас важно в этом подарке?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("turn: expected 200, got %d, body=%v", w.Code, turn)
	}
	if turn["coach_feedback"] == "" || turn["client_reply"] == "" {
		t.Fatalf("turn should return both replies: %v", turn)
	}
	if turn["overall_score"].(float64) < 6 {
		t.Fatalf("empathetic reply should score well: %v", turn["overall_score"])
	}

	w, snap := doJSON(t, srv, http.MethodGet, "/training/v1/objections/snapshot/u1/s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot: expected 200, got %d", w.Code)
	}
	if snap["turn_count"].(float64) != 1 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
}

func TestStartRejectsUnknownKind(t *testing.T) {
	srv := newTestServer(t)

	w, _ := doJSON(t, srv, http.MethodPost, "/training/v1/karaoke/start", `{"owner_id":"u1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestTurnOnMissingSessionIs404(t *testing.T) {
	srv := newTestServer(t)

	w, _ := doJSON(t, srv, http.MethodPost, "/training/v1/arena/turn",
		`{"owner_id":"ghost","session_id":"nope","text":"привет"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCompletedExamTurnIs400(t *testing.T) {
	srv := newTestServer(t)

	w, _ := doJSON(t, srv, http.MethodPost, "/training/v1/exam/start",
		`{"owner_id":"u1","session_id":"s1","scenario":"objection_handling"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", w.Code)
	}

	turnBody := `{"owner_id":"u1","session_id":"s1","text":"Здравствуйте! Понимаю вас, расскажите подробнее, что для вас важно в этом особенном подарке для близкого человека?"}`
	for i := 0; i < 3; i++ {
		w, _ = doJSON(t, srv, http.MethodPost, "/training/v1/exam/turn", turnBody)
		if w.Code != http.StatusOK {
			t.Fatalf("round %d failed: %d", i+1, w.Code)
		}
	}

	w, _ = doJSON(t, srv, http.MethodPost, "/training/v1/exam/turn", turnBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("turn on completed exam should be 400, got %d", w.Code)
	}

	w, res := doJSON(t, srv, http.MethodGet, "/training/v1/exam/result/u1/s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("result failed: %d", w.Code)
	}
	if res["status"] != "completed" || res["grade"] == "" {
		t.Fatalf("unexpected result: %v", res)
	}
}

func TestListSessions(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		body := fmt.Sprintf(`{"owner_id":"u1","session_id":"s%d","scenario":"calm"}`, i)
		if w, _ := doJSON(t, srv, http.MethodPost, "/training/v1/arena/start", body); w.Code != http.StatusCreated {
			t.Fatalf("start %d failed: %d", i, w.Code)
		}
	}
	if w, _ := doJSON(t, srv, http.MethodPost, "/training/v1/exam/start",
		`{"owner_id":"u1","session_id":"e1"}`); w.Code != http.StatusCreated {
		t.Fatalf("exam start failed")
	}

	w, body := doJSON(t, srv, http.MethodGet, "/dialog/v1/sessions/u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d", w.Code)
	}
	if body["total"].(float64) != 3 {
		t.Fatalf("expected 3 sessions, got %v", body["total"])
	}

	w, body = doJSON(t, srv, http.MethodGet, "/dialog/v1/sessions/u1?scenario=arena", "")
	if w.Code != http.StatusOK || body["total"].(float64) != 2 {
		t.Fatalf("expected 2 arena sessions, got %v", body)
	}
}

func TestAnalyzeScript(t *testing.T) {
	srv := newTestServer(t)

	w, _ := doJSON(t, srv, http.MethodPost, "/script_lab/v1/analyze", `{"script":"коротко"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short script should be 400, got %d", w.Code)
	}

	script := "Привет! Меня зовут Анна, я из компании На Счастье. Понимаю, как важно сделать особенный подарок. Расскажите, для кого планируете? Давайте начнем сегодня?"
	payload, _ := json.Marshal(map[string]string{"script": script})
	w, body := doJSON(t, srv, http.MethodPost, "/script_lab/v1/analyze", string(payload))
	if w.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d, body=%v", w.Code, body)
	}
	if body["overall_score"].(float64) <= 0 {
		t.Fatalf("expected a positive score: %v", body)
	}
	if body["feedback"] == "" {
		t.Fatalf("expected feedback text")
	}
	scores := body["scores"].(map[string]any)
	for _, k := range []string{"structure", "psychology", "softness", "engagement", "cta"} {
		if _, ok := scores[k]; !ok {
			t.Fatalf("missing %s score: %v", scores, body)
		}
	}
}
