package domain

// Message is a single entry in a session's timeline.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Session is one training conversation between a manager and the simulated
// client, persisted as a single JSON document in the state store.
type Session struct {
	OwnerID   OwnerID      `json:"owner_id"`
	Scenario  ScenarioKind `json:"scenario"`
	SessionID SessionID    `json:"session_id"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	// Stage is a free-text state label; its semantics belong to the
	// scenario that owns the session.
	Stage string `json:"stage"`

	// TurnCount increments once per manager message, never decreases.
	TurnCount int `json:"turn_count"`

	// Messages is append-only; entries are never reordered or mutated.
	Messages []Message `json:"messages"`

	// Scores holds running per-criterion averages in [0,10].
	Scores map[string]float64 `json:"scores"`

	// Metadata holds scenario-specific state (sub-scenario, round
	// counters, completion flag).
	Metadata map[string]any `json:"metadata"`
}

// Completed reports whether the scenario reached its terminal state.
func (s *Session) Completed() bool {
	return s.MetaBool("completed")
}

// MetaBool reads a boolean metadata value, false when absent.
func (s *Session) MetaBool(key string) bool {
	v, _ := s.Metadata[key].(bool)
	return v
}

// MetaString reads a string metadata value, "" when absent.
func (s *Session) MetaString(key string) string {
	v, _ := s.Metadata[key].(string)
	return v
}

// MetaInt reads a numeric metadata value as int, def when absent.
// JSON round-trips store numbers as float64.
func (s *Session) MetaInt(key string, def int) int {
	switch v := s.Metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// MetaFloats reads a numeric-slice metadata value. JSON round-trips store
// slices as []any, so both representations are handled.
func (s *Session) MetaFloats(key string) []float64 {
	switch v := s.Metadata[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		return nil
	}
}

// CountByRole returns how many timeline messages carry the given role.
func (s *Session) CountByRole(role Role) int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == role {
			n++
		}
	}
	return n
}
