package domain

import "time"

type OwnerID string
type SessionID string

// ScenarioKind identifies a training mode.
type ScenarioKind string

const (
	ScenarioMasterPath ScenarioKind = "master_path" // full sales cycle
	ScenarioObjections ScenarioKind = "objections"  // objection handling
	ScenarioUpsell     ScenarioKind = "upsell"      // upsell / cross-sell
	ScenarioArena      ScenarioKind = "arena"       // free-form practice
	ScenarioExam       ScenarioKind = "exam"        // final assessment
	ScenarioScriptLab  ScenarioKind = "script_lab"  // script analysis drills
)

// ScenarioKinds lists every supported training mode.
var ScenarioKinds = []ScenarioKind{
	ScenarioMasterPath,
	ScenarioObjections,
	ScenarioUpsell,
	ScenarioArena,
	ScenarioExam,
	ScenarioScriptLab,
}

// ParseScenarioKind maps a raw string to a known training mode.
func ParseScenarioKind(s string) (ScenarioKind, bool) {
	for _, k := range ScenarioKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type Role string

const (
	RoleManager Role = "manager"
	RoleClient  Role = "client"
	RoleCoach   Role = "coach"
	RoleSystem  Role = "system"
)

type Timestamp = time.Time
