package domain

import "errors"

var (
	// ErrStorageUnavailable means the state store could not be reached.
	// Callers must not treat it as "key absent".
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSessionNotFound means the referenced session has no document and
	// auto-create does not apply.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted means a turn arrived after the scenario reached
	// its terminal state.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrResponderUnavailable means the persona LLM failed or timed out.
	ErrResponderUnavailable = errors.New("responder unavailable")
)
