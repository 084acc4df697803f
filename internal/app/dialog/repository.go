// Package dialog persists training sessions as JSON documents behind the
// generic state store. One key holds one session; callers are expected to
// serialize writes per session.
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/naschastye/salesim/internal/domain"
)

// Repository reads and writes sessions for every scenario kind.
type Repository struct {
	store domain.StateStore
	now   func() time.Time
}

func NewRepository(store domain.StateStore) *Repository {
	return &Repository{store: store, now: time.Now}
}

// NewRepositoryWithClock is for tests that need a frozen clock.
func NewRepositoryWithClock(store domain.StateStore, now func() time.Time) *Repository {
	return &Repository{store: store, now: now}
}

func sessionKey(owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) string {
	return fmt.Sprintf("dialog:%s:%s:%s", owner, kind, id)
}

func ownerPrefix(owner domain.OwnerID) string {
	return fmt.Sprintf("dialog:%s:", owner)
}

// AppendInput carries the optional per-message fields a caller may attach.
type AppendInput struct {
	Stage  string
	Scores map[string]float64
}

// Start creates a fresh session document. An existing session under the same
// key is replaced without complaint, which lets a trainee restart a drill by
// reusing the id.
func (r *Repository) Start(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) (*domain.Session, error) {
	now := r.now().UTC()
	sess := &domain.Session{
		OwnerID:   owner,
		Scenario:  kind,
		SessionID: id,
		CreatedAt: now,
		UpdatedAt: now,
		Stage:     "init",
		TurnCount: 0,
		Messages:  []domain.Message{},
		Scores:    map[string]float64{},
		Metadata:  map[string]any{},
	}
	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session or reports domain.ErrSessionNotFound.
func (r *Repository) Get(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) (*domain.Session, error) {
	raw, err := r.store.Get(ctx, sessionKey(owner, kind, id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s", domain.ErrSessionNotFound, owner, kind, id)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session %s: %v", domain.ErrStorageUnavailable, id, err)
	}
	return &sess, nil
}

// Append adds one message. A missing session is created on the fly so that
// long-lived chat surfaces can write history without an explicit start call.
// Manager messages advance the turn counter; stage and scores, when given,
// overwrite the session-level values.
func (r *Repository) Append(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID, role domain.Role, content string, in AppendInput) (*domain.Session, error) {
	sess, err := r.Get(ctx, owner, kind, id)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		now := r.now().UTC()
		sess = &domain.Session{
			OwnerID:   owner,
			Scenario:  kind,
			SessionID: id,
			CreatedAt: now,
			UpdatedAt: now,
			Stage:     "init",
			Messages:  []domain.Message{},
			Scores:    map[string]float64{},
			Metadata:  map[string]any{},
		}
	}

	now := r.now().UTC()
	sess.Messages = append(sess.Messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	sess.UpdatedAt = now

	if role == domain.RoleManager {
		sess.TurnCount++
	}
	if in.Stage != "" {
		sess.Stage = in.Stage
	}
	if in.Scores != nil {
		if sess.Scores == nil {
			sess.Scores = map[string]float64{}
		}
		// Key-wise overwrite; averaging is the caller's job.
		for k, v := range in.Scores {
			sess.Scores[k] = v
		}
	}

	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateMetadata shallow-merges fields into the session metadata, creating the
// session if absent.
func (r *Repository) UpdateMetadata(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID, fields map[string]any) (*domain.Session, error) {
	sess, err := r.Get(ctx, owner, kind, id)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		sess, err = r.Start(ctx, owner, kind, id)
		if err != nil {
			return nil, err
		}
	}

	if sess.Metadata == nil {
		sess.Metadata = map[string]any{}
	}
	for k, v := range fields {
		sess.Metadata[k] = v
	}
	sess.UpdatedAt = r.now().UTC()

	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List returns every session of an owner, newest first. kind filters to one
// scenario when non-empty.
func (r *Repository) List(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind) ([]*domain.Session, error) {
	prefix := ownerPrefix(owner)
	if kind != "" {
		prefix = fmt.Sprintf("dialog:%s:%s:", owner, kind)
	}

	keys, err := r.store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		var sess domain.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		sessions = append(sessions, &sess)
	}

	// Newest activity first.
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *Repository) Delete(ctx context.Context, owner domain.OwnerID, kind domain.ScenarioKind, id domain.SessionID) error {
	return r.store.Delete(ctx, sessionKey(owner, kind, id))
}

func (r *Repository) save(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: marshal session %s: %v", domain.ErrStorageUnavailable, sess.SessionID, err)
	}
	return r.store.Set(ctx, sessionKey(sess.OwnerID, sess.Scenario, sess.SessionID), raw)
}
