package chat

import (
	"context"
	"errors"
	"fmt"

	"helpdesk/internal/types"
)

var (
	ErrInvalidSessionID = errors.New("session id must be a positive integer")
	ErrInvalidMessageID = errors.New("message id must be a positive integer")
)

// TransitionClient is the slice of the transport used for lifecycle writes.
type TransitionClient interface {
	Resolve(ctx context.Context, sessionID int64, notes string) error
	Reopen(ctx context.Context, sessionID int64) error
	UpdatePriority(ctx context.Context, sessionID int64, priority types.SessionPriority) error
	DeleteMessage(ctx context.Context, messageID int64) error
	DeleteSession(ctx context.Context, sessionID int64) error
}

// Lifecycle validates and forwards session transitions. Nothing is applied
// locally until the remote store acknowledges; a rejected transition leaves
// the cached state untouched. The Apply helpers below are what callers run
// against their cache after a confirmed write.
type Lifecycle struct {
	client TransitionClient
}

func NewLifecycle(client TransitionClient) *Lifecycle {
	return &Lifecycle{client: client}
}

func (l *Lifecycle) Resolve(ctx context.Context, sessionID int64, notes string) error {
	if sessionID <= 0 {
		return ErrInvalidSessionID
	}
	return l.client.Resolve(ctx, sessionID, notes)
}

func (l *Lifecycle) Reopen(ctx context.Context, sessionID int64) error {
	if sessionID <= 0 {
		return ErrInvalidSessionID
	}
	return l.client.Reopen(ctx, sessionID)
}

func (l *Lifecycle) UpdatePriority(ctx context.Context, sessionID int64, priority types.SessionPriority) error {
	if sessionID <= 0 {
		return ErrInvalidSessionID
	}
	if !types.ValidPriority(priority) {
		return fmt.Errorf("unknown priority %q", priority)
	}
	return l.client.UpdatePriority(ctx, sessionID, priority)
}

// DeleteMessage rejects unaddressable ids locally, before any network call.
func (l *Lifecycle) DeleteMessage(ctx context.Context, messageID int64) error {
	if messageID <= 0 {
		return ErrInvalidMessageID
	}
	return l.client.DeleteMessage(ctx, messageID)
}

func (l *Lifecycle) DeleteSession(ctx context.Context, sessionID int64) error {
	if sessionID <= 0 {
		return ErrInvalidSessionID
	}
	return l.client.DeleteSession(ctx, sessionID)
}

// ApplyStatus returns a copy of the collection with one session's status
// replaced. Unrelated sessions are shared, not copied.
func ApplyStatus(sessions []*types.ChatSession, sessionID int64, status types.SessionStatus) []*types.ChatSession {
	return applySession(sessions, sessionID, func(s types.ChatSession) types.ChatSession {
		s.Status = status
		return s
	})
}

func ApplyPriority(sessions []*types.ChatSession, sessionID int64, priority types.SessionPriority) []*types.ChatSession {
	return applySession(sessions, sessionID, func(s types.ChatSession) types.ChatSession {
		s.Priority = priority
		return s
	})
}

// RemoveSession drops a session from the collection entirely; no tombstone
// is kept. The second result reports whether the id was present.
func RemoveSession(sessions []*types.ChatSession, sessionID int64) ([]*types.ChatSession, bool) {
	out := make([]*types.ChatSession, 0, len(sessions))
	removed := false
	for _, s := range sessions {
		if s != nil && s.ID == sessionID {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

// RemoveMessage drops one message from a transcript after a confirmed
// deletion.
func RemoveMessage(messages []*types.ChatMessage, messageID int64) []*types.ChatMessage {
	out := make([]*types.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m != nil && m.ID == messageID {
			continue
		}
		out = append(out, m)
	}
	return out
}

func applySession(sessions []*types.ChatSession, sessionID int64, mutate func(types.ChatSession) types.ChatSession) []*types.ChatSession {
	out := make([]*types.ChatSession, len(sessions))
	for i, s := range sessions {
		if s == nil || s.ID != sessionID {
			out[i] = s
			continue
		}
		updated := mutate(*s)
		out[i] = &updated
	}
	return out
}
