package chat

import "helpdesk/internal/types"

// The change detector gates every poll commit: polling a list that rarely
// changes must not force a re-render (and the scroll/selection churn that
// comes with it) on every tick. Equality is structural, typed, and
// order-sensitive, independent of any serialization format.

func SessionsChanged(prev, next []*types.ChatSession) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !sessionEqual(prev[i], next[i]) {
			return true
		}
	}
	return false
}

func MessagesChanged(prev, next []*types.ChatMessage) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !messageEqual(prev[i], next[i]) {
			return true
		}
	}
	return false
}

func sessionEqual(a, b *types.ChatSession) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.Participant == b.Participant &&
		a.Status == b.Status &&
		a.Priority == b.Priority &&
		a.Unread == b.Unread &&
		a.ResolutionNotes == b.ResolutionNotes &&
		a.LastMessageAt.Equal(b.LastMessageAt) &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func messageEqual(a, b *types.ChatMessage) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.SessionID == b.SessionID &&
		a.Sender == b.Sender &&
		a.Type == b.Type &&
		a.Text == b.Text &&
		a.SentAt.Equal(b.SentAt)
}
