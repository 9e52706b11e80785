package types

// AppState is the durable client-side state that survives reloads: the
// advisory pointer to the active session and, for guests, the identity used
// to scope reads and sends. Everything else is re-fetched on the next poll.
type AppState struct {
	ActiveSessionID int64  `json:"active_session_id,omitempty"`
	GuestName       string `json:"guest_name,omitempty"`
	GuestContact    string `json:"guest_contact,omitempty"`
}

func (s *AppState) HasActiveSession() bool {
	return s != nil && s.ActiveSessionID > 0
}

// ClearActiveSession drops the session pointer, e.g. after the remote store
// reports the session as gone.
func (s *AppState) ClearActiveSession() {
	if s == nil {
		return
	}
	s.ActiveSessionID = 0
}
