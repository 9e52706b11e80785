package types

import "time"

type SessionStatus string

const (
	SessionStatusOpen     SessionStatus = "open"
	SessionStatusResolved SessionStatus = "resolved"
)

type SessionPriority string

const (
	PriorityLow    SessionPriority = "low"
	PriorityNormal SessionPriority = "normal"
	PriorityHigh   SessionPriority = "high"
	PriorityUrgent SessionPriority = "urgent"
)

// Priorities is ordered from least to most urgent.
var Priorities = []SessionPriority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

func ValidPriority(p SessionPriority) bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Participant identifies who opened a session: a registered user (UserID > 0)
// or a guest known only by display name and optional contact. Exactly one
// form is populated.
type Participant struct {
	UserID       int64  `json:"user_id,omitempty"`
	Username     string `json:"username,omitempty"`
	GuestName    string `json:"guest_name,omitempty"`
	GuestContact string `json:"guest_contact,omitempty"`
}

func (p Participant) IsGuest() bool {
	return p.UserID <= 0
}

func (p Participant) DisplayName() string {
	if p.UserID > 0 && p.Username != "" {
		return p.Username
	}
	if p.GuestName != "" {
		return p.GuestName
	}
	return "anonymous"
}

type ChatSession struct {
	ID              int64           `json:"id"`
	Participant     Participant     `json:"participant"`
	Status          SessionStatus   `json:"status"`
	Priority        SessionPriority `json:"priority"`
	Unread          int             `json:"unread"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	LastMessageAt   time.Time       `json:"last_message_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (s *ChatSession) Open() bool {
	return s != nil && s.Status == SessionStatusOpen
}

type MessageSender string

const (
	SenderUser   MessageSender = "user"
	SenderAdmin  MessageSender = "admin"
	SenderSystem MessageSender = "system"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeOther  MessageType = "other"
)

type ChatMessage struct {
	ID        int64         `json:"id"`
	SessionID int64         `json:"session_id"`
	Sender    MessageSender `json:"sender"`
	Type      MessageType   `json:"type"`
	Text      string        `json:"text"`
	SentAt    time.Time     `json:"sent_at"`
}

// Addressable reports whether the message can be targeted individually, e.g.
// for deletion. Synthesized lines carry a zero id and are never addressable.
func (m *ChatMessage) Addressable() bool {
	return m != nil && m.ID > 0
}

type ChatStats struct {
	TotalSessions      int     `json:"total_sessions"`
	OpenSessions       int     `json:"open_sessions"`
	TodaySessions      int     `json:"today_sessions"`
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
}
