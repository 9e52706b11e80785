package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"helpdesk/internal/types"
)

// The chat service fronts a PHP/MySQL store: timestamps arrive as
// "2006-01-02 15:04:05" strings and counters frequently arrive as numeric
// strings. wireTime and wireInt absorb both shapes.

const mysqlTimeLayout = "2006-01-02 15:04:05"

type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(mysqlTimeLayout, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("unsupported timestamp %q", raw)
	}
	t.Time = parsed
	return nil
}

type wireInt int64

func (i *wireInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*i = 0
			return nil
		}
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("unsupported integer %q", raw)
		}
		*i = wireInt(parsed)
		return nil
	}
	var parsed int64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*i = wireInt(parsed)
	return nil
}

type wireFloat float64

func (f *wireFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("unsupported number %q", raw)
		}
		*f = wireFloat(parsed)
		return nil
	}
	var parsed float64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*f = wireFloat(parsed)
	return nil
}

type wireSession struct {
	ID              wireInt  `json:"id"`
	UserID          wireInt  `json:"user_id"`
	Username        string   `json:"username"`
	GuestName       string   `json:"guest_name"`
	GuestEmail      string   `json:"guest_email"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	ResolutionNotes string   `json:"resolution_notes"`
	UnreadMessages  wireInt  `json:"unread_messages"`
	LastMessageTime wireTime `json:"last_message_time"`
	CreatedAt       wireTime `json:"created_at"`
	UpdatedAt       wireTime `json:"updated_at"`
}

func (w wireSession) toSession() *types.ChatSession {
	participant := types.Participant{}
	if w.UserID > 0 {
		participant.UserID = int64(w.UserID)
		participant.Username = w.Username
	} else {
		participant.GuestName = w.GuestName
		participant.GuestContact = w.GuestEmail
	}
	status := types.SessionStatus(w.Status)
	if status != types.SessionStatusResolved {
		status = types.SessionStatusOpen
	}
	priority := types.SessionPriority(w.Priority)
	if !types.ValidPriority(priority) {
		priority = types.PriorityNormal
	}
	return &types.ChatSession{
		ID:              int64(w.ID),
		Participant:     participant,
		Status:          status,
		Priority:        priority,
		Unread:          int(w.UnreadMessages),
		ResolutionNotes: w.ResolutionNotes,
		LastMessageAt:   w.LastMessageTime.Time,
		CreatedAt:       w.CreatedAt.Time,
		UpdatedAt:       w.UpdatedAt.Time,
	}
}

type wireMessage struct {
	ID          wireInt  `json:"id"`
	SessionID   wireInt  `json:"session_id"`
	Sender      string   `json:"sender"`
	Message     string   `json:"message"`
	MessageType string   `json:"message_type"`
	SentAt      wireTime `json:"sent_at"`
}

func (w wireMessage) toMessage() *types.ChatMessage {
	sender := types.MessageSender(w.Sender)
	if sender != types.SenderUser && sender != types.SenderAdmin {
		sender = types.SenderUser
	}
	var msgType types.MessageType
	switch w.MessageType {
	case "text", "":
		msgType = types.MessageTypeText
	case "system":
		msgType = types.MessageTypeSystem
		sender = types.SenderSystem
	default:
		msgType = types.MessageTypeOther
	}
	return &types.ChatMessage{
		ID:        int64(w.ID),
		SessionID: int64(w.SessionID),
		Sender:    sender,
		Type:      msgType,
		Text:      w.Message,
		SentAt:    w.SentAt.Time,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type sessionsResponse struct {
	envelope
	Sessions []wireSession `json:"sessions"`
}

type messagesResponse struct {
	envelope
	Messages       []wireMessage `json:"messages"`
	SessionDeleted bool          `json:"session_deleted"`
}

type sendResponse struct {
	envelope
	SessionID wireInt `json:"session_id"`
}

type statsResponse struct {
	envelope
	Stats struct {
		TotalSessions   wireInt   `json:"total_sessions"`
		OpenSessions    wireInt   `json:"open_sessions"`
		TodaySessions   wireInt   `json:"today_sessions"`
		AvgResponseTime wireFloat `json:"avg_response_time"`
	} `json:"stats"`
}

type unreadResponse struct {
	envelope
	UnreadCount wireInt `json:"unread_count"`
}

type agentsResponse struct {
	envelope
	OnlineAgents wireInt `json:"online_agents"`
}

type permissionsResponse struct {
	envelope
	HasPermission bool `json:"hasPermission"`
	CanRead       bool `json:"canRead"`
	CanWrite      bool `json:"canWrite"`
}

// Permissions reports what the authenticated viewer may do on the operator
// surface.
type Permissions struct {
	HasPermission bool
	CanRead       bool
	CanWrite      bool
}

// SendRequest describes an outbound message. SessionID zero asks the service
// to create a new session and return its id.
type SendRequest struct {
	SessionID int64
	Sender    types.MessageSender
	Text      string
	Viewer    types.ViewerIdentity
}

type sendBody struct {
	SessionID   int64  `json:"session_id"`
	Sender      string `json:"sender"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	UserID      *int64 `json:"user_id,omitempty"`
	GuestName   string `json:"guest_name,omitempty"`
	GuestEmail  string `json:"guest_email,omitempty"`
}
