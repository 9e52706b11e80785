package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"helpdesk/internal/logging"
	"helpdesk/internal/types"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		baseURL:  serverURL,
		endpoint: "/api/chat.php",
		token:    "token",
		log:      logging.Nop(),
		http: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

func TestClientListSessionsDecodesWireShapes(t *testing.T) {
	var seenQuery, seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenQuery = r.URL.RawQuery
		seenAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"sessions":[
			{"id":"7","user_id":null,"guest_name":"Alex","guest_email":"alex@example.com",
			 "status":"open","priority":"high","unread_messages":"2",
			 "last_message_time":"2026-08-20 10:12:00","created_at":"2026-08-19 09:00:00","updated_at":"2026-08-20 10:12:00"},
			{"id":8,"user_id":4,"username":"mira","status":"resolved","priority":"bogus",
			 "unread_messages":0,"created_at":"2026-08-18T08:00:00Z","updated_at":"2026-08-18T08:30:00Z"}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	sessions, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions error: %v", err)
	}
	if seenQuery != "sessions" {
		t.Fatalf("unexpected query: %q", seenQuery)
	}
	if seenAuth != "Bearer token" {
		t.Fatalf("unexpected auth header: %q", seenAuth)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	guest := sessions[0]
	if guest.ID != 7 || !guest.Participant.IsGuest() || guest.Participant.GuestName != "Alex" {
		t.Fatalf("guest session decoded incorrectly: %+v", guest)
	}
	if guest.Unread != 2 || guest.Priority != types.PriorityHigh {
		t.Fatalf("guest counters decoded incorrectly: %+v", guest)
	}
	if guest.LastMessageAt.IsZero() {
		t.Fatalf("expected last message time to parse")
	}
	registered := sessions[1]
	if registered.Participant.IsGuest() || registered.Participant.Username != "mira" {
		t.Fatalf("registered session decoded incorrectly: %+v", registered)
	}
	if registered.Status != types.SessionStatusResolved {
		t.Fatalf("status = %q", registered.Status)
	}
	if registered.Priority != types.PriorityNormal {
		t.Fatalf("expected unknown priority to fall back to normal, got %q", registered.Priority)
	}
}

func TestClientListMessagesReportsDeletedSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"messages":[],"session_deleted":true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	messages, deleted, err := c.ListMessages(context.Background(), 42, types.ViewerIdentity{Kind: types.ViewerGuest, DisplayName: "Alex"})
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected session_deleted flag")
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(messages))
	}
}

func TestClientListMessagesScopesGuestParams(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"messages":[
			{"id":1,"session_id":42,"sender":"admin","message":"resolved","message_type":"system","sent_at":"2026-08-20 10:12:00"}
		],"session_deleted":false}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	messages, deleted, err := c.ListMessages(context.Background(), 42, types.ViewerIdentity{
		Kind:        types.ViewerGuest,
		DisplayName: "Alex",
		Contact:     "alex@example.com",
	})
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if deleted {
		t.Fatalf("unexpected session_deleted")
	}
	if seen != "messages&guest_email=alex%40example.com&guest_name=Alex&session_id=42" {
		t.Fatalf("unexpected query: %q", seen)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Sender != types.SenderSystem || messages[0].Type != types.MessageTypeSystem {
		t.Fatalf("system message decoded incorrectly: %+v", messages[0])
	}
}

func TestClientSendCreatesSession(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"session_id":"42"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	sessionID, err := c.Send(context.Background(), SendRequest{
		Sender: types.SenderUser,
		Text:   "hello",
		Viewer: types.ViewerIdentity{Kind: types.ViewerGuest, DisplayName: "Alex"},
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if sessionID != 42 {
		t.Fatalf("session id = %d, want 42", sessionID)
	}
	if body["session_id"] != float64(0) {
		t.Fatalf("expected zero session_id for implicit creation, got %v", body["session_id"])
	}
	if body["guest_name"] != "Alex" {
		t.Fatalf("guest_name = %v", body["guest_name"])
	}
}

func TestClientSendRejectsEmptyText(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	if _, err := c.Send(context.Background(), SendRequest{Text: "   "}); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestClientSurfacesEnvelopeErrorOn2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Invalid priority level"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.UpdatePriority(context.Background(), 7, types.PriorityHigh)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Invalid priority level" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestClientDecodesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Invalid chat session"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Send(context.Background(), SendRequest{
		SessionID: 99,
		Text:      "hello",
		Viewer:    types.ViewerIdentity{Kind: types.ViewerGuest, DisplayName: "Alex"},
	})
	if !IsSessionGone(err) {
		t.Fatalf("expected session-gone error, got %v", err)
	}
}

func TestClientStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"stats":{"total_sessions":"120","open_sessions":4,"today_sessions":"9","avg_response_time":"6.5"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.TotalSessions != 120 || stats.OpenSessions != 4 || stats.TodaySessions != 9 {
		t.Fatalf("stats decoded incorrectly: %+v", stats)
	}
	if stats.AvgResponseMinutes != 6.5 {
		t.Fatalf("avg response = %v", stats.AvgResponseMinutes)
	}
}
