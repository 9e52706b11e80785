package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/types"
)

type fakeConsoleAPI struct {
	sessions []*types.ChatSession
	messages []*types.ChatMessage
	deleted  bool

	sendReqs    []client.SendRequest
	resolved    []int64
	reopened    []int64
	priorities  map[int64]types.SessionPriority
	deletedMsgs []int64
	deletedSess []int64
	lastSeen    []int64

	err error
}

func (f *fakeConsoleAPI) ListSessions(context.Context) ([]*types.ChatSession, error) {
	return f.sessions, f.err
}

func (f *fakeConsoleAPI) ListMessages(_ context.Context, sessionID int64, _ types.ViewerIdentity) ([]*types.ChatMessage, bool, error) {
	return f.messages, f.deleted, f.err
}

func (f *fakeConsoleAPI) Send(_ context.Context, req client.SendRequest) (int64, error) {
	f.sendReqs = append(f.sendReqs, req)
	return req.SessionID, f.err
}

func (f *fakeConsoleAPI) Stats(context.Context) (*types.ChatStats, error) {
	return &types.ChatStats{OpenSessions: len(f.sessions)}, f.err
}

func (f *fakeConsoleAPI) UpdateLastSeen(_ context.Context, _, sessionID int64) error {
	f.lastSeen = append(f.lastSeen, sessionID)
	return f.err
}

func (f *fakeConsoleAPI) CheckPermissions(context.Context) (*client.Permissions, error) {
	return &client.Permissions{HasPermission: true, CanRead: true, CanWrite: true}, f.err
}

func (f *fakeConsoleAPI) Resolve(_ context.Context, sessionID int64, _ string) error {
	f.resolved = append(f.resolved, sessionID)
	return f.err
}

func (f *fakeConsoleAPI) Reopen(_ context.Context, sessionID int64) error {
	f.reopened = append(f.reopened, sessionID)
	return f.err
}

func (f *fakeConsoleAPI) UpdatePriority(_ context.Context, sessionID int64, priority types.SessionPriority) error {
	if f.priorities == nil {
		f.priorities = map[int64]types.SessionPriority{}
	}
	f.priorities[sessionID] = priority
	return f.err
}

func (f *fakeConsoleAPI) DeleteMessage(_ context.Context, messageID int64) error {
	f.deletedMsgs = append(f.deletedMsgs, messageID)
	return f.err
}

func (f *fakeConsoleAPI) DeleteSession(_ context.Context, sessionID int64) error {
	f.deletedSess = append(f.deletedSess, sessionID)
	return f.err
}

func consoleSessions() []*types.ChatSession {
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	return []*types.ChatSession{
		{ID: 1, Participant: types.Participant{GuestName: "Alex"}, Status: types.SessionStatusOpen, Priority: types.PriorityNormal, CreatedAt: now},
		{ID: 2, Participant: types.Participant{UserID: 4, Username: "mira"}, Status: types.SessionStatusOpen, Priority: types.PriorityHigh, CreatedAt: now},
	}
}

func newTestConsole(t *testing.T, api *fakeConsoleAPI) *ConsoleModel {
	t.Helper()
	viewer := types.ViewerIdentity{Kind: types.ViewerRegistered, UserID: 9, DisplayName: "op"}
	m := NewConsoleModel(api, viewer, config.DefaultSettings(), logging.Nop())
	m.Init()
	m.resize(100, 30)
	return m
}

func seedConsole(t *testing.T, m *ConsoleModel, sessions []*types.ChatSession) {
	t.Helper()
	_, cmd := m.Update(sessionsMsg{gen: m.sessionLoop.Gen(), mode: chat.FetchVisible, sessions: sessions})
	if cmd == nil {
		t.Fatalf("committing the first session list must start the message loop")
	}
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: string(code)}
}

func TestConsoleDiscardsStaleSessionList(t *testing.T) {
	m := newTestConsole(t, &fakeConsoleAPI{})
	seedConsole(t, m, consoleSessions())
	stale := []*types.ChatSession{{ID: 99, Status: types.SessionStatusOpen, Priority: types.PriorityNormal}}
	m.Update(sessionsMsg{gen: m.sessionLoop.Gen() + 1, mode: chat.FetchSilent, sessions: stale})
	if got := m.sidebar.Sessions(); len(got) != 2 || got[0].ID != 1 {
		t.Fatalf("stale session list must not be committed, got %v", got)
	}
}

func TestConsoleSelectionSurvivesReorder(t *testing.T) {
	m := newTestConsole(t, &fakeConsoleAPI{})
	sessions := consoleSessions()
	seedConsole(t, m, sessions)
	m.Update(key('j'))
	if m.sidebar.SelectedID() != 2 {
		t.Fatalf("selected = %d, want 2", m.sidebar.SelectedID())
	}
	reordered := []*types.ChatSession{sessions[1], sessions[0]}
	m.Update(sessionsMsg{gen: m.sessionLoop.Gen(), mode: chat.FetchSilent, sessions: reordered})
	if m.sidebar.SelectedID() != 2 {
		t.Fatalf("selection must follow the session id across a reorder, got %d", m.sidebar.SelectedID())
	}
}

func TestConsoleSessionSwitchDiscardsInFlightMessages(t *testing.T) {
	m := newTestConsole(t, &fakeConsoleAPI{})
	seedConsole(t, m, consoleSessions())
	oldGen := m.messageLoop.Gen()
	m.Update(key('j'))
	inFlight := []*types.ChatMessage{{ID: 1, SessionID: 1, Sender: types.SenderUser, Text: "old"}}
	m.Update(messagesMsg{gen: oldGen, sessionID: 1, mode: chat.FetchSilent, messages: inFlight})
	if len(m.transcript.Messages()) != 0 {
		t.Fatalf("a response for the previous session must be discarded")
	}
	fresh := []*types.ChatMessage{{ID: 2, SessionID: 2, Sender: types.SenderUser, Text: "new"}}
	m.Update(messagesMsg{gen: m.messageLoop.Gen(), sessionID: 2, mode: chat.FetchVisible, messages: fresh})
	if got := m.transcript.Messages(); len(got) != 1 || got[0].SessionID != 2 {
		t.Fatalf("fresh response must be committed, got %v", got)
	}
}

func TestConsoleServerSideSessionDeletion(t *testing.T) {
	m := newTestConsole(t, &fakeConsoleAPI{})
	seedConsole(t, m, consoleSessions())
	m.Update(messagesMsg{gen: m.messageLoop.Gen(), sessionID: 1, mode: chat.FetchSilent, deleted: true})
	for _, s := range m.sidebar.Sessions() {
		if s.ID == 1 {
			t.Fatalf("deleted session must leave the sidebar")
		}
	}
	if m.errText == "" {
		t.Fatalf("the operator must be told the session is gone")
	}
	if len(m.transcript.Messages()) != 0 {
		t.Fatalf("transcript for a deleted session must be cleared")
	}
}

func TestConsoleResolveAppliesOnlyAfterAck(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())

	m.Update(resolvedMsg{sessionID: 1, err: errors.New("boom")})
	if m.sidebar.Sessions()[0].Status != types.SessionStatusOpen {
		t.Fatalf("a rejected transition must leave the cached status untouched")
	}
	if m.errText == "" {
		t.Fatalf("a rejected transition must surface an error")
	}

	m.Update(resolvedMsg{sessionID: 1})
	if m.sidebar.Sessions()[0].Status != types.SessionStatusResolved {
		t.Fatalf("a confirmed transition must update the cached status")
	}
	if m.sidebar.Sessions()[1].Status != types.SessionStatusOpen {
		t.Fatalf("other sessions must not change")
	}
}

func TestConsolePriorityAppliedAfterAck(t *testing.T) {
	m := newTestConsole(t, &fakeConsoleAPI{})
	seedConsole(t, m, consoleSessions())
	m.Update(priorityChangedMsg{sessionID: 2, priority: types.PriorityUrgent})
	if m.sidebar.Sessions()[1].Priority != types.PriorityUrgent {
		t.Fatalf("priority = %q, want urgent", m.sidebar.Sessions()[1].Priority)
	}
}

func TestConsoleDeleteMessageRequiresAddressableID(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())
	messages := []*types.ChatMessage{
		{ID: 5, SessionID: 1, Sender: types.SenderUser, Text: "hello"},
		{ID: 0, SessionID: 1, Sender: types.SenderSystem, Text: "agent joined"},
	}
	m.Update(messagesMsg{gen: m.messageLoop.Gen(), sessionID: 1, mode: chat.FetchVisible, messages: messages})

	m.transcript.MoveSelection(-1) // lands on the synthesized line
	m.Update(key('d'))
	if m.confirm.IsOpen() {
		t.Fatalf("an unaddressable message must not reach the confirm dialog")
	}
	if m.errText == "" {
		t.Fatalf("expected a local validation error")
	}

	m.transcript.MoveSelection(-1)
	m.Update(key('d'))
	if !m.confirm.IsOpen() {
		t.Fatalf("an addressable message must open the confirm dialog")
	}
	_, cmd := m.Update(key('y'))
	if cmd == nil {
		t.Fatalf("confirming must issue the delete")
	}
	if msg := cmd(); msg == nil {
		t.Fatalf("delete command returned nothing")
	}
	if len(api.deletedMsgs) != 1 || api.deletedMsgs[0] != 5 {
		t.Fatalf("deleted ids = %v, want [5]", api.deletedMsgs)
	}

	m.Update(messageDeletedMsg{sessionID: 1, messageID: 5})
	if got := m.transcript.Messages(); len(got) != 1 || got[0].ID != 0 {
		t.Fatalf("confirmed deletion must drop the message locally, got %v", got)
	}
}

func TestConsoleDeleteSessionConfirmCancel(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())
	m.Update(key('x'))
	if !m.confirm.IsOpen() {
		t.Fatalf("delete session must ask for confirmation")
	}
	_, cmd := m.Update(key('n'))
	if cmd != nil {
		t.Fatalf("cancelling must not issue a delete")
	}
	if len(api.deletedSess) != 0 {
		t.Fatalf("cancelled delete must not reach the transport")
	}
}

func TestConsoleSendEchoesBack(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())

	m.Update(key('i'))
	if m.mode != consoleModeCompose {
		t.Fatalf("i must enter compose mode")
	}
	m.input.SetValue("we are on it")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter with text must issue a send")
	}
	cmd()
	if len(api.sendReqs) != 1 {
		t.Fatalf("send requests = %d, want 1", len(api.sendReqs))
	}
	req := api.sendReqs[0]
	if req.SessionID != 1 || req.Sender != types.SenderAdmin || req.Text != "we are on it" {
		t.Fatalf("send request = %+v", req)
	}

	_, cmd = m.Update(sentMsg{sessionID: 1})
	if cmd == nil {
		t.Fatalf("a confirmed send must refresh the transcript")
	}
	if !m.transcript.Following() {
		t.Fatalf("sending rearms follow mode")
	}
}

func TestConsoleSendInFlightBlocksRepeat(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())

	m.Update(key('i'))
	m.input.SetValue("first")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter with text must issue a send")
	}

	m.input.SetValue("second")
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("enter while a send is in flight must be refused")
	}

	m.Update(sentMsg{sessionID: 1})
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("ack must release the send guard")
	}
}

func TestConsoleReadOnlyBlocksCompose(t *testing.T) {
	api := &fakeConsoleAPI{}
	m := newTestConsole(t, api)
	seedConsole(t, m, consoleSessions())

	m.Update(permissionsMsg{perms: &client.Permissions{HasPermission: true, CanRead: true}})
	m.Update(key('i'))
	if m.mode == consoleModeCompose {
		t.Fatalf("compose must be blocked without write permission")
	}
	if m.errText == "" {
		t.Fatalf("blocked compose must explain itself")
	}
}

func TestConsoleViewTakesFullScreen(t *testing.T) {
	var model tea.Model = newTestConsole(t, &fakeConsoleAPI{})
	v := model.View()
	if !v.AltScreen {
		t.Fatalf("the console must run in the alternate screen buffer")
	}
}

func TestNextPriorityCycles(t *testing.T) {
	got := nextPriority(types.PriorityUrgent)
	if got != types.PriorityLow {
		t.Fatalf("nextPriority(urgent) = %q, want low", got)
	}
	if nextPriority(types.PriorityLow) != types.PriorityNormal {
		t.Fatalf("nextPriority(low) must be normal")
	}
	if nextPriority(types.SessionPriority("bogus")) != types.PriorityNormal {
		t.Fatalf("unknown priority falls back to normal")
	}
}
