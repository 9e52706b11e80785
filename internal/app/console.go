package app

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/types"
)

type consoleMode int

const (
	consoleModeBrowse consoleMode = iota
	consoleModeCompose
	consoleModeResolveNotes
)

type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingDeleteSession
	pendingDeleteMessage
)

const sidebarWidth = 32

// ConsoleModel is the operator surface: every session on the left, the
// selected conversation on the right, lifecycle actions on keys.
type ConsoleModel struct {
	api       ConsoleAPI
	lifecycle *chat.Lifecycle
	viewer    types.ViewerIdentity
	log       logging.Logger

	settings config.Settings

	width  int
	height int
	ready  bool

	sidebar    *SidebarController
	transcript *TranscriptController
	input      *ChatInput
	confirm    *ConfirmController
	loader     spinner.Model

	sessionLoop chat.PollLoop
	messageLoop chat.PollLoop

	// messagesFor is the session the transcript currently holds; a commit
	// for a different session replaces the transcript wholesale.
	messagesFor int64

	stats *types.ChatStats
	perms *client.Permissions

	mode           consoleMode
	pending        pendingAction
	pendingSession int64
	pendingMessage int64
	sending        bool

	loading bool
	status  string
	errText string
}

func NewConsoleModel(api ConsoleAPI, viewer types.ViewerIdentity, settings config.Settings, log logging.Logger) *ConsoleModel {
	if log == nil {
		log = logging.Nop()
	}
	loader := spinner.New()
	loader.Spinner = spinner.Line
	return &ConsoleModel{
		api:        api,
		lifecycle:  chat.NewLifecycle(api),
		viewer:     viewer,
		log:        log,
		settings:   settings,
		sidebar:    NewSidebarController(sidebarWidth, 0),
		transcript: NewTranscriptController(1, 1, settings.ScrollThreshold()),
		input:      NewChatInput(1),
		confirm:    NewConfirmController(),
		loader:     loader,
	}
}

func (m *ConsoleModel) Init() tea.Cmd {
	gen := m.sessionLoop.Start()
	m.loading = true
	return tea.Batch(
		fetchSessionsCmd(m.api, gen, m.sessionLoop.NextMode()),
		fetchStatsCmd(m.api),
		fetchPermissionsCmd(m.api),
		sessionListTickCmd(m.settings.SessionListInterval(), gen),
		m.loader.Tick,
	)
}

func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case sessionListTickMsg:
		if !m.sessionLoop.Accept(msg.gen) {
			return m, nil
		}
		return m, tea.Batch(
			fetchSessionsCmd(m.api, msg.gen, m.sessionLoop.NextMode()),
			fetchStatsCmd(m.api),
			sessionListTickCmd(m.settings.SessionListInterval(), msg.gen),
		)
	case sessionsMsg:
		return m.handleSessions(msg)
	case messageTickMsg:
		if !m.messageLoop.Accept(msg.gen) {
			return m, nil
		}
		sessionID := m.sidebar.SelectedID()
		if sessionID <= 0 {
			return m, nil
		}
		return m, tea.Batch(
			fetchMessagesCmd(m.api, sessionID, m.viewer, msg.gen, m.messageLoop.NextMode()),
			messageTickCmd(m.settings.MessageInterval(), msg.gen),
		)
	case messagesMsg:
		return m.handleMessages(msg)
	case statsMsg:
		if msg.err != nil {
			m.log.Warn("stats refresh failed", logging.F("err", msg.err))
			return m, nil
		}
		m.stats = msg.stats
		return m, nil
	case permissionsMsg:
		if msg.err != nil {
			m.errText = "permission check failed: " + msg.err.Error()
			return m, nil
		}
		m.perms = msg.perms
		if msg.perms != nil && !msg.perms.HasPermission {
			m.errText = "this account is not authorized to manage support sessions"
		}
		return m, nil
	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.errText = "send failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "message sent"
		m.transcript.GotoBottom()
		return m, m.refreshMessagesNow()
	case resolvedMsg:
		if msg.err != nil {
			m.errText = "resolve failed: " + msg.err.Error()
			return m, nil
		}
		m.sidebar.SetSessions(chat.ApplyStatus(m.sidebar.Sessions(), msg.sessionID, types.SessionStatusResolved))
		m.status = "session resolved"
		return m, tea.Batch(m.refreshMessagesNow(), m.refreshSessionsNow())
	case reopenedMsg:
		if msg.err != nil {
			m.errText = "reopen failed: " + msg.err.Error()
			return m, nil
		}
		m.sidebar.SetSessions(chat.ApplyStatus(m.sidebar.Sessions(), msg.sessionID, types.SessionStatusOpen))
		m.status = "session reopened"
		return m, tea.Batch(m.refreshMessagesNow(), m.refreshSessionsNow())
	case priorityChangedMsg:
		if msg.err != nil {
			m.errText = "priority update failed: " + msg.err.Error()
			return m, nil
		}
		m.sidebar.SetSessions(chat.ApplyPriority(m.sidebar.Sessions(), msg.sessionID, msg.priority))
		m.status = "priority set to " + string(msg.priority)
		return m, m.refreshSessionsNow()
	case messageDeletedMsg:
		if msg.err != nil {
			m.errText = "delete failed: " + msg.err.Error()
			return m, nil
		}
		if msg.sessionID == m.messagesFor {
			m.transcript.SetMessages(chat.RemoveMessage(m.transcript.Messages(), msg.messageID), false)
		}
		m.status = "message deleted"
		return m, m.refreshMessagesNow()
	case sessionDeletedMsg:
		return m.handleSessionDeleted(msg)
	case lastSeenMsg:
		if msg.err != nil {
			m.log.Warn("update last seen failed",
				logging.F("session", msg.sessionID), logging.F("err", msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *ConsoleModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm.IsOpen() {
		handled, choice := m.confirm.HandleKey(msg)
		if !handled {
			return m, nil
		}
		return m.resolveConfirm(choice)
	}
	switch m.mode {
	case consoleModeCompose:
		return m.handleComposeKey(msg)
	case consoleModeResolveNotes:
		return m.handleNotesKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *ConsoleModel) handleBrowseKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.errText = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.sidebar.Move(-1) {
			return m, m.switchSession()
		}
	case "down", "j":
		if m.sidebar.Move(1) {
			return m, m.switchSession()
		}
	case "enter", "i":
		if m.sidebar.Selected() == nil {
			return m, nil
		}
		if m.perms != nil && !m.perms.CanWrite {
			m.errText = "read-only access: sending is disabled"
			return m, nil
		}
		m.mode = consoleModeCompose
		m.input.SetPlaceholder("reply to " + m.sidebar.Selected().Participant.DisplayName())
		m.input.Focus()
	case "r":
		selected := m.sidebar.Selected()
		if selected == nil || selected.Status != types.SessionStatusOpen {
			return m, nil
		}
		m.mode = consoleModeResolveNotes
		m.input.SetPlaceholder("resolution notes (enter to resolve)")
		m.input.Focus()
	case "o":
		selected := m.sidebar.Selected()
		if selected == nil || selected.Status != types.SessionStatusResolved {
			return m, nil
		}
		return m, reopenSessionCmd(m.lifecycle, selected.ID)
	case "p":
		selected := m.sidebar.Selected()
		if selected == nil {
			return m, nil
		}
		return m, updatePriorityCmd(m.lifecycle, selected.ID, nextPriority(selected.Priority))
	case "x":
		selected := m.sidebar.Selected()
		if selected == nil {
			return m, nil
		}
		m.pending = pendingDeleteSession
		m.pendingSession = selected.ID
		m.confirm.Open("Delete session",
			"Delete the conversation with "+selected.Participant.DisplayName()+"? The transcript is removed for good.")
	case "K", "[":
		m.transcript.MoveSelection(-1)
	case "J", "]":
		m.transcript.MoveSelection(1)
	case "d":
		return m.requestMessageDelete()
	case "c":
		text := m.transcript.Text()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		if _, err := copyTextToClipboard(text); err != nil {
			m.errText = "copy failed: " + err.Error()
		} else {
			m.status = "transcript copied"
		}
	case "pgup", "ctrl+u":
		m.transcript.ScrollUp(3)
	case "pgdown", "ctrl+d":
		m.transcript.ScrollDown(3)
	case "G":
		m.transcript.GotoBottom()
	case "esc":
		m.transcript.ClearSelection()
	}
	return m, nil
}

func (m *ConsoleModel) handleComposeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInputMode()
		return m, nil
	case "enter":
		if m.sending {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		sessionID := m.sidebar.SelectedID()
		if sessionID <= 0 {
			m.leaveInputMode()
			return m, nil
		}
		m.input.Clear()
		m.sending = true
		return m, sendMessageCmd(m.api, client.SendRequest{
			SessionID: sessionID,
			Sender:    types.SenderAdmin,
			Text:      text,
			Viewer:    m.viewer,
		})
	}
	return m, m.input.Update(msg)
}

func (m *ConsoleModel) handleNotesKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInputMode()
		return m, nil
	case "enter":
		sessionID := m.sidebar.SelectedID()
		notes := strings.TrimSpace(m.input.Value())
		m.leaveInputMode()
		if sessionID <= 0 {
			return m, nil
		}
		return m, resolveSessionCmd(m.lifecycle, sessionID, notes)
	}
	return m, m.input.Update(msg)
}

func (m *ConsoleModel) requestMessageDelete() (tea.Model, tea.Cmd) {
	selected := m.transcript.SelectedMessage()
	if selected == nil {
		m.errText = "select a message first ([ and ])"
		return m, nil
	}
	if !selected.Addressable() {
		m.errText = "message has no id yet and cannot be deleted"
		return m, nil
	}
	m.pending = pendingDeleteMessage
	m.pendingSession = selected.SessionID
	m.pendingMessage = selected.ID
	m.confirm.Open("Delete message", "Delete this message from the transcript?")
	return m, nil
}

func (m *ConsoleModel) resolveConfirm(choice confirmChoice) (tea.Model, tea.Cmd) {
	if choice == confirmChoiceNone {
		return m, nil
	}
	pending, sessionID, messageID := m.pending, m.pendingSession, m.pendingMessage
	m.confirm.Close()
	m.pending = pendingNone
	m.pendingSession = 0
	m.pendingMessage = 0
	if choice != confirmChoiceConfirm {
		return m, nil
	}
	switch pending {
	case pendingDeleteSession:
		return m, deleteSessionCmd(m.lifecycle, sessionID)
	case pendingDeleteMessage:
		return m, deleteMessageCmd(m.lifecycle, sessionID, messageID)
	}
	return m, nil
}

func (m *ConsoleModel) handleSessions(msg sessionsMsg) (tea.Model, tea.Cmd) {
	if !m.sessionLoop.Accept(msg.gen) {
		return m, nil
	}
	if msg.err != nil {
		if msg.mode == chat.FetchVisible {
			m.errText = "load sessions failed: " + msg.err.Error()
			m.loading = false
		} else {
			m.log.Warn("session refresh failed", logging.F("err", msg.err))
		}
		return m, nil
	}
	m.loading = false
	if chat.SessionsChanged(m.sidebar.Sessions(), msg.sessions) {
		m.sidebar.SetSessions(msg.sessions)
	}
	if m.sidebar.SelectedID() > 0 && !m.messageLoop.Running() {
		return m, m.switchSession()
	}
	return m, nil
}

func (m *ConsoleModel) handleMessages(msg messagesMsg) (tea.Model, tea.Cmd) {
	if !m.messageLoop.Accept(msg.gen) {
		return m, nil
	}
	if msg.sessionID != m.sidebar.SelectedID() {
		return m, nil
	}
	if msg.err != nil {
		if msg.mode == chat.FetchVisible {
			m.errText = "load messages failed: " + msg.err.Error()
		} else {
			m.log.Warn("message refresh failed",
				logging.F("session", msg.sessionID), logging.F("err", msg.err))
		}
		return m, nil
	}
	if msg.deleted {
		m.messageLoop.Stop()
		m.sidebar.SetSessions(mustRemove(m.sidebar.Sessions(), msg.sessionID))
		m.transcript.SetMessages(nil, true)
		m.messagesFor = 0
		m.errText = "session was deleted on the server"
		if m.sidebar.SelectedID() > 0 {
			return m, m.switchSession()
		}
		return m, nil
	}
	newSession := msg.sessionID != m.messagesFor
	if newSession || chat.MessagesChanged(m.transcript.Messages(), msg.messages) {
		m.transcript.SetMessages(msg.messages, newSession)
		m.messagesFor = msg.sessionID
	}
	return m, nil
}

func (m *ConsoleModel) handleSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = "delete failed: " + msg.err.Error()
		return m, nil
	}
	m.sidebar.SetSessions(mustRemove(m.sidebar.Sessions(), msg.sessionID))
	m.status = "session deleted"
	if msg.sessionID == m.messagesFor {
		m.transcript.SetMessages(nil, true)
		m.messagesFor = 0
	}
	if m.sidebar.SelectedID() > 0 {
		return m, tea.Batch(m.switchSession(), m.refreshSessionsNow())
	}
	m.messageLoop.Stop()
	return m, m.refreshSessionsNow()
}

// switchSession restarts the message loop for the newly selected session.
// The bumped generation discards any response still in flight for the
// previous one.
func (m *ConsoleModel) switchSession() tea.Cmd {
	sessionID := m.sidebar.SelectedID()
	if sessionID <= 0 {
		m.messageLoop.Stop()
		return nil
	}
	gen := m.messageLoop.Restart()
	cmds := []tea.Cmd{
		fetchMessagesCmd(m.api, sessionID, m.viewer, gen, m.messageLoop.NextMode()),
		messageTickCmd(m.settings.MessageInterval(), gen),
	}
	if m.viewer.Registered() {
		cmds = append(cmds, updateLastSeenCmd(m.api, m.viewer.UserID, sessionID))
	}
	return tea.Batch(cmds...)
}

func (m *ConsoleModel) refreshMessagesNow() tea.Cmd {
	sessionID := m.sidebar.SelectedID()
	if sessionID <= 0 || !m.messageLoop.Running() {
		return nil
	}
	return fetchMessagesCmd(m.api, sessionID, m.viewer, m.messageLoop.Gen(), chat.FetchSilent)
}

func (m *ConsoleModel) refreshSessionsNow() tea.Cmd {
	return fetchSessionsCmd(m.api, m.sessionLoop.Gen(), chat.FetchSilent)
}

func (m *ConsoleModel) leaveInputMode() {
	m.mode = consoleModeBrowse
	m.input.Clear()
	m.input.SetPlaceholder("")
	m.input.Blur()
}

func (m *ConsoleModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = width > 0 && height > 0
	bodyHeight := max(1, height-4)
	m.sidebar.Resize(sidebarWidth, bodyHeight)
	m.transcript.Resize(max(1, width-sidebarWidth-3), bodyHeight)
	m.input.Resize(max(1, width-2))
}

func (m *ConsoleModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *ConsoleModel) render() string {
	if !m.ready {
		return "loading..."
	}
	header := headerStyle.Render("helpdesk console")
	if m.stats != nil {
		header += "  " + statusStyle.Render(statsLine(m.stats))
	}
	if m.confirm.IsOpen() {
		return header + "\n\n" + m.confirm.View(m.width)
	}
	body := m.bodyView()
	inputLine := m.inputView()
	return strings.Join([]string{header, body, inputLine, m.statusLine()}, "\n")
}

func (m *ConsoleModel) bodyView() string {
	if m.loading {
		return statusStyle.Render(m.loader.View() + " loading sessions...")
	}
	divider := dividerStyle.Render("|")
	left := lipgloss.NewStyle().Width(sidebarWidth).Render(m.sidebar.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, divider, m.transcript.View())
}

func (m *ConsoleModel) inputView() string {
	if m.mode == consoleModeBrowse {
		return helpStyle.Render("enter reply | r resolve | o reopen | p priority | x delete | [ ] select msg | d delete msg | c copy | q quit")
	}
	return m.input.View()
}

func (m *ConsoleModel) statusLine() string {
	if m.errText != "" {
		return errorStyle.Render(m.errText)
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func statsLine(s *types.ChatStats) string {
	cells := []string{
		"total " + strconv.Itoa(s.TotalSessions),
		"open " + strconv.Itoa(s.OpenSessions),
		"today " + strconv.Itoa(s.TodaySessions),
	}
	for i, cell := range cells {
		cells[i] = runewidth.FillRight(cell, 10)
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}

func nextPriority(p types.SessionPriority) types.SessionPriority {
	for i, known := range types.Priorities {
		if known == p {
			return types.Priorities[(i+1)%len(types.Priorities)]
		}
	}
	return types.PriorityNormal
}

func mustRemove(sessions []*types.ChatSession, sessionID int64) []*types.ChatSession {
	out, _ := chat.RemoveSession(sessions, sessionID)
	return out
}
