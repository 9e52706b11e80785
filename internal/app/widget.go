package app

import (
	"errors"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/store"
	"helpdesk/internal/types"
)

type widgetMode int

const (
	widgetModeChat widgetMode = iota
	widgetModeAskName
	widgetModeAskContact
)

// WidgetModel is the end-user surface: one conversation, a composer, and a
// fast refresh loop. A guest is asked for a display name before the first
// message; the active session id survives restarts through the state store.
type WidgetModel struct {
	api   WidgetAPI
	state store.StateStore
	log   logging.Logger

	settings config.Settings

	viewer    types.ViewerIdentity
	hasViewer bool
	app       types.AppState

	width  int
	height int
	ready  bool

	transcript *TranscriptController
	input      *ChatInput

	loop chat.PollLoop

	agents int
	unread int

	mode        widgetMode
	pendingName string
	sending     bool

	status  string
	notice  string
	errText string
}

func NewWidgetModel(api WidgetAPI, st store.StateStore, token string, app *types.AppState, settings config.Settings, log logging.Logger) *WidgetModel {
	if log == nil {
		log = logging.Nop()
	}
	if app == nil {
		app = &types.AppState{}
	}
	m := &WidgetModel{
		api:        api,
		state:      st,
		log:        log,
		settings:   settings,
		app:        *app,
		transcript: NewTranscriptController(1, 1, settings.ScrollThreshold()),
		input:      NewChatInput(1),
	}
	viewer, err := chat.ResolveViewer(token, app)
	switch {
	case err == nil:
		m.viewer = viewer
		m.hasViewer = true
		m.mode = widgetModeChat
		m.input.SetPlaceholder("type a message")
	case errors.Is(err, chat.ErrNeedsGuestName):
		m.mode = widgetModeAskName
		m.input.SetPlaceholder("your name")
	}
	m.input.Focus()
	return m
}

func (m *WidgetModel) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchAgentsCmd(m.api)}
	if m.hasViewer && m.viewer.Registered() {
		cmds = append(cmds, fetchUnreadCmd(m.api, m.viewer.UserID))
		if !m.app.HasActiveSession() {
			cmds = append(cmds, fetchUserSessionsCmd(m.api, m.viewer.UserID))
		}
	}
	if m.hasViewer && m.app.HasActiveSession() {
		cmds = append(cmds, m.startLoop())
	}
	return tea.Batch(cmds...)
}

func (m *WidgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case messageTickMsg:
		if !m.loop.Accept(msg.gen) {
			return m, nil
		}
		sessionID := m.app.ActiveSessionID
		if sessionID <= 0 {
			return m, nil
		}
		return m, tea.Batch(
			fetchMessagesCmd(m.api, sessionID, m.viewer, msg.gen, m.loop.NextMode()),
			messageTickCmd(m.settings.WidgetInterval(), msg.gen),
		)
	case messagesMsg:
		return m.handleMessages(msg)
	case sentMsg:
		return m.handleSent(msg)
	case agentsMsg:
		if msg.err != nil {
			m.log.Warn("agent count failed", logging.F("err", msg.err))
			return m, nil
		}
		m.agents = msg.count
		return m, nil
	case unreadMsg:
		if msg.err != nil {
			m.log.Warn("unread count failed", logging.F("err", msg.err))
			return m, nil
		}
		m.unread = msg.count
		return m, nil
	case userSessionsMsg:
		return m.handleUserSessions(msg)
	case stateSavedMsg:
		if msg.err != nil {
			m.log.Warn("persist state failed", logging.F("err", msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *WidgetModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "pgup", "ctrl+u":
		m.transcript.ScrollUp(3)
		return m, nil
	case "pgdown", "ctrl+d":
		m.transcript.ScrollDown(3)
		return m, nil
	case "ctrl+g":
		m.transcript.GotoBottom()
		return m, nil
	}
	switch m.mode {
	case widgetModeAskName:
		return m.handleNameKey(msg)
	case widgetModeAskContact:
		return m.handleContactKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *WidgetModel) handleNameKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errText = "a display name is required to start a chat"
			return m, nil
		}
		m.errText = ""
		m.pendingName = name
		m.mode = widgetModeAskContact
		m.input.Clear()
		m.input.SetPlaceholder("email (optional, enter to skip)")
		return m, nil
	}
	return m, m.input.Update(msg)
}

func (m *WidgetModel) handleContactKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		contact := strings.TrimSpace(m.input.Value())
		viewer, err := chat.GuestViewer(m.pendingName, contact)
		if err != nil {
			m.mode = widgetModeAskName
			m.input.Clear()
			m.input.SetPlaceholder("your name")
			return m, nil
		}
		m.viewer = viewer
		m.hasViewer = true
		m.app.GuestName = viewer.DisplayName
		m.app.GuestContact = viewer.Contact
		m.mode = widgetModeChat
		m.input.Clear()
		m.input.SetPlaceholder("type a message")
		cmds := []tea.Cmd{saveStateCmd(m.state, m.app)}
		// A session stored from a previous run was waiting on the identity.
		if m.app.HasActiveSession() {
			cmds = append(cmds, m.startLoop())
		}
		return m, tea.Batch(cmds...)
	}
	return m, m.input.Update(msg)
}

func (m *WidgetModel) handleChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		if m.sending {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.errText = ""
		m.notice = ""
		m.input.Clear()
		m.sending = true
		// SessionID zero asks the service to open a new session.
		return m, sendMessageCmd(m.api, client.SendRequest{
			SessionID: m.app.ActiveSessionID,
			Sender:    types.SenderUser,
			Text:      text,
			Viewer:    m.viewer,
		})
	}
	return m, m.input.Update(msg)
}

func (m *WidgetModel) handleMessages(msg messagesMsg) (tea.Model, tea.Cmd) {
	if !m.loop.Accept(msg.gen) {
		return m, nil
	}
	if msg.sessionID != m.app.ActiveSessionID {
		return m, nil
	}
	if msg.err != nil {
		if msg.mode == chat.FetchVisible {
			m.errText = "load conversation failed: " + msg.err.Error()
		} else {
			m.log.Warn("conversation refresh failed",
				logging.F("session", msg.sessionID), logging.F("err", msg.err))
		}
		return m, nil
	}
	if msg.deleted {
		// The server removed the conversation; forget the pointer and let
		// the next send open a fresh session.
		m.loop.Stop()
		m.app.ClearActiveSession()
		m.transcript.SetMessages(nil, true)
		m.notice = "this conversation was closed; your next message starts a new one"
		return m, saveStateCmd(m.state, m.app)
	}
	newSession := msg.sessionID != m.transcriptSession()
	if newSession || chat.MessagesChanged(m.transcript.Messages(), msg.messages) {
		m.transcript.SetMessages(msg.messages, newSession)
	}
	return m, nil
}

func (m *WidgetModel) handleSent(msg sentMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	if msg.err != nil {
		m.errText = "send failed: " + msg.err.Error()
		return m, nil
	}
	m.transcript.GotoBottom()
	cmds := []tea.Cmd{}
	if msg.sessionID > 0 && msg.sessionID != m.app.ActiveSessionID {
		m.app.ActiveSessionID = msg.sessionID
		cmds = append(cmds, saveStateCmd(m.state, m.app), m.startLoop())
	} else if m.app.HasActiveSession() && !m.loop.Running() {
		cmds = append(cmds, m.startLoop())
	} else if m.loop.Running() {
		cmds = append(cmds, fetchMessagesCmd(m.api, m.app.ActiveSessionID, m.viewer, m.loop.Gen(), chat.FetchSilent))
	}
	return m, tea.Batch(cmds...)
}

func (m *WidgetModel) handleUserSessions(msg userSessionsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("list user sessions failed", logging.F("err", msg.err))
		return m, nil
	}
	if m.app.HasActiveSession() {
		return m, nil
	}
	for _, s := range msg.sessions {
		if s.Open() {
			m.app.ActiveSessionID = s.ID
			return m, tea.Batch(saveStateCmd(m.state, m.app), m.startLoop())
		}
	}
	return m, nil
}

func (m *WidgetModel) startLoop() tea.Cmd {
	gen := m.loop.Restart()
	return tea.Batch(
		fetchMessagesCmd(m.api, m.app.ActiveSessionID, m.viewer, gen, m.loop.NextMode()),
		messageTickCmd(m.settings.WidgetInterval(), gen),
	)
}

func (m *WidgetModel) transcriptSession() int64 {
	msgs := m.transcript.Messages()
	if len(msgs) == 0 {
		return 0
	}
	return msgs[0].SessionID
}

func (m *WidgetModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = width > 0 && height > 0
	m.transcript.Resize(max(1, width-2), max(1, height-4))
	m.input.Resize(max(1, width-2))
}

func (m *WidgetModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *WidgetModel) render() string {
	if !m.ready {
		return "loading..."
	}
	header := headerStyle.Render("support chat")
	if m.agents > 0 {
		header += "  " + statusStyle.Render(strconv.Itoa(m.agents)+" agent(s) online")
	} else {
		header += "  " + statusStyle.Render("leave a message, we reply as soon as we can")
	}
	if m.unread > 0 {
		header += "  " + sessionUnreadStyle.Render(strconv.Itoa(m.unread)+" unread")
	}
	switch m.mode {
	case widgetModeAskName:
		return header + "\n\n" + "Before we start, what should we call you?" + "\n" + m.input.View() + "\n" + m.statusLine()
	case widgetModeAskContact:
		return header + "\n\n" + "Where can we reach you if we miss you? (optional)" + "\n" + m.input.View() + "\n" + m.statusLine()
	}
	return strings.Join([]string{header, m.transcript.View(), m.input.View(), m.statusLine()}, "\n")
}

func (m *WidgetModel) statusLine() string {
	if m.errText != "" {
		return errorStyle.Render(m.errText)
	}
	if m.notice != "" {
		return noticeStyle.Render(m.notice)
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return helpStyle.Render("enter to send | esc to close")
}
