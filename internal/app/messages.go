package app

import (
	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/types"
)

// Fetch results carry the generation of the loop that issued them so the
// model can discard responses that arrive after a session switch or stop.

type sessionListTickMsg struct {
	gen int
}

type messageTickMsg struct {
	gen int
}

type sessionsMsg struct {
	gen      int
	mode     chat.FetchMode
	sessions []*types.ChatSession
	err      error
}

type messagesMsg struct {
	gen       int
	sessionID int64
	mode      chat.FetchMode
	messages  []*types.ChatMessage
	deleted   bool
	err       error
}

type statsMsg struct {
	stats *types.ChatStats
	err   error
}

type sentMsg struct {
	sessionID int64
	err       error
}

type resolvedMsg struct {
	sessionID int64
	err       error
}

type reopenedMsg struct {
	sessionID int64
	err       error
}

type priorityChangedMsg struct {
	sessionID int64
	priority  types.SessionPriority
	err       error
}

type messageDeletedMsg struct {
	sessionID int64
	messageID int64
	err       error
}

type sessionDeletedMsg struct {
	sessionID int64
	err       error
}

type lastSeenMsg struct {
	sessionID int64
	err       error
}

type agentsMsg struct {
	count int
	err   error
}

type unreadMsg struct {
	count int
	err   error
}

type permissionsMsg struct {
	perms *client.Permissions
	err   error
}

type userSessionsMsg struct {
	sessions []*types.ChatSession
	err      error
}

type stateSavedMsg struct {
	err error
}
