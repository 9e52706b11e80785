package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/store"
	"helpdesk/internal/types"
)

func sessionListTickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return sessionListTickMsg{gen: gen}
	})
}

func messageTickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return messageTickMsg{gen: gen}
	})
}

func fetchSessionsCmd(api ConsoleAPI, gen int, mode chat.FetchMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		sessions, err := api.ListSessions(ctx)
		return sessionsMsg{gen: gen, mode: mode, sessions: sessions, err: err}
	}
}

func fetchMessagesCmd(api MessageLister, sessionID int64, viewer types.ViewerIdentity, gen int, mode chat.FetchMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		messages, deleted, err := api.ListMessages(ctx, sessionID, viewer)
		return messagesMsg{gen: gen, sessionID: sessionID, mode: mode, messages: messages, deleted: deleted, err: err}
	}
}

func fetchStatsCmd(api ConsoleAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		stats, err := api.Stats(ctx)
		return statsMsg{stats: stats, err: err}
	}
}

func sendMessageCmd(api MessageSender, req client.SendRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		sessionID, err := api.Send(ctx, req)
		return sentMsg{sessionID: sessionID, err: err}
	}
}

func resolveSessionCmd(lc *chat.Lifecycle, sessionID int64, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		err := lc.Resolve(ctx, sessionID, notes)
		return resolvedMsg{sessionID: sessionID, err: err}
	}
}

func reopenSessionCmd(lc *chat.Lifecycle, sessionID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		err := lc.Reopen(ctx, sessionID)
		return reopenedMsg{sessionID: sessionID, err: err}
	}
}

func updatePriorityCmd(lc *chat.Lifecycle, sessionID int64, priority types.SessionPriority) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		err := lc.UpdatePriority(ctx, sessionID, priority)
		return priorityChangedMsg{sessionID: sessionID, priority: priority, err: err}
	}
}

func deleteMessageCmd(lc *chat.Lifecycle, sessionID, messageID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		err := lc.DeleteMessage(ctx, messageID)
		return messageDeletedMsg{sessionID: sessionID, messageID: messageID, err: err}
	}
}

func deleteSessionCmd(lc *chat.Lifecycle, sessionID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()
		err := lc.DeleteSession(ctx, sessionID)
		return sessionDeletedMsg{sessionID: sessionID, err: err}
	}
}

func updateLastSeenCmd(api ConsoleAPI, userID, sessionID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := api.UpdateLastSeen(ctx, userID, sessionID)
		return lastSeenMsg{sessionID: sessionID, err: err}
	}
}

func fetchPermissionsCmd(api ConsoleAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		perms, err := api.CheckPermissions(ctx)
		return permissionsMsg{perms: perms, err: err}
	}
}

func fetchAgentsCmd(api WidgetAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		count, err := api.SupportAgents(ctx)
		return agentsMsg{count: count, err: err}
	}
}

func fetchUnreadCmd(api WidgetAPI, userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		count, err := api.UnreadCount(ctx, userID)
		return unreadMsg{count: count, err: err}
	}
}

func fetchUserSessionsCmd(api WidgetAPI, userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		sessions, err := api.ListUserSessions(ctx, userID)
		return userSessionsMsg{sessions: sessions, err: err}
	}
}

func saveStateCmd(st store.StateStore, state types.AppState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		err := st.Save(ctx, &state)
		return stateSavedMsg{err: err}
	}
}
