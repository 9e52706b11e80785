package app

import (
	"context"

	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/types"
)

// MessageLister and MessageSender are the transport slices shared by both
// surfaces; the wider per-surface interfaces embed them. *client.Client
// satisfies everything here; tests substitute fakes.
type MessageLister interface {
	ListMessages(ctx context.Context, sessionID int64, viewer types.ViewerIdentity) ([]*types.ChatMessage, bool, error)
}

type MessageSender interface {
	Send(ctx context.Context, req client.SendRequest) (int64, error)
}

// ConsoleAPI is everything the operator console needs from the transport.
type ConsoleAPI interface {
	MessageLister
	MessageSender
	ListSessions(ctx context.Context) ([]*types.ChatSession, error)
	Stats(ctx context.Context) (*types.ChatStats, error)
	UpdateLastSeen(ctx context.Context, userID, sessionID int64) error
	CheckPermissions(ctx context.Context) (*client.Permissions, error)
	chat.TransitionClient
}

// WidgetAPI is everything the end-user widget needs from the transport.
type WidgetAPI interface {
	MessageLister
	MessageSender
	ListUserSessions(ctx context.Context, userID int64) ([]*types.ChatSession, error)
	SupportAgents(ctx context.Context) (int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

var _ ConsoleAPI = (*client.Client)(nil)
var _ WidgetAPI = (*client.Client)(nil)
