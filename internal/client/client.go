package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/types"
)

// Client issues request/response exchanges against the chat service. It is
// stateless apart from the bearer token; no call is retried, the caller's
// polling cadence is the retry mechanism.
type Client struct {
	baseURL   string
	endpoint  string
	tokenPath string
	token     string
	http      *http.Client
	log       logging.Logger
}

func New(cfg config.Settings, log logging.Logger) (*Client, error) {
	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	c := &Client{
		baseURL:   cfg.ServiceBaseURL(),
		endpoint:  cfg.ServiceEndpoint(),
		tokenPath: tokenPath,
		log:       log,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = "/api/chat.php"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: endpoint,
		token:    token,
		log:      logging.Nop(),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HasToken reports whether a bearer credential is available, which decides
// registered-vs-guest scoping upstream.
func (c *Client) HasToken() bool {
	return c != nil && strings.TrimSpace(c.token) != ""
}

func (c *Client) Token() string {
	if c == nil {
		return ""
	}
	return c.token
}

func (c *Client) ListSessions(ctx context.Context) ([]*types.ChatSession, error) {
	var resp sessionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "sessions", nil, nil, &resp); err != nil {
		return nil, err
	}
	return convertSessions(resp.Sessions), nil
}

func (c *Client) ListUserSessions(ctx context.Context, userID int64) ([]*types.ChatSession, error) {
	if userID <= 0 {
		return nil, errors.New("user id is required")
	}
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	var resp sessionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "user_sessions", params, nil, &resp); err != nil {
		return nil, err
	}
	return convertSessions(resp.Sessions), nil
}

// ListMessages fetches the ordered transcript for a session. The second
// result is true when the service reports the session as gone, which the
// caller must treat as a cleared pointer, not an error.
func (c *Client) ListMessages(ctx context.Context, sessionID int64, viewer types.ViewerIdentity) ([]*types.ChatMessage, bool, error) {
	if sessionID <= 0 {
		return nil, false, errors.New("session id is required")
	}
	params := url.Values{}
	params.Set("session_id", strconv.FormatInt(sessionID, 10))
	if viewer.Registered() {
		params.Set("user_id", strconv.FormatInt(viewer.UserID, 10))
	} else {
		if viewer.DisplayName != "" {
			params.Set("guest_name", viewer.DisplayName)
		}
		if viewer.Contact != "" {
			params.Set("guest_email", viewer.Contact)
		}
	}
	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "messages", params, nil, &resp); err != nil {
		return nil, false, err
	}
	if resp.SessionDeleted {
		return nil, true, nil
	}
	messages := make([]*types.ChatMessage, 0, len(resp.Messages))
	for _, w := range resp.Messages {
		messages = append(messages, w.toMessage())
	}
	return messages, false, nil
}

// Send posts one message. With a zero SessionID the service implicitly
// creates the session and returns the assigned id. Never issue the same
// user keystroke twice; the transport does not deduplicate.
func (c *Client) Send(ctx context.Context, req SendRequest) (int64, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return 0, errors.New("message text is required")
	}
	sender := req.Sender
	if sender == "" {
		sender = types.SenderUser
	}
	body := sendBody{
		SessionID:   req.SessionID,
		Sender:      string(sender),
		Message:     text,
		MessageType: "text",
	}
	if req.Viewer.Registered() {
		userID := req.Viewer.UserID
		body.UserID = &userID
	} else {
		body.GuestName = req.Viewer.DisplayName
		body.GuestEmail = req.Viewer.Contact
	}
	var resp sendResponse
	if err := c.doJSON(ctx, http.MethodPost, "send", nil, body, &resp); err != nil {
		return 0, err
	}
	return int64(resp.SessionID), nil
}

func (c *Client) Resolve(ctx context.Context, sessionID int64, notes string) error {
	body := map[string]any{"session_id": sessionID}
	if strings.TrimSpace(notes) != "" {
		body["resolution_notes"] = notes
	}
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "resolve", nil, body, &resp)
}

func (c *Client) Reopen(ctx context.Context, sessionID int64) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "reopen", nil, map[string]any{"session_id": sessionID}, &resp)
}

func (c *Client) UpdatePriority(ctx context.Context, sessionID int64, priority types.SessionPriority) error {
	body := map[string]any{"session_id": sessionID, "priority": string(priority)}
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "update_priority", nil, body, &resp)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "delete_message", nil, map[string]any{"message_id": messageID}, &resp)
}

func (c *Client) DeleteSession(ctx context.Context, sessionID int64) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "delete_session", nil, map[string]any{"session_id": sessionID}, &resp)
}

func (c *Client) UpdateLastSeen(ctx context.Context, userID, sessionID int64) error {
	body := map[string]any{"user_id": userID, "session_id": sessionID}
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "update_last_seen", nil, body, &resp)
}

func (c *Client) Stats(ctx context.Context) (*types.ChatStats, error) {
	var resp statsResponse
	if err := c.doJSON(ctx, http.MethodGet, "stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &types.ChatStats{
		TotalSessions:      int(resp.Stats.TotalSessions),
		OpenSessions:       int(resp.Stats.OpenSessions),
		TodaySessions:      int(resp.Stats.TodaySessions),
		AvgResponseMinutes: float64(resp.Stats.AvgResponseTime),
	}, nil
}

func (c *Client) UnreadCount(ctx context.Context, userID int64) (int, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	var resp unreadResponse
	if err := c.doJSON(ctx, http.MethodGet, "unread_count", params, nil, &resp); err != nil {
		return 0, err
	}
	return int(resp.UnreadCount), nil
}

func (c *Client) SupportAgents(ctx context.Context) (int, error) {
	var resp agentsResponse
	if err := c.doJSON(ctx, http.MethodGet, "support_agents", nil, nil, &resp); err != nil {
		return 0, err
	}
	return int(resp.OnlineAgents), nil
}

func (c *Client) CheckPermissions(ctx context.Context) (*Permissions, error) {
	var resp permissionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "check_permissions", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &Permissions{
		HasPermission: resp.HasPermission,
		CanRead:       resp.CanRead,
		CanWrite:      resp.CanWrite,
	}, nil
}

func convertSessions(wire []wireSession) []*types.ChatSession {
	sessions := make([]*types.ChatSession, 0, len(wire))
	for _, w := range wire {
		sessions = append(sessions, w.toSession())
	}
	return sessions
}

// doJSON performs one exchange against the service endpoint. Actions are
// query-string keys on a single endpoint, matching the service contract.
func (c *Client) doJSON(ctx context.Context, method, action string, params url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	rawQuery := action
	if encoded := params.Encode(); encoded != "" {
		rawQuery += "&" + encoded
	}
	requestURL := c.baseURL + c.endpoint + "?" + rawQuery

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(c.token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := logging.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", logging.F("action", action), logging.F("request_id", requestID), logging.F("err", err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		c.log.Debug("request rejected", logging.F("action", action), logging.F("request_id", requestID), logging.F("status", resp.StatusCode))
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	// The service occasionally reports failures inside a 2xx envelope.
	if env, ok := out.(interface{ apiError(int) *APIError }); ok {
		if apiErr := env.apiError(resp.StatusCode); apiErr != nil {
			return apiErr
		}
	}
	return nil
}

func (e envelope) apiError(status int) *APIError {
	if e.Error == "" {
		return nil
	}
	return &APIError{StatusCode: status, Message: e.Error}
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload envelope
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("chat service error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsSessionGone reports whether the failure means the referenced session no
// longer exists remotely.
func IsSessionGone(err error) bool {
	apiErr := AsAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusNotFound
}
