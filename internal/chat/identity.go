package chat

import (
	"errors"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"helpdesk/internal/types"
)

// ErrNeedsGuestName is returned when no authenticated context exists and no
// guest name has been stored yet; the surface must collect one before any
// session can be created.
var ErrNeedsGuestName = errors.New("guest display name required")

// ResolveViewer determines who the current viewer is. A bearer token wins
// over a stored guest identity; the token is decoded without verification
// because validation is the service's job, the client only needs the claims
// to scope its requests.
func ResolveViewer(token string, state *types.AppState) (types.ViewerIdentity, error) {
	if viewer, ok := viewerFromToken(token); ok {
		return viewer, nil
	}
	if state != nil && strings.TrimSpace(state.GuestName) != "" {
		return types.ViewerIdentity{
			Kind:        types.ViewerGuest,
			DisplayName: strings.TrimSpace(state.GuestName),
			Contact:     strings.TrimSpace(state.GuestContact),
		}, nil
	}
	return types.ViewerIdentity{}, ErrNeedsGuestName
}

// GuestViewer builds the identity for a freshly collected guest name.
func GuestViewer(name, contact string) (types.ViewerIdentity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ViewerIdentity{}, ErrNeedsGuestName
	}
	return types.ViewerIdentity{
		Kind:        types.ViewerGuest,
		DisplayName: name,
		Contact:     strings.TrimSpace(contact),
	}, nil
}

func viewerFromToken(token string) (types.ViewerIdentity, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.ViewerIdentity{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return types.ViewerIdentity{}, false
	}
	userID := claimInt(claims, "user_id")
	if userID <= 0 {
		userID = claimInt(claims, "sub")
	}
	if userID <= 0 {
		return types.ViewerIdentity{}, false
	}
	name := claimString(claims, "username")
	if name == "" {
		name = claimString(claims, "name")
	}
	return types.ViewerIdentity{
		Kind:        types.ViewerRegistered,
		UserID:      userID,
		DisplayName: name,
	}, true
}

func claimInt(claims jwt.MapClaims, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
