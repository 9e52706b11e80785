package types

type ViewerKind string

const (
	ViewerRegistered ViewerKind = "registered"
	ViewerGuest      ViewerKind = "guest"
)

// ViewerIdentity scopes every remote call: registered viewers carry their
// stable user id, guests carry the persisted display name and contact.
type ViewerIdentity struct {
	Kind        ViewerKind `json:"kind"`
	UserID      int64      `json:"user_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Contact     string     `json:"contact,omitempty"`
}

func (v ViewerIdentity) Registered() bool {
	return v.Kind == ViewerRegistered && v.UserID > 0
}
