package store

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// GeoPoint is an optional coordinate attached to an assistant reply.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Message struct {
	ID        string    `json:"id"` // UUID
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Location  *GeoPoint `json:"location,omitempty"`
}

type User struct {
	DisplayName    string `json:"display_name"`
	Email          string `json:"email"`
	AvatarInitials string `json:"avatar_initials"`
}
