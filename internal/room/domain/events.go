package domain

import "time"

// NATS subjects.
const (
	SubjectSavedToggled   = "room.saved.toggled"
	SubjectProfileUpdated = "user.profile.updated"
	// SessionSubjectPrefix is followed by the session id.
	SessionSubjectPrefix = "auth.session."
)

type SavedToggledEvent struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Saved     bool      `json:"saved"`
	ToggledAt time.Time `json:"toggled_at"`
}

type ProfileUpdatedEvent struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEvent is published by the auth service on SessionSubjectPrefix+id.
// A login is applied only through Token; UserID is informational.
type SessionEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Token  string `json:"token,omitempty"`
}

const (
	SessionEventLogin  = "login"
	SessionEventLogout = "logout"
)
