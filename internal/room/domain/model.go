package domain

import (
	"time"
)

// LoginState is either NotLoggedIn or LoggedIn. A nil LoginState is treated as
// an unknown state by every consumer.
type LoginState interface {
	loginState()
}

type NotLoggedIn struct{}

type LoggedIn struct {
	UID string
}

func (NotLoggedIn) loginState() {}
func (LoggedIn) loginState()    {}

// SameLoginState reports whether two login states describe the same identity.
func SameLoginState(a, b LoginState) bool {
	return a == b
}

// RoomEntity is a room document as stored remotely.
type RoomEntity struct {
	ID           string
	Title        string
	Description  string
	Price        float64
	Address      string
	DistrictName string
	Phone        string
	Images       []string             // URLs, in display order
	UserIDsSaved map[string]time.Time // uid -> when that user saved the room
	CreatedAt    time.Time
}

// RoomItem is the display projection of a room saved by the current user.
type RoomItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Price        string    `json:"price"`
	Address      string    `json:"address"`
	DistrictName string    `json:"district_name"`
	Image        string    `json:"image"`
	SavedTime    time.Time `json:"saved_time"`
}

type SavedListState struct {
	Err       error
	IsLoading bool
	RoomItems []RoomItem
}

func InitialSavedListState() SavedListState {
	return SavedListState{IsLoading: true, RoomItems: []RoomItem{}}
}

// Equal compares errors by message, so two failures with the same cause text
// are considered the same state.
func (s SavedListState) Equal(other SavedListState) bool {
	if s.IsLoading != other.IsLoading {
		return false
	}
	if (s.Err == nil) != (other.Err == nil) {
		return false
	}
	if s.Err != nil && s.Err.Error() != other.Err.Error() {
		return false
	}
	if len(s.RoomItems) != len(other.RoomItems) {
		return false
	}
	for i := range s.RoomItems {
		a, b := s.RoomItems[i], other.RoomItems[i]
		if a.ID != b.ID || a.Title != b.Title || a.Price != b.Price || a.Address != b.Address ||
			a.DistrictName != b.DistrictName || a.Image != b.Image || !a.SavedTime.Equal(b.SavedTime) {
			return false
		}
	}
	return true
}

// SavedRoomsUpdate is one push of the saved-rooms subscription: either a full
// snapshot or the error that ended the subscription.
type SavedRoomsUpdate struct {
	Rooms []*RoomEntity
	Err   error
}

type ToggleResult struct {
	RoomID string
	Title  string
	Saved  bool // state after the toggle
}

// AvatarFile is a picked image. Two files with the same Path are the same pick.
type AvatarFile struct {
	Path    string
	Content []byte
}

type ProfileUpdate struct {
	UID         string
	FullName    string
	Address     string
	PhoneNumber string
	Avatar      *AvatarFile
}

type UserProfile struct {
	ID          string
	FullName    string
	Email       string
	Address     string
	PhoneNumber string
	AvatarURL   string
	UpdatedAt   time.Time
}
