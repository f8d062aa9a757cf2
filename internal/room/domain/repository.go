package domain

import "context"

// RoomStore is the remote room collection as seen by the saved-list bloc.
type RoomStore interface {
	// SubscribeSavedRooms pushes a snapshot of the rooms uid has saved every
	// time that set changes. The stream is closed when ctx is done; an update
	// carrying Err is the last one.
	SubscribeSavedRooms(ctx context.Context, uid string) (<-chan SavedRoomsUpdate, error)
	ToggleSaved(ctx context.Context, roomID, uid string) (*ToggleResult, error)
}

type UserStore interface {
	UpdateProfile(ctx context.Context, update ProfileUpdate) error
}

// AuthSource exposes the login state of one client session.
type AuthSource interface {
	Current() LoginState
	// Changes starts with the current state.
	Changes(ctx context.Context) <-chan LoginState
}

// RoomRepository is the persistence side of RoomStore.
type RoomRepository interface {
	FindSavedByUser(ctx context.Context, uid string) ([]*RoomEntity, error)
	WatchSaved(ctx context.Context, uid string) (<-chan struct{}, error)
	ToggleSaved(ctx context.Context, roomID, uid string) (*ToggleResult, error)
}

type UserRepository interface {
	UpdateProfile(ctx context.Context, uid string, profile UserProfile) error
	GetEmailByID(ctx context.Context, uid string) (string, error)
}

type SavedRoomsCache interface {
	Get(ctx context.Context, uid string) ([]*RoomEntity, error)
	Set(ctx context.Context, uid string, rooms []*RoomEntity) error
	Delete(ctx context.Context, uid string) error
}

type Storage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Mailer interface {
	SendProfileUpdatedEmail(toEmail, fullName string) error
}
