package bloc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/rx"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SubscribeSavedRooms(ctx context.Context, uid string) (<-chan domain.SavedRoomsUpdate, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.SavedRoomsUpdate), args.Error(1)
}

func (m *MockRoomStore) ToggleSaved(ctx context.Context, roomID, uid string) (*domain.ToggleResult, error) {
	args := m.Called(ctx, roomID, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToggleResult), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// fakeAuth lets tests push any login state, including the nil unknown one.
type fakeAuth struct {
	state *rx.ValueSubject[domain.LoginState]
}

func newFakeAuth(initial domain.LoginState) *fakeAuth {
	return &fakeAuth{state: rx.NewValueSubject(initial)}
}

func (f *fakeAuth) Current() domain.LoginState {
	return f.state.Value()
}

func (f *fakeAuth) Changes(ctx context.Context) <-chan domain.LoginState {
	return f.state.Subscribe(ctx)
}

func (f *fakeAuth) set(s domain.LoginState) {
	f.state.Set(s)
}

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

// nextMatching skips values until match accepts one.
func nextMatching[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	for {
		if v := next(t, ch); match(v) {
			return v
		}
	}
}

func assertQuiet[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value: %+v", v)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream not closed")
		}
	}
}
