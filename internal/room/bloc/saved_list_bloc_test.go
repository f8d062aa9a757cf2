package bloc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func flatA() *domain.RoomEntity {
	return &domain.RoomEntity{
		ID:           "r1",
		Title:        "Flat A",
		Price:        100,
		Images:       []string{"x.jpg"},
		UserIDsSaved: map[string]time.Time{"u1": t0},
	}
}

func newSavedListBloc(t *testing.T, src domain.AuthSource, store domain.RoomStore) *SavedListBloc {
	t.Helper()
	b := NewSavedListBloc(src, store, domain.NewPriceFormatter("en"), logger.NewNop(), metrics.New("saved_list_test"))
	t.Cleanup(b.Dispose)
	return b
}

func updatesChan(size int) (chan domain.SavedRoomsUpdate, <-chan domain.SavedRoomsUpdate) {
	ch := make(chan domain.SavedRoomsUpdate, size)
	return ch, ch
}

func TestSavedListBloc_NotLoggedIn(t *testing.T) {
	store := new(MockRoomStore)
	b := newSavedListBloc(t, auth.NewStateSource(nil, logger.NewNop()), store)

	states := b.StateChanges(context.Background())

	s := nextMatching(t, states, func(s domain.SavedListState) bool { return s.Err != nil })
	assert.ErrorIs(t, s.Err, domain.ErrNotLoggedIn)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.RoomItems)
	store.AssertNotCalled(t, "SubscribeSavedRooms", mock.Anything, mock.Anything)
}

func TestSavedListBloc_LoadingThenItems(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	store := new(MockRoomStore)
	in, out := updatesChan(1)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)

	b := newSavedListBloc(t, src, store)
	states := b.StateChanges(context.Background())
	nextMatching(t, states, func(s domain.SavedListState) bool { return s.Err != nil })

	src.SignInUID("u1")
	loading := next(t, states)
	assert.True(t, loading.IsLoading)
	assert.NoError(t, loading.Err)

	in <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}
	s := next(t, states)
	assert.False(t, s.IsLoading)
	assert.NoError(t, s.Err)
	require.Len(t, s.RoomItems, 1)
	assert.Equal(t, domain.RoomItem{
		ID:        "r1",
		Title:     "Flat A",
		Price:     "100",
		Image:     "x.jpg",
		SavedTime: t0,
	}, s.RoomItems[0])
	assert.True(t, b.State().Equal(s))
}

func TestSavedListBloc_StoreErrorEndsDerivation(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	cause := errors.New("connection reset")
	store := new(MockRoomStore)
	in, out := updatesChan(2)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)

	b := newSavedListBloc(t, src, store)
	states := b.StateChanges(context.Background())
	assert.True(t, next(t, states).IsLoading)

	in <- domain.SavedRoomsUpdate{Err: cause}
	in <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}

	s := next(t, states)
	assert.ErrorIs(t, s.Err, cause)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.RoomItems)
	assertQuiet(t, states)
}

func TestSavedListBloc_SubscribeFailure(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(nil, domain.ErrUnavailable)

	b := newSavedListBloc(t, src, store)
	states := b.StateChanges(context.Background())

	s := nextMatching(t, states, func(s domain.SavedListState) bool { return s.Err != nil })
	assert.ErrorIs(t, s.Err, domain.ErrUnavailable)
	var remote *domain.RemoteOperationError
	assert.ErrorAs(t, s.Err, &remote)
}

func TestSavedListBloc_SwitchDropsPreviousUser(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	in1, out1 := updatesChan(1)
	in2, out2 := updatesChan(1)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out1, nil)
	store.On("SubscribeSavedRooms", mock.Anything, "u2").Return(out2, nil)

	b := newSavedListBloc(t, src, store)
	states := b.StateChanges(context.Background())
	next(t, states)

	in1 <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}
	require.Len(t, next(t, states).RoomItems, 1)

	src.SignInUID("u2")
	assert.True(t, next(t, states).IsLoading)

	// u1 keeps pushing after the switch; none of it may surface.
	select {
	case in1 <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}:
	default:
	}
	room := flatA()
	room.ID = "r2"
	room.UserIDsSaved = map[string]time.Time{"u2": t0.Add(time.Hour)}
	in2 <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{room}}

	s := next(t, states)
	require.Len(t, s.RoomItems, 1)
	assert.Equal(t, "r2", s.RoomItems[0].ID)
	assert.Equal(t, t0.Add(time.Hour), s.RoomItems[0].SavedTime)
}

func TestSavedListBloc_EqualStatesCollapse(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	in, out := updatesChan(3)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)

	b := newSavedListBloc(t, src, store)
	states := b.StateChanges(context.Background())
	next(t, states)

	in <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}
	in <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{flatA()}}
	in <- domain.SavedRoomsUpdate{Rooms: []*domain.RoomEntity{}}

	assert.Len(t, next(t, states).RoomItems, 1)
	assert.Empty(t, next(t, states).RoomItems)
}

func TestSavedListBloc_UnknownLoginState(t *testing.T) {
	b := newSavedListBloc(t, newFakeAuth(nil), new(MockRoomStore))
	states := b.StateChanges(context.Background())

	s := nextMatching(t, states, func(s domain.SavedListState) bool { return s.Err != nil })
	assert.ErrorIs(t, s.Err, domain.ErrUnknownLoginState)
	assert.False(t, s.IsLoading)
}

func TestSavedListBloc_RemoveWhileNotLoggedIn(t *testing.T) {
	store := new(MockRoomStore)
	b := newSavedListBloc(t, auth.NewStateSource(nil, logger.NewNop()), store)
	messages := b.Messages(context.Background())

	b.Remove("r1")

	msg := next(t, messages)
	assert.Equal(t, "r1", msg.RoomID)
	assert.ErrorIs(t, msg.Err, domain.ErrNotLoggedIn)
	store.AssertNotCalled(t, "ToggleSaved", mock.Anything, mock.Anything, mock.Anything)
}

func TestSavedListBloc_RemoveResults(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	_, out := updatesChan(0)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)
	store.On("ToggleSaved", mock.Anything, "r1", "u1").Return(&domain.ToggleResult{RoomID: "r1", Title: "Flat A"}, nil)
	store.On("ToggleSaved", mock.Anything, "r9", "u1").Return(nil, domain.ErrRoomNotFound)

	b := newSavedListBloc(t, src, store)
	messages := b.Messages(context.Background())

	b.Remove("r1")
	msg := next(t, messages)
	assert.NoError(t, msg.Err)
	assert.Equal(t, "Flat A", msg.Title)
	assert.False(t, msg.Saved)

	b.Remove("r9")
	msg = next(t, messages)
	assert.ErrorIs(t, msg.Err, domain.ErrRoomNotFound)
	assert.Empty(t, msg.Title)
}

func TestSavedListBloc_RemoveWithoutResultIsAnError(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	_, out := updatesChan(0)
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)
	store.On("ToggleSaved", mock.Anything, "r1", "u1").Return(nil, nil)

	b := newSavedListBloc(t, src, store)
	messages := b.Messages(context.Background())

	b.Remove("r1")
	msg := next(t, messages)
	require.Error(t, msg.Err)
	assert.ErrorIs(t, msg.Err, errNoToggleResult)
	var remote *domain.RemoteOperationError
	require.ErrorAs(t, msg.Err, &remote)
	assert.Equal(t, "toggle_saved", remote.Op)
	assert.Equal(t, "r1", msg.RoomID)
}

func TestSavedListBloc_TogglesCompleteOutOfOrder(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	src.SignInUID("u1")
	store := new(MockRoomStore)
	_, out := updatesChan(0)
	release := make(chan struct{})
	store.On("SubscribeSavedRooms", mock.Anything, "u1").Return(out, nil)
	store.On("ToggleSaved", mock.Anything, "slow", "u1").
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.ToggleResult{RoomID: "slow", Title: "Slow"}, nil)
	store.On("ToggleSaved", mock.Anything, "fast", "u1").
		Return(&domain.ToggleResult{RoomID: "fast", Title: "Fast"}, nil)

	b := newSavedListBloc(t, src, store)
	messages := b.Messages(context.Background())

	b.Remove("slow")
	b.Remove("fast")
	assert.Equal(t, "Fast", next(t, messages).Title)

	close(release)
	assert.Equal(t, "Slow", next(t, messages).Title)
}

func TestSavedListBloc_Dispose(t *testing.T) {
	src := auth.NewStateSource(nil, logger.NewNop())
	b := NewSavedListBloc(src, new(MockRoomStore), nil, nil, nil)
	states := b.StateChanges(context.Background())
	messages := b.Messages(context.Background())

	b.Dispose()
	b.Dispose()
	b.Remove("r1")

	waitClosed(t, states)
	waitClosed(t, messages)
}
