package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFormatter_Format(t *testing.T) {
	en := NewPriceFormatter("en")
	assert.Equal(t, "100", en.Format(100))
	assert.Equal(t, "1,500,000", en.Format(1500000))
	assert.Equal(t, "99.50", en.Format(99.5))

	vi := NewPriceFormatter("vi")
	assert.Equal(t, "1.500.000", vi.Format(1500000))

	fallback := NewPriceFormatter("not a locale!")
	assert.Equal(t, "2,000", fallback.Format(2000))
}

func TestToRoomItems_ProjectsSavedRoomsForUser(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rooms := []*RoomEntity{
		{
			ID:           "r1",
			Title:        "Flat A",
			Price:        100,
			Images:       []string{"x.jpg", "y.jpg"},
			UserIDsSaved: map[string]time.Time{"u1": t0},
		},
		{
			ID:           "r2",
			Title:        "Saved by someone else",
			UserIDsSaved: map[string]time.Time{"u2": t0},
		},
		nil,
	}

	items := ToRoomItems(rooms, "u1", NewPriceFormatter("en"))
	require.Len(t, items, 1)
	assert.Equal(t, RoomItem{
		ID:        "r1",
		Title:     "Flat A",
		Price:     "100",
		Image:     "x.jpg",
		SavedTime: t0,
	}, items[0])
}

func TestToRoomItems_NoImage(t *testing.T) {
	rooms := []*RoomEntity{{
		ID:           "r1",
		Address:      "12 Main St",
		DistrictName: "Center",
		UserIDsSaved: map[string]time.Time{"u1": time.Unix(0, 0)},
	}}
	items := ToRoomItems(rooms, "u1", NewPriceFormatter("en"))
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Image)
	assert.Equal(t, "12 Main St", items[0].Address)
	assert.Equal(t, "Center", items[0].DistrictName)
}

func TestSavedListState_Equal(t *testing.T) {
	t0 := time.Unix(100, 0)
	items := []RoomItem{{ID: "r1", Title: "A", SavedTime: t0}}

	assert.True(t, InitialSavedListState().Equal(SavedListState{IsLoading: true}))
	assert.True(t, SavedListState{RoomItems: items}.Equal(SavedListState{RoomItems: []RoomItem{{ID: "r1", Title: "A", SavedTime: t0}}}))
	assert.False(t, SavedListState{RoomItems: items}.Equal(SavedListState{}))
	assert.False(t, SavedListState{IsLoading: true}.Equal(SavedListState{}))
	assert.True(t, SavedListState{Err: ErrNotLoggedIn}.Equal(SavedListState{Err: ErrNotLoggedIn}))
	assert.False(t, SavedListState{Err: ErrNotLoggedIn}.Equal(SavedListState{Err: ErrRoomNotFound}))
	assert.False(t, SavedListState{Err: ErrNotLoggedIn}.Equal(SavedListState{}))
}

func TestSameLoginState(t *testing.T) {
	assert.True(t, SameLoginState(NotLoggedIn{}, NotLoggedIn{}))
	assert.True(t, SameLoginState(LoggedIn{UID: "u1"}, LoggedIn{UID: "u1"}))
	assert.False(t, SameLoginState(LoggedIn{UID: "u1"}, LoggedIn{UID: "u2"}))
	assert.False(t, SameLoginState(LoggedIn{UID: "u1"}, NotLoggedIn{}))
	assert.True(t, SameLoginState(nil, nil))
}
