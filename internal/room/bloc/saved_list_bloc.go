// Package bloc holds the two state containers a client session drives: the
// saved-room list and the profile form.
package bloc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/rx"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

var errNoToggleResult = errors.New("store returned no toggle result")

// ToggleMessage is the outcome of one Remove command. Err is nil on success.
type ToggleMessage struct {
	RoomID string
	Title  string
	Saved  bool
	Err    error
}

// SavedListBloc derives the saved-room list of the signed-in user and runs
// toggle commands against the room store.
type SavedListBloc struct {
	auth    domain.AuthSource
	store   domain.RoomStore
	prices  *domain.PriceFormatter
	logger  *logger.Logger
	metrics *metrics.Metrics

	state    *rx.ValueSubject[domain.SavedListState]
	messages *rx.PublishSubject[ToggleMessage]

	toggles chan string
	results chan ToggleMessage

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	disposer sync.Once
}

func NewSavedListBloc(
	auth domain.AuthSource,
	store domain.RoomStore,
	prices *domain.PriceFormatter,
	log *logger.Logger,
	m *metrics.Metrics,
) *SavedListBloc {
	if prices == nil {
		prices = domain.NewPriceFormatter("")
	}
	if log == nil {
		log = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &SavedListBloc{
		auth:     auth,
		store:    store,
		prices:   prices,
		logger:   log.Named("saved_list_bloc"),
		metrics:  m,
		state:    rx.NewValueSubject(domain.InitialSavedListState(), rx.WithEqual(domain.SavedListState.Equal)),
		messages: rx.NewPublishSubject[ToggleMessage](),
		toggles:  make(chan string),
		results:  make(chan ToggleMessage),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *SavedListBloc) State() domain.SavedListState {
	return b.state.Value()
}

// StateChanges starts with the current state and then emits every distinct
// state until ctx is done or the bloc is disposed.
func (b *SavedListBloc) StateChanges(ctx context.Context) <-chan domain.SavedListState {
	return b.state.Subscribe(ctx)
}

func (b *SavedListBloc) Messages(ctx context.Context) <-chan ToggleMessage {
	return b.messages.Subscribe(ctx)
}

// Remove toggles the saved flag of roomID for the signed-in user. It is a
// no-op after Dispose.
func (b *SavedListBloc) Remove(roomID string) {
	select {
	case b.toggles <- roomID:
	case <-b.ctx.Done():
	}
}

// Dispose stops the derivation and ends every stream. Toggles still in
// flight finish in the background; their results are dropped.
func (b *SavedListBloc) Dispose() {
	b.disposer.Do(func() {
		b.cancel()
		<-b.done
		b.state.Close()
		b.messages.Close()
	})
}

func (b *SavedListBloc) run() {
	defer close(b.done)

	states := rx.SwitchMap(b.ctx, b.auth.Changes(b.ctx), b.derive)
	for {
		select {
		case <-b.ctx.Done():
			return

		case s, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			if b.state.Set(s) {
				b.metrics.SavedListStateEmitted()
			}

		case roomID := <-b.toggles:
			b.toggle(roomID)

		case msg := <-b.results:
			b.messages.Publish(msg)
		}
	}
}

// derive maps one login state onto the stream of list states it produces.
func (b *SavedListBloc) derive(ctx context.Context, state domain.LoginState) <-chan domain.SavedListState {
	switch s := state.(type) {
	case domain.NotLoggedIn:
		return rx.Just(domain.SavedListState{Err: domain.ErrNotLoggedIn, RoomItems: []domain.RoomItem{}})
	case domain.LoggedIn:
		return b.watch(ctx, s.UID)
	default:
		b.logger.Warn("unknown login state", "state", state)
		return rx.Just(domain.SavedListState{Err: domain.UnknownLoginStateError(state), RoomItems: []domain.RoomItem{}})
	}
}

func (b *SavedListBloc) watch(ctx context.Context, uid string) <-chan domain.SavedListState {
	out := make(chan domain.SavedListState)

	go func() {
		defer close(out)

		emit := func(s domain.SavedListState) bool {
			select {
			case out <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}
		failed := func(err error) {
			b.logger.Error("saved rooms stream failed", "user_id", uid, "error", err)
			emit(domain.SavedListState{
				Err:       domain.NewRemoteOperationError("subscribe_saved_rooms", err),
				RoomItems: []domain.RoomItem{},
			})
		}

		if !emit(domain.InitialSavedListState()) {
			return
		}

		updates, err := b.store.SubscribeSavedRooms(ctx, uid)
		if err != nil {
			if ctx.Err() == nil {
				failed(err)
			}
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				if u.Err != nil {
					failed(u.Err)
					return
				}
				items := domain.ToRoomItems(u.Rooms, uid, b.prices)
				if !emit(domain.SavedListState{RoomItems: items}) {
					return
				}
			}
		}
	}()

	return out
}

// toggle runs on the event loop; the remote call itself does not.
func (b *SavedListBloc) toggle(roomID string) {
	switch s := b.auth.Current().(type) {
	case domain.NotLoggedIn:
		b.metrics.ToggleResult("not_logged_in")
		b.messages.Publish(ToggleMessage{RoomID: roomID, Err: domain.ErrNotLoggedIn})
	case domain.LoggedIn:
		go b.callToggle(roomID, s.UID)
	default:
		b.metrics.ToggleResult("unknown_state")
		b.messages.Publish(ToggleMessage{RoomID: roomID, Err: domain.UnknownLoginStateError(s)})
	}
}

func (b *SavedListBloc) callToggle(roomID, uid string) {
	start := time.Now()
	res, err := b.store.ToggleSaved(context.WithoutCancel(b.ctx), roomID, uid)
	b.metrics.ObserveRemote("toggle_saved", start)

	msg := ToggleMessage{RoomID: roomID}
	switch {
	case err != nil:
		b.logger.Warn("toggle saved failed", "room_id", roomID, "user_id", uid, "error", err)
		b.metrics.ToggleResult("failed")
		msg.Err = domain.NewRemoteOperationError("toggle_saved", err)
	case res == nil:
		b.logger.Warn("toggle saved returned no result", "room_id", roomID, "user_id", uid)
		b.metrics.ToggleResult("failed")
		msg.Err = domain.NewRemoteOperationError("toggle_saved", errNoToggleResult)
	default:
		msg.Title = res.Title
		msg.Saved = res.Saved
		if res.Saved {
			b.metrics.ToggleResult("saved")
		} else {
			b.metrics.ToggleResult("removed")
		}
	}

	select {
	case b.results <- msg:
	case <-b.ctx.Done():
		b.logger.Debug("toggle result discarded after dispose", "room_id", roomID)
	}
}
