package cache

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

// CachedRoomStore decorates a RoomStore: subscribers get the cached snapshot
// first, every live snapshot refreshes the cache and toggles invalidate it.
// Cache failures are logged and never reach the caller.
type CachedRoomStore struct {
	next   domain.RoomStore
	cache  domain.SavedRoomsCache
	logger *logger.Logger
}

func NewCachedRoomStore(next domain.RoomStore, cache domain.SavedRoomsCache, log *logger.Logger) *CachedRoomStore {
	return &CachedRoomStore{next: next, cache: cache, logger: log}
}

func (s *CachedRoomStore) SubscribeSavedRooms(ctx context.Context, uid string) (<-chan domain.SavedRoomsUpdate, error) {
	upstream, err := s.next.SubscribeSavedRooms(ctx, uid)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, uid)
	if err != nil {
		s.logger.Warn("CachedRoomStore.SubscribeSavedRooms: cache read failed", "user_id", uid, "error", err.Error())
		cached = nil
	}

	out := make(chan domain.SavedRoomsUpdate)
	go func() {
		defer close(out)

		send := func(u domain.SavedRoomsUpdate) bool {
			select {
			case out <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if cached != nil {
			s.logger.Debug("CachedRoomStore.SubscribeSavedRooms: replaying cached snapshot", "user_id", uid, "rooms", len(cached))
			if !send(domain.SavedRoomsUpdate{Rooms: cached}) {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-upstream:
				if !ok {
					return
				}
				if u.Err == nil {
					if err := s.cache.Set(ctx, uid, u.Rooms); err != nil {
						s.logger.Warn("CachedRoomStore.SubscribeSavedRooms: cache write failed", "user_id", uid, "error", err.Error())
					}
				}
				if !send(u) || u.Err != nil {
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *CachedRoomStore) ToggleSaved(ctx context.Context, roomID, uid string) (*domain.ToggleResult, error) {
	res, err := s.next.ToggleSaved(ctx, roomID, uid)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, uid); err != nil {
		s.logger.Warn("CachedRoomStore.ToggleSaved: cache invalidation failed", "user_id", uid, "error", err.Error())
	}
	return res, nil
}
