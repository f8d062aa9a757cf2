package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	savedRoomsKeyPrefix = "saved_rooms:"
	defaultTTL          = 10 * time.Minute
)

// SavedRoomsCache keeps the last saved-rooms snapshot of every user as JSON.
type SavedRoomsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSavedRoomsCache(client *redis.Client, ttl time.Duration) *SavedRoomsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SavedRoomsCache{client: client, ttl: ttl}
}

func savedRoomsKey(uid string) string {
	return savedRoomsKeyPrefix + uid
}

// Get returns nil, nil on a cache miss.
func (c *SavedRoomsCache) Get(ctx context.Context, uid string) ([]*domain.RoomEntity, error) {
	data, err := c.client.Get(ctx, savedRoomsKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get saved rooms for %s: %w", uid, err)
	}

	var rooms []*domain.RoomEntity
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("decode saved rooms for %s: %w", uid, err)
	}
	if rooms == nil {
		rooms = []*domain.RoomEntity{}
	}
	return rooms, nil
}

func (c *SavedRoomsCache) Set(ctx context.Context, uid string, rooms []*domain.RoomEntity) error {
	if rooms == nil {
		rooms = []*domain.RoomEntity{}
	}
	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encode saved rooms for %s: %w", uid, err)
	}
	if err := c.client.Set(ctx, savedRoomsKey(uid), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set saved rooms for %s: %w", uid, err)
	}
	return nil
}

func (c *SavedRoomsCache) Delete(ctx context.Context, uid string) error {
	if err := c.client.Del(ctx, savedRoomsKey(uid)).Err(); err != nil {
		return fmt.Errorf("redis del saved rooms for %s: %w", uid, err)
	}
	return nil
}
