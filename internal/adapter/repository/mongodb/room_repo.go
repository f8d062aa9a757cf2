package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	defaultPollInterval = 5 * time.Second
	maxToggleAttempts   = 5
)

type RoomRepository struct {
	collection   *mongo.Collection
	logger       *logger.Logger
	pollInterval time.Duration
}

func NewRoomRepository(db *mongo.Database, pollInterval time.Duration, log *logger.Logger) *RoomRepository {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &RoomRepository{
		collection:   db.Collection(roomsCollection),
		logger:       log,
		pollInterval: pollInterval,
	}
}

// EnsureIndexes creates the wildcard index backing the saved-rooms query.
func (r *RoomRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: savedField + ".$**", Value: 1}},
		Options: options.Index().SetName("user_ids_saved_wildcard"),
	})
	return mapError(err)
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.RoomEntity) (string, error) {
	doc, err := toRoomDocument(room)
	if err != nil {
		return "", err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("RoomRepository.Create: InsertOne failed", "error", err.Error())
		return "", mapError(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindSavedByUser returns the rooms uid has saved, most recently saved first.
func (r *RoomRepository) FindSavedByUser(ctx context.Context, uid string) ([]*domain.RoomEntity, error) {
	key, err := savedKey(uid)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: key, Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{key: bson.M{"$exists": true}}, opts)
	if err != nil {
		r.logger.Error("RoomRepository.FindSavedByUser: Find failed", "user_id", uid, "error", err.Error())
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var docs []*roomDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("RoomRepository.FindSavedByUser: decode failed", "user_id", uid, "error", err.Error())
		return nil, mapError(err)
	}
	return toDomainRooms(docs), nil
}

// ToggleSaved removes uid's save mark from the room when present and sets it
// to now otherwise. The write only applies if the mark is still in the state
// that was read; a concurrent toggle in between makes it re-read and retry.
func (r *RoomRepository) ToggleSaved(ctx context.Context, roomID, uid string) (*domain.ToggleResult, error) {
	key, err := savedKey(uid)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, domain.ErrRoomNotFound
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var doc roomDocument
		projection := options.FindOne().SetProjection(bson.M{"title": 1, key: 1})
		if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, projection).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrRoomNotFound
			}
			r.logger.Error("RoomRepository.ToggleSaved: FindOne failed", "room_id", roomID, "error", err.Error())
			return nil, mapError(err)
		}

		_, wasSaved := doc.UserIDsSaved[uid]
		update := bson.M{"$set": bson.M{key: time.Now().UTC()}}
		if wasSaved {
			update = bson.M{"$unset": bson.M{key: ""}}
		}

		filter := bson.M{"_id": oid, key: bson.M{"$exists": wasSaved}}
		res, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			r.logger.Error("RoomRepository.ToggleSaved: UpdateOne failed", "room_id", roomID, "error", err.Error())
			return nil, mapError(err)
		}
		if res.MatchedCount == 1 {
			r.logger.Debug("RoomRepository.ToggleSaved: toggled", "room_id", roomID, "user_id", uid, "saved", !wasSaved)
			return &domain.ToggleResult{RoomID: roomID, Title: doc.Title, Saved: !wasSaved}, nil
		}
		r.logger.Debug("RoomRepository.ToggleSaved: lost race, retrying", "room_id", roomID, "user_id", uid, "attempt", attempt+1)
	}

	r.logger.Warn("RoomRepository.ToggleSaved: too much contention", "room_id", roomID, "user_id", uid)
	return nil, fmt.Errorf("%w: toggle of room %s kept conflicting", domain.ErrUnavailable, roomID)
}

// WatchSaved signals every change that may alter uid's saved rooms. It uses a
// change stream and falls back to polling when the deployment has none. The
// channel holds at most one pending signal and is closed when ctx is done.
func (r *RoomRepository) WatchSaved(ctx context.Context, uid string) (<-chan struct{}, error) {
	key, err := savedKey(uid)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	stream, err := r.openStream(ctx, key)
	switch {
	case err == nil:
		go r.watchStream(ctx, uid, stream, out)
	case changeStreamsUnsupported(err):
		r.logger.Info("RoomRepository.WatchSaved: change streams unsupported, polling", "user_id", uid)
		baseline, err := r.fingerprint(ctx, uid)
		if err != nil {
			return nil, err
		}
		go r.poll(ctx, uid, baseline, out)
	default:
		r.logger.Error("RoomRepository.WatchSaved: Watch failed", "user_id", uid, "error", err.Error())
		return nil, mapError(err)
	}
	return out, nil
}

func (r *RoomRepository) openStream(ctx context.Context, key string) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument." + key: bson.M{"$exists": true}},
			bson.M{"updateDescription.removedFields": key},
			bson.M{"operationType": "delete"},
		}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return r.collection.Watch(ctx, pipeline, opts)
}

func (r *RoomRepository) watchStream(ctx context.Context, uid string, stream *mongo.ChangeStream, out chan struct{}) {
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		signal(out)
	}
	if ctx.Err() != nil {
		close(out)
		return
	}
	r.logger.Warn("RoomRepository.WatchSaved: change stream ended, polling", "user_id", uid, "error", stream.Err())
	// Something may have changed while the stream was failing.
	signal(out)
	baseline, _ := r.fingerprint(ctx, uid)
	r.poll(ctx, uid, baseline, out)
}

// poll signals whenever the fingerprint moves away from last.
func (r *RoomRepository) poll(ctx context.Context, uid, last string, out chan struct{}) {
	defer close(out)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current, err := r.fingerprint(ctx, uid)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warn("RoomRepository.WatchSaved: poll failed", "user_id", uid, "error", err.Error())
				continue
			}
			if current != last {
				last = current
				signal(out)
			}
		}
	}
}

// fingerprint summarises everything the saved-list projection reads.
func (r *RoomRepository) fingerprint(ctx context.Context, uid string) (string, error) {
	rooms, err := r.FindSavedByUser(ctx, uid)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(rooms))
	for _, room := range rooms {
		images := strings.Join(room.Images, ",")
		parts = append(parts, fmt.Sprintf("%s|%s|%v|%s|%s|%s|%d",
			room.ID, room.Title, room.Price, room.Address, room.DistrictName, images,
			room.UserIDsSaved[uid].UnixNano()))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";"), nil
}

func signal(out chan struct{}) {
	select {
	case out <- struct{}{}:
	default:
	}
}
