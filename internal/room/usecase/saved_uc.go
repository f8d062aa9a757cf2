package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

var tracer = otel.Tracer("room-service/usecase")

// SavedRoomsUsecase is the RoomStore backed by the room repository.
type SavedRoomsUsecase struct {
	repo      domain.RoomRepository
	publisher domain.EventPublisher
	logger    *logger.Logger
	timeout   time.Duration
}

func NewSavedRoomsUsecase(repo domain.RoomRepository, publisher domain.EventPublisher, log *logger.Logger) *SavedRoomsUsecase {
	return &SavedRoomsUsecase{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// SetTimeout bounds every ToggleSaved call. Zero disables the bound.
func (uc *SavedRoomsUsecase) SetTimeout(d time.Duration) {
	uc.timeout = d
}

// SubscribeSavedRooms emits the current snapshot and a fresh one after every
// change the repository reports for uid.
func (uc *SavedRoomsUsecase) SubscribeSavedRooms(ctx context.Context, uid string) (<-chan domain.SavedRoomsUpdate, error) {
	if uid == "" {
		return nil, domain.ErrInvalidUserID
	}
	uc.logger.Info("SavedRoomsUsecase.SubscribeSavedRooms: subscribing", "user_id", uid)

	// Watch before the first read so no change between the two is lost.
	changes, err := uc.repo.WatchSaved(ctx, uid)
	if err != nil {
		uc.logger.Error("SavedRoomsUsecase.SubscribeSavedRooms: watch failed", "user_id", uid, "error", err.Error())
		return nil, err
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
		load := func() bool {
			rooms, err := uc.repo.FindSavedByUser(ctx, uid)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				uc.logger.Error("SavedRoomsUsecase.SubscribeSavedRooms: query failed", "user_id", uid, "error", err.Error())
				send(domain.SavedRoomsUpdate{Err: err})
				return false
			}
			return send(domain.SavedRoomsUpdate{Rooms: rooms})
		}

		if !load() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				uc.logger.Debug("SavedRoomsUsecase.SubscribeSavedRooms: unsubscribed", "user_id", uid)
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if !load() {
					return
				}
			}
		}
	}()

	return out, nil
}

func (uc *SavedRoomsUsecase) ToggleSaved(ctx context.Context, roomID, uid string) (*domain.ToggleResult, error) {
	ctx, span := tracer.Start(ctx, "SavedRoomsUsecase.ToggleSaved", oteltrace.WithAttributes(
		attribute.String("room_id", roomID),
		attribute.String("user_id", uid),
	))
	defer span.End()

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	if uid == "" {
		return nil, domain.ErrInvalidUserID
	}
	if roomID == "" {
		return nil, domain.ErrRoomNotFound
	}

	uc.logger.Info("SavedRoomsUsecase.ToggleSaved: toggling", "room_id", roomID, "user_id", uid)
	res, err := uc.repo.ToggleSaved(ctx, roomID, uid)
	if err != nil {
		uc.logger.Error("SavedRoomsUsecase.ToggleSaved: failed", "room_id", roomID, "user_id", uid, "error", err.Error())
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("saved", res.Saved))

	if uc.publisher != nil {
		_, natsSpan := tracer.Start(ctx, "NATS.Publish."+domain.SubjectSavedToggled)
		event := domain.SavedToggledEvent{RoomID: roomID, UserID: uid, Saved: res.Saved, ToggledAt: time.Now().UTC()}
		if err := uc.publisher.Publish(ctx, domain.SubjectSavedToggled, event); err != nil {
			uc.logger.Warn("SavedRoomsUsecase.ToggleSaved: publish failed", "room_id", roomID, "error", err.Error())
		}
		natsSpan.End()
	}

	uc.logger.Info("SavedRoomsUsecase.ToggleSaved: done", "room_id", roomID, "user_id", uid, "saved", res.Saved)
	return res, nil
}
