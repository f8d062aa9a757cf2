package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const notifyTimeout = 30 * time.Second

// ProfileUsecase is the UserStore backed by the user repository and the
// avatar storage.
type ProfileUsecase struct {
	repo      domain.UserRepository
	storage   domain.Storage
	publisher domain.EventPublisher
	mailer    domain.Mailer
	logger    *logger.Logger
	timeout   time.Duration

	notifications sync.WaitGroup
}

// NewProfileUsecase accepts a nil publisher or mailer; the matching step is
// then skipped.
func NewProfileUsecase(
	repo domain.UserRepository,
	storage domain.Storage,
	publisher domain.EventPublisher,
	mailer domain.Mailer,
	log *logger.Logger,
) *ProfileUsecase {
	return &ProfileUsecase{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		mailer:    mailer,
		logger:    log,
	}
}

// SetTimeout bounds every UpdateProfile call. Zero disables the bound.
func (uc *ProfileUsecase) SetTimeout(d time.Duration) {
	uc.timeout = d
}

func (uc *ProfileUsecase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	ctx, span := tracer.Start(ctx, "ProfileUsecase.UpdateProfile", oteltrace.WithAttributes(
		attribute.String("user_id", update.UID),
		attribute.Bool("with_avatar", update.Avatar != nil),
	))
	defer span.End()

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	if update.UID == "" {
		return domain.ErrInvalidUserID
	}
	uc.logger.Info("ProfileUsecase.UpdateProfile: updating profile", "user_id", update.UID)

	profile := domain.UserProfile{
		ID:          update.UID,
		FullName:    update.FullName,
		Address:     update.Address,
		PhoneNumber: update.PhoneNumber,
		UpdatedAt:   time.Now().UTC(),
	}

	if update.Avatar != nil {
		url, err := uc.uploadAvatar(ctx, update.Avatar)
		if err != nil {
			uc.logger.Error("ProfileUsecase.UpdateProfile: avatar upload failed", "user_id", update.UID, "error", err.Error())
			span.RecordError(err)
			return err
		}
		profile.AvatarURL = url
		span.SetAttributes(attribute.String("avatar_url", url))
	}

	if err := uc.repo.UpdateProfile(ctx, update.UID, profile); err != nil {
		uc.logger.Error("ProfileUsecase.UpdateProfile: update failed", "user_id", update.UID, "error", err.Error())
		span.RecordError(err)
		return err
	}

	if uc.publisher != nil {
		_, natsSpan := tracer.Start(ctx, "NATS.Publish."+domain.SubjectProfileUpdated)
		event := domain.ProfileUpdatedEvent{
			UserID:    update.UID,
			FullName:  profile.FullName,
			AvatarURL: profile.AvatarURL,
			UpdatedAt: profile.UpdatedAt,
		}
		if err := uc.publisher.Publish(ctx, domain.SubjectProfileUpdated, event); err != nil {
			uc.logger.Warn("ProfileUsecase.UpdateProfile: publish failed", "user_id", update.UID, "error", err.Error())
		}
		natsSpan.End()
	}

	if uc.mailer != nil {
		uc.notifications.Add(1)
		go uc.notify(update.UID, profile.FullName)
	}

	uc.logger.Info("ProfileUsecase.UpdateProfile: done", "user_id", update.UID)
	return nil
}

// Wait blocks until every pending notification email has been handled.
func (uc *ProfileUsecase) Wait() {
	uc.notifications.Wait()
}

func (uc *ProfileUsecase) uploadAvatar(ctx context.Context, avatar *domain.AvatarFile) (string, error) {
	if avatar.Path == "" || len(avatar.Content) == 0 {
		return "", domain.ErrInvalidAvatar
	}
	url, err := uc.storage.Upload(ctx, avatar.Path, avatar.Content)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return url, nil
}

func (uc *ProfileUsecase) notify(uid, fullName string) {
	defer uc.notifications.Done()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	email, err := uc.repo.GetEmailByID(ctx, uid)
	if err != nil {
		uc.logger.Warn("ProfileUsecase.notify: email lookup failed", "user_id", uid, "error", err.Error())
		return
	}
	if email == "" {
		return
	}
	if err := uc.mailer.SendProfileUpdatedEmail(email, fullName); err != nil {
		uc.logger.Warn("ProfileUsecase.notify: send failed", "user_id", uid, "error", err.Error())
		return
	}
	uc.logger.Info("ProfileUsecase.notify: email sent", "user_id", uid)
}
