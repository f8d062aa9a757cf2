package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
		logger:     log,
	}
}

// UpdateProfile writes the editable profile fields. The avatar URL is only
// replaced when profile carries a new one.
func (r *UserRepository) UpdateProfile(ctx context.Context, uid string, profile domain.UserProfile) error {
	if uid == "" {
		return domain.ErrInvalidUserID
	}

	set := bson.M{
		"full_name":    profile.FullName,
		"address":      profile.Address,
		"phone_number": profile.PhoneNumber,
		"updated_at":   profile.UpdatedAt,
	}
	if profile.AvatarURL != "" {
		set["avatar_url"] = profile.AvatarURL
	}

	res, err := r.collection.UpdateOne(ctx, userFilter(uid), bson.M{"$set": set})
	if err != nil {
		r.logger.Error("UserRepository.UpdateProfile: UpdateOne failed", "user_id", uid, "error", err.Error())
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		r.logger.Info("UserRepository.UpdateProfile: user not found", "user_id", uid)
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetEmailByID(ctx context.Context, uid string) (string, error) {
	var doc userDocument
	opts := options.FindOne().SetProjection(bson.M{"email": 1})
	err := r.collection.FindOne(ctx, userFilter(uid), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Info("UserRepository.GetEmailByID: user not found", "user_id", uid)
			return "", domain.ErrUserNotFound
		}
		r.logger.Error("UserRepository.GetEmailByID: FindOne failed", "user_id", uid, "error", err.Error())
		return "", mapError(err)
	}
	return doc.Email, nil
}

// GetProfile loads the stored profile, used to seed the profile form.
func (r *UserRepository) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, userFilter(uid)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, mapError(err)
	}
	return &domain.UserProfile{
		ID:          uid,
		FullName:    doc.FullName,
		Email:       doc.Email,
		Address:     doc.Address,
		PhoneNumber: doc.PhoneNumber,
		AvatarURL:   doc.AvatarURL,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
