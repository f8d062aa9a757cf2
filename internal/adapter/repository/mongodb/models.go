package mongodb

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	roomsCollection = "rooms"
	usersCollection = "users"
	savedField      = "user_ids_saved"
)

type roomDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Title        string               `bson:"title"`
	Description  string               `bson:"description"`
	Price        float64              `bson:"price"`
	Address      string               `bson:"address"`
	DistrictName string               `bson:"district_name"`
	Phone        string               `bson:"phone"`
	Images       []string             `bson:"images,omitempty"`
	UserIDsSaved map[string]time.Time `bson:"user_ids_saved,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
}

// userDocument holds only the fields this service reads or writes.
type userDocument struct {
	FullName    string    `bson:"full_name"`
	Email       string    `bson:"email"`
	Address     string    `bson:"address"`
	PhoneNumber string    `bson:"phone_number"`
	AvatarURL   string    `bson:"avatar_url,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toDomainRoom(d *roomDocument) *domain.RoomEntity {
	if d == nil {
		return nil
	}
	saved := make(map[string]time.Time, len(d.UserIDsSaved))
	for uid, at := range d.UserIDsSaved {
		saved[uid] = at.UTC()
	}
	return &domain.RoomEntity{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Price:        d.Price,
		Address:      d.Address,
		DistrictName: d.DistrictName,
		Phone:        d.Phone,
		Images:       d.Images,
		UserIDsSaved: saved,
		CreatedAt:    d.CreatedAt,
	}
}

func toDomainRooms(docs []*roomDocument) []*domain.RoomEntity {
	rooms := make([]*domain.RoomEntity, 0, len(docs))
	for _, doc := range docs {
		rooms = append(rooms, toDomainRoom(doc))
	}
	return rooms
}

func toRoomDocument(r *domain.RoomEntity) (*roomDocument, error) {
	id := primitive.NilObjectID
	if r.ID != "" {
		var err error
		if id, err = primitive.ObjectIDFromHex(r.ID); err != nil {
			return nil, domain.ErrRoomNotFound
		}
	}
	return &roomDocument{
		ID:           id,
		Title:        r.Title,
		Description:  r.Description,
		Price:        r.Price,
		Address:      r.Address,
		DistrictName: r.DistrictName,
		Phone:        r.Phone,
		Images:       r.Images,
		UserIDsSaved: r.UserIDsSaved,
		CreatedAt:    r.CreatedAt,
	}, nil
}

// savedKey is the dotted path of uid's save timestamp. uid becomes part of a
// field path, so dots, dollars and empty ids are rejected.
func savedKey(uid string) (string, error) {
	if uid == "" || strings.ContainsAny(uid, ".$\x00") {
		return "", domain.ErrInvalidUserID
	}
	return savedField + "." + uid, nil
}

// userFilter matches users stored under an ObjectID or a plain string id.
func userFilter(uid string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(uid); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": uid}
}
