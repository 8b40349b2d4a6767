package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type Store interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateAddress(ctx context.Context, id string, addr domain.ShippingAddress) (*domain.User, error)
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection("users")}
}

func (m *mongoStore) Create(ctx context.Context, u *domain.User) error {
	existing := m.collection.FindOne(ctx, bson.M{"email": u.Email})
	if existing.Err() == nil {
		return ErrEmailTaken
	}
	if !errors.Is(existing.Err(), mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check email: %w", existing.Err())
	}

	u.CreatedAt = time.Now()
	res, err := m.collection.InsertOne(ctx, bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"password":   u.Password,
		"address":    u.Address,
		"created_at": u.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (m *mongoStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *mongoStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

// UpdateAddress saves the address and returns the stored document, so the
// caller reports what was actually persisted rather than assuming the write
// took effect.
func (m *mongoStore) UpdateAddress(ctx context.Context, id string, addr domain.ShippingAddress) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	result, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"address": addr}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}

	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *mongoStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc struct {
		ID        primitive.ObjectID     `bson:"_id"`
		Name      string                 `bson:"name"`
		Email     string                 `bson:"email"`
		Password  string                 `bson:"password"`
		Address   domain.ShippingAddress `bson:"address"`
		CreatedAt time.Time              `bson:"created_at"`
	}

	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &domain.User{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Email:     doc.Email,
		Password:  doc.Password,
		Address:   doc.Address,
		CreatedAt: doc.CreatedAt,
	}, nil
}
