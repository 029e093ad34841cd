package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type userDocument struct {
	ID     bson.ObjectID `bson:"_id"`
	Name   string        `bson:"name"`
	Email  string        `bson:"email"`
	Avatar string        `bson:"avatar"`
	Date   time.Time     `bson:"date"`
}

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository reads users from the shared users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (_ *models.User, err error) {
	ctx, finish := track(ctx, mongoBackend, usersCollection, "GetByID")
	defer func() { finish(err) }()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &models.User{
		ID:     doc.ID.Hex(),
		Name:   doc.Name,
		Email:  doc.Email,
		Avatar: doc.Avatar,
		Date:   doc.Date,
	}, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, finish := track(ctx, mongoBackend, usersCollection, "Create")
	defer func() { finish(err) }()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	oid, err := bson.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	_, err = r.users.InsertOne(ctx, userDocument{
		ID:     oid,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Date:   user.Date,
	})
	return err
}
