package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	postsCollection = "posts"
	usersCollection = "users"
	mongoBackend    = "mongodb"
)

type postDocument struct {
	ID       bson.ObjectID     `bson:"_id"`
	User     bson.ObjectID     `bson:"user"`
	Text     string            `bson:"text"`
	Name     string            `bson:"name"`
	Avatar   string            `bson:"avatar"`
	Likes    []likeDocument    `bson:"likes"`
	Comments []commentDocument `bson:"comments"`
	Date     time.Time         `bson:"date"`
}

type likeDocument struct {
	ID   bson.ObjectID `bson:"_id"`
	User bson.ObjectID `bson:"user"`
}

type commentDocument struct {
	ID     bson.ObjectID `bson:"_id"`
	User   bson.ObjectID `bson:"user"`
	Text   string        `bson:"text"`
	Name   string        `bson:"name"`
	Avatar string        `bson:"avatar"`
	Date   time.Time     `bson:"date"`
}

type mongoPostRepository struct {
	posts *mongo.Collection
}

// NewMongoPostRepository stores posts as documents with likes and comments embedded.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{posts: db.Collection(postsCollection)}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "Create")
	defer func() { finish(err) }()

	post.Normalize()
	doc, err := toPostDocument(post)
	if err != nil {
		return err
	}
	_, err = r.posts.InsertOne(ctx, doc)
	return err
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "GetByID")
	defer func() { finish(err) }()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *mongoPostRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "List")
	defer func() { finish(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}
	return posts, nil
}

func (r *mongoPostRepository) SaveLikes(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "SaveLikes")
	defer func() { finish(err) }()

	likes, err := toLikeDocuments(post.Likes)
	if err != nil {
		return err
	}
	return r.set(ctx, post.ID, "likes", likes)
}

func (r *mongoPostRepository) SaveComments(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "SaveComments")
	defer func() { finish(err) }()

	comments, err := toCommentDocuments(post.Comments)
	if err != nil {
		return err
	}
	return r.set(ctx, post.ID, "comments", comments)
}

func (r *mongoPostRepository) set(ctx context.Context, id, field string, value any) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.posts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := track(ctx, mongoBackend, postsCollection, "Delete")
	defer func() { finish(err) }()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toPostDocument(p *models.Post) (*postDocument, error) {
	id, err := bson.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, fmt.Errorf("post id: %w", err)
	}
	user, err := bson.ObjectIDFromHex(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("post user: %w", err)
	}
	likes, err := toLikeDocuments(p.Likes)
	if err != nil {
		return nil, err
	}
	comments, err := toCommentDocuments(p.Comments)
	if err != nil {
		return nil, err
	}
	return &postDocument{
		ID:       id,
		User:     user,
		Text:     p.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    likes,
		Comments: comments,
		Date:     p.Date,
	}, nil
}

func toLikeDocuments(likes []models.Like) ([]likeDocument, error) {
	docs := make([]likeDocument, 0, len(likes))
	for _, l := range likes {
		id, err := bson.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("like id: %w", err)
		}
		user, err := bson.ObjectIDFromHex(l.UserID)
		if err != nil {
			return nil, fmt.Errorf("like user: %w", err)
		}
		docs = append(docs, likeDocument{ID: id, User: user})
	}
	return docs, nil
}

func toCommentDocuments(comments []models.Comment) ([]commentDocument, error) {
	docs := make([]commentDocument, 0, len(comments))
	for _, c := range comments {
		id, err := bson.ObjectIDFromHex(c.ID)
		if err != nil {
			return nil, fmt.Errorf("comment id: %w", err)
		}
		user, err := bson.ObjectIDFromHex(c.UserID)
		if err != nil {
			return nil, fmt.Errorf("comment user: %w", err)
		}
		docs = append(docs, commentDocument{
			ID:     id,
			User:   user,
			Text:   c.Text,
			Name:   c.Name,
			Avatar: c.Avatar,
			Date:   c.Date,
		})
	}
	return docs, nil
}

func (d *postDocument) toModel() *models.Post {
	p := &models.Post{
		ID:       d.ID.Hex(),
		UserID:   d.User.Hex(),
		Text:     d.Text,
		Name:     d.Name,
		Avatar:   d.Avatar,
		Likes:    make([]models.Like, 0, len(d.Likes)),
		Comments: make([]models.Comment, 0, len(d.Comments)),
		Date:     d.Date,
	}
	for _, l := range d.Likes {
		p.Likes = append(p.Likes, models.Like{ID: l.ID.Hex(), UserID: l.User.Hex()})
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, models.Comment{
			ID:     c.ID.Hex(),
			UserID: c.User.Hex(),
			Text:   c.Text,
			Name:   c.Name,
			Avatar: c.Avatar,
			Date:   c.Date,
		})
	}
	return p
}
