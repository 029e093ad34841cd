package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. Likes and
// comments live inside the post; SaveLikes and SaveComments write back only the
// array that changed.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	SaveLikes(ctx context.Context, post *models.Post) error
	SaveComments(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository on a relational store through GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) backend() string {
	return r.db.Dialector.Name()
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "Create")
	defer func() { finish(err) }()

	post.Normalize()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "GetByID")
	defer func() { finish(err) }()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "List")
	defer func() { finish(err) }()

	posts := make([]*models.Post, 0)
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *postRepository) SaveLikes(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "SaveLikes")
	defer func() { finish(err) }()

	post.Normalize()
	return r.updateColumn(ctx, post, "likes")
}

func (r *postRepository) SaveComments(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "SaveComments")
	defer func() { finish(err) }()

	post.Normalize()
	return r.updateColumn(ctx, post, "comments")
}

// updateColumn writes a single serialized column. Select forces the write
// even when the slice is empty.
func (r *postRepository) updateColumn(ctx context.Context, post *models.Post, column string) error {
	result := r.db.WithContext(ctx).Model(post).Select(column).Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := track(ctx, r.backend(), "posts", "Delete")
	defer func() { finish(err) }()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
