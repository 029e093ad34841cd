package repository

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"
)

// CachedPostRepository serves reads through the Redis cache and invalidates
// the touched keys after every successful write. With no Redis client it is a
// plain pass-through.
type CachedPostRepository struct {
	inner PostRepository
}

// NewCachedPostRepository wraps inner with read-through caching.
func NewCachedPostRepository(inner PostRepository) *CachedPostRepository {
	return &CachedPostRepository{inner: inner}
}

func (r *CachedPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.inner.Create(ctx, post); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostsListKey)
	return nil
}

func (r *CachedPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		p, err := r.inner.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

func (r *CachedPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
		var err error
		posts, err = r.inner.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *CachedPostRepository) SaveLikes(ctx context.Context, post *models.Post) error {
	if err := r.inner.SaveLikes(ctx, post); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *CachedPostRepository) SaveComments(ctx context.Context, post *models.Post) error {
	if err := r.inner.SaveComments(ctx, post); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *CachedPostRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// CachedUserRepository caches author lookups; users change rarely and the
// snapshot only needs name and avatar.
type CachedUserRepository struct {
	inner UserRepository
}

// NewCachedUserRepository wraps inner with read-through caching.
func NewCachedUserRepository(inner UserRepository) *CachedUserRepository {
	return &CachedUserRepository{inner: inner}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := r.inner.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *CachedUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.inner.Create(ctx, user); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.UserKey(user.ID))
	return nil
}
