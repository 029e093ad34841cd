package service

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher EventPublisher
	now       func() time.Time
}

type CreatePostInput struct {
	UserID string `json:"-"`
	Text   string `json:"text" validate:"required,max=5000"`
}

type DeletePostInput struct {
	UserID string
	PostID string
}

type ReactionInput struct {
	UserID string
	PostID string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		publisher: publisher,
		now:       utcNow,
	}
}

// CreatePost stores a new post authored by in.UserID with the author's name
// and avatar copied onto it.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Text = validation.SanitizeText(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := author(ctx, s.userRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:       models.NewID(),
		UserID:   user.ID,
		Text:     in.Text,
		Name:     user.Name,
		Avatar:   user.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     stamp(s.now),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.PostsCreated.Inc()
	publish(ctx, s.publisher, notifications.EventPostCreated, post.ID, post)
	return post, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return postLookup(ctx, s.postRepo, id)
}

// DeletePost removes a post. Only its author may do so.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := postLookup(ctx, s.postRepo, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("User not authorized")
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return storeError(err, "Post not found")
	}

	observability.PostsDeleted.Inc()
	publish(ctx, s.publisher, notifications.EventPostDeleted, post.ID, nil)
	return nil
}

// LikePost adds the caller's like and returns the post's likes, newest first.
func (s *PostService) LikePost(ctx context.Context, in ReactionInput) ([]models.Like, error) {
	post, err := postLookup(ctx, s.postRepo, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.AddLike(in.UserID) {
		return nil, models.NewBadRequestError("Post already liked")
	}
	return s.saveLikes(ctx, post, "like")
}

// UnlikePost removes the caller's like and returns the remaining likes.
func (s *PostService) UnlikePost(ctx context.Context, in ReactionInput) ([]models.Like, error) {
	post, err := postLookup(ctx, s.postRepo, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.RemoveLike(in.UserID) {
		return nil, models.NewBadRequestError("Post has not yet been liked")
	}
	return s.saveLikes(ctx, post, "unlike")
}

func (s *PostService) saveLikes(ctx context.Context, post *models.Post, action string) ([]models.Like, error) {
	if err := s.postRepo.SaveLikes(ctx, post); err != nil {
		return nil, storeError(err, "Post not found")
	}

	observability.ReactionsTotal.WithLabelValues(action).Inc()
	publish(ctx, s.publisher, notifications.EventPostReactionUpdated, post.ID, map[string]any{
		"action": action,
		"likes":  post.Likes,
	})
	return post.Likes, nil
}
