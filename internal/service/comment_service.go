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

type CommentService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher EventPublisher
	now       func() time.Time
}

type AddCommentInput struct {
	UserID string `json:"-"`
	PostID string `json:"-"`
	Text   string `json:"text" validate:"required,max=5000"`
}

type DeleteCommentInput struct {
	UserID    string
	PostID    string
	CommentID string
}

func NewCommentService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *CommentService {
	return &CommentService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		publisher: publisher,
		now:       utcNow,
	}
}

// AddComment prepends a comment by the caller and returns the post's comments.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	in.Text = validation.SanitizeText(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := author(ctx, s.userRepo, in.UserID)
	if err != nil {
		return nil, err
	}
	post, err := postLookup(ctx, s.postRepo, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:     models.NewID(),
		UserID: user.ID,
		Text:   in.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
		Date:   stamp(s.now),
	}
	post.AddComment(comment)

	if err := s.postRepo.SaveComments(ctx, post); err != nil {
		return nil, storeError(err, "Post not found")
	}

	observability.CommentsTotal.WithLabelValues("add").Inc()
	publish(ctx, s.publisher, notifications.EventCommentCreated, post.ID, comment)
	return post.Comments, nil
}

// DeleteComment removes one of the caller's comments and returns what is left.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) ([]models.Comment, error) {
	post, err := postLookup(ctx, s.postRepo, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(in.CommentID)
	if comment == nil {
		return nil, models.NewNotFoundError("Comment does not exist")
	}
	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("User not authorized")
	}

	post.RemoveComment(in.CommentID)
	if err := s.postRepo.SaveComments(ctx, post); err != nil {
		return nil, storeError(err, "Post not found")
	}

	observability.CommentsTotal.WithLabelValues("delete").Inc()
	publish(ctx, s.publisher, notifications.EventCommentDeleted, post.ID, map[string]string{
		"comment_id": in.CommentID,
	})
	return post.Comments, nil
}
