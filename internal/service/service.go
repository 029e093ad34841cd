// Package service holds the post and comment business rules between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
)

// EventPublisher receives feed events after successful writes.
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, eventType, postID string, payload any) error
}

// postLookup is the repository read shared by both services.
func postLookup(ctx context.Context, posts repository.PostRepository, id string) (*models.Post, error) {
	post, err := posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Post not found")
	}
	return post, nil
}

// author loads the caller's user record for the name and avatar snapshot.
func author(ctx context.Context, users repository.UserRepository, userID string) (*models.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewUnauthorizedError("User not found")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// storeError maps a repository failure to an AppError.
func storeError(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(notFoundMsg)
	}
	return models.NewInternalError(err)
}

func publish(ctx context.Context, p EventPublisher, eventType, postID string, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishPostEvent(ctx, eventType, postID, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish feed event",
			"event_type", eventType, "post_id", postID, "error", err)
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// stamp reads now at millisecond precision, the finest resolution every store
// keeps, so a created record reads back with the same date.
func stamp(now func() time.Time) time.Time {
	return now().Truncate(time.Millisecond)
}
