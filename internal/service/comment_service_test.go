package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopPostRepo(), usersWith(alice), nil)

	_, err := svc.AddComment(context.Background(), AddCommentInput{UserID: alice.ID, PostID: models.NewID()})
	assertAppError(t, err, models.CodeValidation, "Text is required")

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "text", appErr.Fields[0].Param)
	assert.Equal(t, "body", appErr.Fields[0].Location)
}

func TestCommentService_AddComment(t *testing.T) {
	t.Parallel()

	existing := models.Comment{ID: models.NewID(), UserID: bob.ID, Text: "first"}
	post := models.Post{ID: models.NewID(), UserID: bob.ID, Comments: []models.Comment{existing}}

	t.Run("prepends with author snapshot", func(t *testing.T) {
		t.Parallel()
		var saved *models.Post
		repo := postRepoWith(post)
		repo.saveCommentsFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		pub := &publisherStub{}
		fixed := time.Date(2024, 5, 1, 8, 30, 0, 987654321, time.UTC)

		svc := NewCommentService(repo, usersWith(alice, bob), pub)
		svc.now = func() time.Time { return fixed }

		comments, err := svc.AddComment(context.Background(), AddCommentInput{
			UserID: alice.ID,
			PostID: post.ID,
			Text:   "nice post",
		})
		require.NoError(t, err)
		require.Len(t, comments, 2)

		c := comments[0]
		assert.True(t, models.IsValidID(c.ID))
		assert.Equal(t, alice.ID, c.UserID)
		assert.Equal(t, "nice post", c.Text)
		assert.Equal(t, "Alice", c.Name)
		assert.Equal(t, alice.Avatar, c.Avatar)
		assert.Equal(t, fixed.Truncate(time.Millisecond), c.Date)
		assert.Equal(t, existing.ID, comments[1].ID)

		require.NotNil(t, saved)
		assert.Equal(t, comments, saved.Comments)
		assert.Equal(t, []string{notifications.EventCommentCreated}, pub.types())
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		_, err := NewCommentService(postRepoWith(post), usersWith(alice), nil).
			AddComment(context.Background(), AddCommentInput{UserID: alice.ID, PostID: models.NewID(), Text: "hi"})
		assertAppError(t, err, models.CodeNotFound, "Post not found")
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := NewCommentService(postRepoWith(post), usersWith(), nil).
			AddComment(context.Background(), AddCommentInput{UserID: alice.ID, PostID: post.ID, Text: "hi"})
		assertAppError(t, err, models.CodeUnauthorized, "User not found")
	})

	t.Run("user store failure", func(t *testing.T) {
		t.Parallel()
		users := &userRepoStub{getByIDFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, errors.New("connection refused")
		}}
		_, err := NewCommentService(postRepoWith(post), users, nil).
			AddComment(context.Background(), AddCommentInput{UserID: alice.ID, PostID: post.ID, Text: "hi"})
		assertAppError(t, err, models.CodeInternal, models.ServerErrorMessage)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()

	mine := models.Comment{ID: models.NewID(), UserID: alice.ID, Text: "mine"}
	theirs := models.Comment{ID: models.NewID(), UserID: bob.ID, Text: "theirs"}
	post := models.Post{ID: models.NewID(), UserID: bob.ID, Comments: []models.Comment{mine, theirs}}

	t.Run("comment does not exist", func(t *testing.T) {
		t.Parallel()
		_, err := NewCommentService(postRepoWith(post), usersWith(alice), nil).
			DeleteComment(context.Background(), DeleteCommentInput{UserID: alice.ID, PostID: post.ID, CommentID: models.NewID()})
		assertAppError(t, err, models.CodeNotFound, "Comment does not exist")
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		t.Parallel()
		repo := postRepoWith(post)
		repo.saveCommentsFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("save must not be called")
			return nil
		}
		_, err := NewCommentService(repo, usersWith(alice), nil).
			DeleteComment(context.Background(), DeleteCommentInput{UserID: alice.ID, PostID: post.ID, CommentID: theirs.ID})
		assertAppError(t, err, models.CodeUnauthorized, "User not authorized")
	})

	t.Run("post author cannot delete others' comments", func(t *testing.T) {
		t.Parallel()
		_, err := NewCommentService(postRepoWith(post), usersWith(bob), nil).
			DeleteComment(context.Background(), DeleteCommentInput{UserID: bob.ID, PostID: post.ID, CommentID: mine.ID})
		assertAppError(t, err, models.CodeUnauthorized, "User not authorized")
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		_, err := NewCommentService(postRepoWith(post), usersWith(alice), nil).
			DeleteComment(context.Background(), DeleteCommentInput{UserID: alice.ID, PostID: models.NewID(), CommentID: mine.ID})
		assertAppError(t, err, models.CodeNotFound, "Post not found")
	})

	t.Run("author deletes", func(t *testing.T) {
		t.Parallel()
		pub := &publisherStub{}
		comments, err := NewCommentService(postRepoWith(post), usersWith(alice), pub).
			DeleteComment(context.Background(), DeleteCommentInput{UserID: alice.ID, PostID: post.ID, CommentID: mine.ID})
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, theirs.ID, comments[0].ID)
		assert.Equal(t, []string{notifications.EventCommentDeleted}, pub.types())
	})
}
