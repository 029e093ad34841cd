package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	author := models.NewID()
	post := newPost(author, "first post", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, author, got.UserID)
	assert.Equal(t, "first post", got.Text)
	assert.Equal(t, post.Name, got.Name)
	assert.NotNil(t, got.Likes)
	assert.NotNil(t, got.Comments)
	assert.Empty(t, got.Likes)
	assert.WithinDuration(t, post.Date, got.Date, time.Millisecond)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))

	_, err := repo.GetByID(context.Background(), models.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_ListOrdersByDateDescending(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	author := models.NewID()

	oldest := newPost(author, "oldest", base)
	middleA := newPost(author, "middle a", base.Add(time.Hour))
	middleB := newPost(author, "middle b", base.Add(time.Hour))
	newest := newPost(author, "newest", base.Add(2*time.Hour))

	for _, p := range []*models.Post{middleA, oldest, newest, middleB} {
		require.NoError(t, repo.Create(ctx, p))
	}

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 4)

	assert.Equal(t, newest.ID, posts[0].ID)
	assert.Equal(t, oldest.ID, posts[3].ID)

	// equal dates fall back to id, newest id first
	tieFirst, tieSecond := middleA, middleB
	if tieSecond.ID > tieFirst.ID {
		tieFirst, tieSecond = tieSecond, tieFirst
	}
	assert.Equal(t, tieFirst.ID, posts[1].ID)
	assert.Equal(t, tieSecond.ID, posts[2].ID)

	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].Date.After(posts[i-1].Date), "posts must be sorted newest first")
	}
}

func TestPostRepository_ListEmpty(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_SaveLikesAndComments(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost(models.NewID(), "likeable", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))

	liker := models.NewID()
	require.True(t, post.AddLike(liker))
	require.NoError(t, repo.SaveLikes(ctx, post))

	comment := models.Comment{
		ID:     models.NewID(),
		UserID: liker,
		Text:   "nice",
		Name:   "Liker",
		Date:   time.Now().UTC(),
	}
	post.AddComment(comment)
	require.NoError(t, repo.SaveComments(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)
	assert.Equal(t, liker, got.Likes[0].UserID)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, comment.ID, got.Comments[0].ID)
	assert.Equal(t, "nice", got.Comments[0].Text)
	assert.Equal(t, "likeable", got.Text, "saving arrays must not touch other columns")

	require.True(t, got.RemoveLike(liker))
	require.NoError(t, repo.SaveLikes(ctx, got))

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Len(t, got.Comments, 1)
}

func TestPostRepository_SaveLikes_MissingPost(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))

	post := newPost(models.NewID(), "ghost", time.Now().UTC())
	post.AddLike(models.NewID())
	assert.ErrorIs(t, repo.SaveLikes(context.Background(), post), ErrNotFound)
}

func TestPostRepository_Delete(t *testing.T) {
	repo := NewPostRepository(setupSQLiteDB(t))
	ctx := context.Background()

	post := newPost(models.NewID(), "short lived", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err := repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), ErrNotFound)
}

func TestPostRepository_Postgres_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	id := models.NewID()
	userID := models.NewID()

	tests := []struct {
		name         string
		mockBehavior func()
		expectedErr  error
		expectedText string
	}{
		{
			name: "Success",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1 ORDER BY "posts"."id" LIMIT $2`)).
					WithArgs(id, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "name", "avatar", "likes", "comments", "date"}).
						AddRow(id, userID, "hello", "Ada", "", `[{"_id":"`+models.NewID()+`","user":"`+userID+`"}]`, `null`, time.Now()))
			},
			expectedText: "hello",
		},
		{
			name: "Not Found",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1 ORDER BY "posts"."id" LIMIT $2`)).
					WithArgs(id, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			post, err := repo.GetByID(ctx, id)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedText, post.Text)
				require.Len(t, post.Likes, 1)
				assert.Equal(t, userID, post.Likes[0].UserID)
				assert.NotNil(t, post.Comments)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_Postgres_SaveLikesUpdatesOnlyLikes(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := newPost(models.NewID(), "hello", time.Now())
	post.AddLike(models.NewID())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET "likes"=\$1 WHERE .*"id" = \$2`).
		WithArgs(sqlmock.AnyArg(), post.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveLikes(context.Background(), post))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Postgres_DeleteError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	id := models.NewID()
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
		WithArgs(id).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
