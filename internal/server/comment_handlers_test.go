package server

import (
	"net/http"
	"testing"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	env := setupServer(t, nil)
	alice, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	post := env.createPost(t, bobToken, "discuss")
	path := "/api/posts/comment/" + post.ID

	resp, raw := env.do(t, http.MethodPost, path, aliceToken, fiber.Map{"text": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text is required", decode[models.ValidationResponse](t, raw).Errors[0].Msg)

	resp, raw = env.do(t, http.MethodPost, "/api/posts/comment/"+models.NewID(), aliceToken, fiber.Map{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found", decode[models.MessageResponse](t, raw).Msg)

	resp, _ = env.do(t, http.MethodPost, path, bobToken, fiber.Map{"text": "first"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = env.do(t, http.MethodPost, path, aliceToken, fiber.Map{"text": "second"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	comments := decode[[]models.Comment](t, raw)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, alice.ID, comments[0].UserID)
	assert.Equal(t, alice.Name, comments[0].Name)
	assert.Equal(t, alice.Avatar, comments[0].Avatar)
	assert.True(t, models.IsValidID(comments[0].ID))
	assert.Equal(t, "first", comments[1].Text)

	resp, raw = env.do(t, http.MethodPost, path, aliceToken, fiber.Map{"text": "<b>Tom</b> & Jerry's"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tom & Jerry's", decode[[]models.Comment](t, raw)[0].Text)
}

func TestDeleteComment(t *testing.T) {
	env := setupServer(t, nil)
	_, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	post := env.createPost(t, bobToken, "discuss")

	_, raw := env.do(t, http.MethodPost, "/api/posts/comment/"+post.ID, aliceToken, fiber.Map{"text": "alice says"})
	aliceComment := decode[[]models.Comment](t, raw)[0]
	_, raw = env.do(t, http.MethodPost, "/api/posts/comment/"+post.ID, bobToken, fiber.Map{"text": "bob says"})
	bobComment := decode[[]models.Comment](t, raw)[0]

	base := "/api/posts/comment/" + post.ID + "/"

	resp, raw := env.do(t, http.MethodDelete, base+models.NewID(), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Comment does not exist", decode[models.MessageResponse](t, raw).Msg)

	resp, raw = env.do(t, http.MethodDelete, base+aliceComment.ID, bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "post author cannot remove another user's comment")
	assert.Equal(t, "User not authorized", decode[models.MessageResponse](t, raw).Msg)

	resp, raw = env.do(t, http.MethodDelete, base+aliceComment.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	remaining := decode[[]models.Comment](t, raw)
	require.Len(t, remaining, 1)
	assert.Equal(t, bobComment.ID, remaining[0].ID)

	resp, raw = env.do(t, http.MethodDelete, "/api/posts/comment/"+models.NewID()+"/"+bobComment.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found", decode[models.MessageResponse](t, raw).Msg)
}
