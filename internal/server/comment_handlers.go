package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/comment/:id
// @Summary Comment on post
// @Description Adds a comment by the caller and returns the post's comments, newest first.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body object{text=string} true "Comment text"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ValidationResponse
// @Failure 404 {object} models.MessageResponse
// @Router /posts/comment/{id} [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.AddCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = callerID(c)
	req.PostID = c.Params("id")

	comments, err := s.commentService.AddComment(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Delete comment
// @Description Only the comment's author may delete it.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 401 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comments, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    callerID(c),
		PostID:    c.Params("id"),
		CommentID: c.Params("comment_id"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}
