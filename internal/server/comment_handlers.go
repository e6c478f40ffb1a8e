package server

import (
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.GetPost(c.Context(), id); err != nil {
		return respondAppError(c, err)
	}

	comments, err := s.commentService.ListForPost(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:id/comments. On success the client
// is redirected back to the post detail, where the comment now appears.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input validation.CommentInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Check(input); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	comment, err := s.commentService.AddComment(c.Context(), service.AddCommentInput{
		UserID: userID,
		PostID: id,
		Text:   input.Text,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return seeOther(c, fmt.Sprintf("/api/posts/%d", id), comment)
}
