package server

import (
	"encoding/json"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/service"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts — the global index, newest first.
//
// The rendered page is cached whole for a short TTL, keyed by the requested
// page number. Within the TTL readers may see a page that predates recent
// writes; nothing invalidates it, expiry does.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	key := cache.IndexPageKey(page)

	if body, ok := s.cache.GetBytes(c.Context(), key); ok {
		observability.IndexCacheHits.WithLabelValues("hit").Inc()
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
	observability.IndexCacheHits.WithLabelValues("miss").Inc()

	result, err := s.postService.Index(c.Context(), page)
	if err != nil {
		return respondAppError(c, err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.cache.SetBytes(c.Context(), key, body, cache.IndexPageTTL)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// GetPost handles GET /api/posts/:id — the post detail page: the post, its
// comments oldest first, and an empty comment form scaffold.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	comments, err := s.commentService.ListForPost(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":         post,
		"comments":     comments,
		"comment_form": validation.CommentInput{},
	})
}

// CreatePost handles POST /api/posts. On success it redirects to the
// author's profile listing, where the new post appears first.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var input validation.PostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Check(input); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   userID,
		Text:     input.Text,
		GroupID:  input.GroupID,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return seeOther(c, fmt.Sprintf("/api/profiles/%s/posts", post.User.Username), post)
}

// UpdatePost handles PUT /api/posts/:id. Only the author may edit; anyone
// else is redirected to the unchanged post detail.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input validation.PostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Check(input); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   id,
		Text:     input.Text,
		GroupID:  input.GroupID,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		if err == models.ErrNotAuthor {
			// A non-author edit is bounced to the detail page, post untouched.
			return seeOther(c, fmt.Sprintf("/api/posts/%d", id), fiber.Map{
				"redirected": true,
			})
		}
		return respondAppError(c, err)
	}

	return seeOther(c, fmt.Sprintf("/api/posts/%d", post.ID), post)
}
