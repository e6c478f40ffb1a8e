package server

import (
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetGroups handles GET /api/groups — the group catalog, alphabetical.
func (s *Server) GetGroups(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetGroup handles GET /api/groups/:slug
func (s *Server) GetGroup(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if err := validation.ValidateGroupSlug(slug); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	group, err := s.groupRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(group)
}

// GetGroupPosts handles GET /api/groups/:slug/posts — the group plus a page
// of its posts, newest first. An unknown slug is a 404, not an empty page.
func (s *Server) GetGroupPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page := parsePage(c)

	group, result, err := s.postService.GroupPosts(c.Context(), slug, page)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"posts": result,
	})
}
