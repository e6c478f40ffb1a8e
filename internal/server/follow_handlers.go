package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// FollowAuthor handles POST /api/profiles/:username/follow. Following
// yourself or someone you already follow changes nothing; either way the
// client is sent back to the profile page.
func (s *Server) FollowAuthor(c *fiber.Ctx) error {
	userID := currentUserID(c)
	username := c.Params("username")

	if err := s.followService.Follow(c.Context(), userID, username); err != nil {
		return respondAppError(c, err)
	}

	return seeOther(c, fmt.Sprintf("/api/profiles/%s/posts", username), fiber.Map{
		"following": true,
	})
}

// UnfollowAuthor handles DELETE /api/profiles/:username/follow. Removing a
// subscription that never existed still lands on the profile page; the end
// state is identical.
func (s *Server) UnfollowAuthor(c *fiber.Ctx) error {
	userID := currentUserID(c)
	username := c.Params("username")

	if err := s.followService.Unfollow(c.Context(), userID, username); err != nil {
		return respondAppError(c, err)
	}

	return seeOther(c, fmt.Sprintf("/api/profiles/%s/posts", username), fiber.Map{
		"following": false,
	})
}

// GetFeed handles GET /api/feed — a page of posts by the authors the
// caller follows, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePage(c)

	result, err := s.followService.Feed(c.Context(), userID, page)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(result)
}
