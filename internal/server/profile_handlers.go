package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetProfilePosts handles GET /api/profiles/:username/posts — the author's
// profile: the author, their post count, a short page of their posts, and
// whether the caller follows them. The flag is always false for anonymous
// callers and for the author's own profile.
func (s *Server) GetProfilePosts(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePage(c)

	author, result, err := s.postService.ProfilePosts(c.Context(), username, page)
	if err != nil {
		return respondAppError(c, err)
	}

	following := false
	if viewerID, ok := s.optionalUserID(c); ok && viewerID != author.ID {
		following, err = s.followService.IsFollowing(c.Context(), viewerID, author.ID)
		if err != nil {
			return respondAppError(c, err)
		}
	}

	followers, err := s.followRepo.CountFollowers(c.Context(), author.ID)
	if err != nil {
		return respondAppError(c, err)
	}
	follows, err := s.followRepo.CountFollowing(c.Context(), author.ID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"author":    author,
		"following": following,
		"followers": followers,
		"follows":   follows,
		"posts":     result,
	})
}
