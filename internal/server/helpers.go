package server

import (
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads the ?page query parameter. Anything unparseable or below
// one falls back to the first page; out-of-range values are clamped later
// against the collection size.
func parsePage(c *fiber.Ctx) int {
	return pagination.ParseNumber(c.Query("page"))
}

// respondAppError maps an AppError code to the right HTTP status.
func respondAppError(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*models.AppError)
	if !ok {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	switch appErr.Code {
	case "NOT_FOUND":
		return models.RespondWithError(c, fiber.StatusNotFound, appErr)
	case "VALIDATION_ERROR":
		return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
	case "UNAUTHORIZED":
		return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	}
}

// currentUserID returns the authenticated user's id. Valid only behind
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// seeOther writes the post-write redirect: a 303 pointing at the resource
// the client should fetch next, with the affected entity as the body.
func seeOther(c *fiber.Ctx, location string, body any) error {
	c.Location(location)
	return c.Status(fiber.StatusSeeOther).JSON(body)
}
