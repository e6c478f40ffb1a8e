package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images. The multipart "image" file is
// stored in object storage and its public URL returned; attach that URL to
// a post via image_url.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	if s.storage == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Image uploads are not configured"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An 'image' file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	url, err := s.storage.UploadImage(c.Context(), fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image_url": url,
	})
}
