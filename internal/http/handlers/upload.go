package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

// formFileBytes pulls one multipart file out of the request. Size limits are
// enforced upstream by the server body limit.
func formFileBytes(c *fiber.Ctx, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, domain.InvalidInput(field + " file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.InvalidInput("could not read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.InvalidInput("could not read uploaded file")
	}
	return data, nil
}
