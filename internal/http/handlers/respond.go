package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

// fail maps domain error kinds to HTTP statuses in one place and keeps the
// response envelope uniform.
func fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrDependency):
		status = fiber.StatusBadGateway
	}

	if status >= 500 {
		applog.Error(c, action, err, nil)
		// do not leak internals
		return c.Status(status).JSON(fiber.Map{"status": "error", "message": "something went wrong, please try again"})
	}
	if status == fiber.StatusForbidden || status == fiber.StatusUnauthorized {
		applog.Security(c, action, map[string]any{"error": err.Error()})
	}
	envelope := "fail"
	return c.Status(status).JSON(fiber.Map{"status": envelope, "message": err.Error()})
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

// paramID screens a path id parameter before it reaches a query.
func paramID(c *fiber.Ctx, name string) (string, error) {
	id, okID := validate.ID(c.Params(name))
	if !okID {
		return "", domain.InvalidInput("invalid " + name + " parameter")
	}
	return id, nil
}
