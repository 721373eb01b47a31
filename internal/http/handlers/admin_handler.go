package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// ListUsers supports the same filter/sort/page/fields syntax as product
// listings, e.g. ?role=storeOwner&sort=-createdAt&limit=20.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Admin.ListUsers(c.Queries())
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"results": len(users), "users": users})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	u, err := h.Admin.GetUser(c.Params("id"))
	if err != nil {
		return fail(c, "admin.users.get", err)
	}
	return ok(c, fiber.StatusOK, u)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return fail(c, "admin.users.update", domain.InvalidInput("malformed request body"))
	}
	u, err := h.Admin.UpdateUser(c.Params("id"), fields)
	if err != nil {
		return fail(c, "admin.users.update", err)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"user": u.ID})
	return ok(c, fiber.StatusOK, u)
}

func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	u, err := h.Admin.DeactivateUser(c.Params("id"))
	if err != nil {
		return fail(c, "admin.users.deactivate", err)
	}
	applog.Audit(c, "admin.users.deactivate", map[string]any{"user": u.ID})
	return ok(c, fiber.StatusOK, u)
}

func (h *AdminHandler) ActivateUser(c *fiber.Ctx) error {
	u, err := h.Admin.ActivateUser(c.Params("id"))
	if err != nil {
		return fail(c, "admin.users.activate", err)
	}
	applog.Audit(c, "admin.users.activate", map[string]any{"user": u.ID})
	return ok(c, fiber.StatusOK, u)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.DeleteUser(id); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user": id})
	return ok(c, fiber.StatusNoContent, nil)
}

// ForcePasswordReset mails the user a reset link without revealing the
// token in the response.
func (h *AdminHandler) ForcePasswordReset(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Admin.ForcePasswordReset(id); err != nil {
		return fail(c, "admin.users.reset", err)
	}
	applog.Audit(c, "admin.users.reset", map[string]any{"user": id})
	return ok(c, fiber.StatusOK, fiber.Map{"message": "reset email sent"})
}

func (h *AdminHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.Admin.GetStatistics()
	if err != nil {
		return fail(c, "admin.statistics", err)
	}
	return ok(c, fiber.StatusOK, stats)
}
