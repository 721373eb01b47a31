package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type PurchaseHandler struct {
	Purchases *services.PurchaseService
}

type purchaseRequest struct {
	Products []services.CartItem `json:"products"`
	Name     string              `json:"name"`
	Phone    string              `json:"phoneNumber"`
	Address  string              `json:"address"`
	IsPOD    bool                `json:"isPOD"`
	PODImage string              `json:"podImage"`
}

// Create is the public checkout endpoint; no account is needed to buy.
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "purchase.create", domain.InvalidInput("malformed request body"))
	}
	p, err := h.Purchases.Create(c.Params("slug"), req.Products, services.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		IsPOD:    req.IsPOD,
		PODImage: req.PODImage,
	})
	if err != nil {
		return fail(c, "purchase.create", err)
	}
	applog.Audit(c, "purchase.create", map[string]any{"purchase": p.ID, "store": p.StoreID})
	return ok(c, fiber.StatusCreated, p)
}

func (h *PurchaseHandler) ListByStore(c *fiber.Ctx) error {
	list, err := h.Purchases.ListByStore(actor(c), c.Params("slug"))
	if err != nil {
		return fail(c, "purchase.list", err)
	}
	applog.Info(c, "purchase.list", map[string]any{"store": c.Params("slug"), "results": len(list)})
	return ok(c, fiber.StatusOK, fiber.Map{"results": len(list), "purchases": list})
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "purchase.get", err)
	}
	p, err := h.Purchases.Get(actor(c), id)
	if err != nil {
		return fail(c, "purchase.get", err)
	}
	return ok(c, fiber.StatusOK, p)
}

func (h *PurchaseHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "purchase.status", domain.InvalidInput("malformed request body"))
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "purchase.status", err)
	}
	p, err := h.Purchases.UpdateStatus(actor(c), id, req.Status)
	if err != nil {
		return fail(c, "purchase.status", err)
	}
	applog.Audit(c, "purchase.status", map[string]any{"purchase": p.ID, "status": p.Status})
	return ok(c, fiber.StatusOK, p)
}

func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "purchase.delete", err)
	}
	if err := h.Purchases.Delete(actor(c), id); err != nil {
		return fail(c, "purchase.delete", err)
	}
	applog.Audit(c, "purchase.delete", map[string]any{"purchase": id})
	return ok(c, fiber.StatusNoContent, nil)
}
