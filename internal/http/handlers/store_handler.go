package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/images"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type StoreHandler struct {
	Stores *services.StoreService
	Images *images.Pipeline
}

type storeRequest struct {
	Name             string `json:"name"`
	StoreInformation string `json:"storeInformation"`
	WhatSell         string `json:"whatSell"`
	Logo             string `json:"logo"`
	BrandColor       string `json:"brandColor"`
	HeroImage        string `json:"heroImage"`
	Heading          string `json:"heading"`
	SubHeading       string `json:"subHeading"`
}

func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var req storeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "store.create", domain.InvalidInput("malformed request body"))
	}
	if _, ok := validate.Name(req.Name); !ok {
		return fail(c, "store.create", domain.InvalidInput("store name is required (max 60 chars)"))
	}
	if req.BrandColor != "" {
		if _, ok := validate.HexColor(req.BrandColor); !ok {
			return fail(c, "store.create", domain.InvalidInput("brandColor must be a hex color like #1a2b3c"))
		}
	}
	st, err := h.Stores.Create(actor(c), services.StoreInput{
		Name:             req.Name,
		StoreInformation: req.StoreInformation,
		WhatSell:         req.WhatSell,
		Logo:             req.Logo,
		BrandColor:       req.BrandColor,
		HeroImage:        req.HeroImage,
		Heading:          req.Heading,
		SubHeading:       req.SubHeading,
	})
	if err != nil {
		return fail(c, "store.create", err)
	}
	applog.Audit(c, "store.create", map[string]any{"store": st.ID, "slug": st.Slug})
	return ok(c, fiber.StatusCreated, st)
}

// BySlug is the public storefront lookup; banners outside their active
// window are already filtered by the service.
func (h *StoreHandler) BySlug(c *fiber.Ctx) error {
	slug, okSlug := validate.Slug(c.Params("slug"))
	if !okSlug {
		applog.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return fail(c, "store.get", domain.NotFound("store not found"))
	}
	st, err := h.Stores.GetBySlug(slug)
	if err != nil {
		return fail(c, "store.get", err)
	}
	return ok(c, fiber.StatusOK, st)
}

func (h *StoreHandler) Mine(c *fiber.Ctx) error {
	st, err := h.Stores.GetOwn(actor(c))
	if err != nil {
		return fail(c, "store.mine", err)
	}
	return ok(c, fiber.StatusOK, st)
}

func (h *StoreHandler) List(c *fiber.Ctx) error {
	list, err := h.Stores.ListAll(actor(c))
	if err != nil {
		return fail(c, "store.list", err)
	}
	return ok(c, fiber.StatusOK, list)
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return fail(c, "store.update", domain.InvalidInput("malformed request body"))
	}
	st, err := h.Stores.Update(actor(c), c.Params("id"), fields)
	if err != nil {
		return fail(c, "store.update", err)
	}
	applog.Audit(c, "store.update", map[string]any{"store": st.ID})
	return ok(c, fiber.StatusOK, st)
}

func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Stores.Delete(actor(c), id); err != nil {
		return fail(c, "store.delete", err)
	}
	applog.Audit(c, "store.delete", map[string]any{"store": id})
	return ok(c, fiber.StatusNoContent, nil)
}

// UploadLogo replaces the store logo with a resized PNG.
func (h *StoreHandler) UploadLogo(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := formFileBytes(c, "logo")
	if err != nil {
		return fail(c, "store.logo", err)
	}
	path, err := h.Images.Save(data, images.Logo, id, 0)
	if err != nil {
		return fail(c, "store.logo", err)
	}
	st, err := h.Stores.Update(actor(c), id, map[string]any{"logo": path})
	if err != nil {
		return fail(c, "store.logo", err)
	}
	applog.Audit(c, "store.logo", map[string]any{"store": id, "path": path})
	return ok(c, fiber.StatusOK, st)
}

type bannerRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Image       string `json:"image" form:"image"`
	Link        string `json:"link" form:"link"`
	StartDate   string `json:"startDate" form:"startDate"`
	EndDate     string `json:"endDate" form:"endDate"`
}

func (h *StoreHandler) AddBanner(c *fiber.Ctx) error {
	id := c.Params("id")
	var req bannerRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "store.banner.add", domain.InvalidInput("malformed request body"))
	}
	// multipart uploads carry the artwork as a file, JSON clients send a path
	if data, err := formFileBytes(c, "image"); err == nil {
		path, err := h.Images.Save(data, images.Banner, id, 0)
		if err != nil {
			return fail(c, "store.banner.add", err)
		}
		req.Image = path
	}
	b, err := h.Stores.AddBanner(actor(c), id, services.BannerInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return fail(c, "store.banner.add", err)
	}
	applog.Audit(c, "store.banner.add", map[string]any{"store": id, "banner": b.ID})
	return ok(c, fiber.StatusCreated, b)
}

func (h *StoreHandler) RemoveBanner(c *fiber.Ctx) error {
	id, bannerID := c.Params("id"), c.Params("bannerId")
	if err := h.Stores.RemoveBanner(actor(c), id, bannerID); err != nil {
		return fail(c, "store.banner.remove", err)
	}
	applog.Audit(c, "store.banner.remove", map[string]any{"store": id, "banner": bannerID})
	return ok(c, fiber.StatusNoContent, nil)
}
