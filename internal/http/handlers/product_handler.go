package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/images"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type ProductHandler struct {
	Products *services.ProductService
	Images   *images.Pipeline
}

type productRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	AvailableSize []string        `json:"availableSize"`
	Color         string          `json:"color"`
	Images        []string        `json:"images"`
	Tags          []string        `json:"tags"`
	IsTrending    bool            `json:"isTrending"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "product.create", domain.InvalidInput("malformed request body"))
	}
	p, err := h.Products.Create(actor(c), c.Params("storeId"), services.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		AvailableSize: req.AvailableSize,
		Color:         req.Color,
		Images:        req.Images,
		Tags:          req.Tags,
		IsTrending:    req.IsTrending,
	})
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product": p.ID, "store": p.StoreID})
	return ok(c, fiber.StatusCreated, p)
}

// List serves a store's catalog with the filter/sort/page/fields query
// syntax, e.g. ?price[lte]=50&sort=-createdAt&fields=name,price.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.Products.List(c.Params("storeId"), c.Queries())
	if err != nil {
		return fail(c, "product.list", err)
	}
	applog.Info(c, "product.list", map[string]any{"store": c.Params("storeId"), "results": len(list)})
	return ok(c, fiber.StatusOK, fiber.Map{"results": len(list), "products": list})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "product.get", err)
	}
	p, err := h.Products.Get(id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return ok(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return fail(c, "product.update", domain.InvalidInput("malformed request body"))
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "product.update", err)
	}
	p, err := h.Products.Update(actor(c), id, fields)
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product": p.ID})
	return ok(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "product.delete", err)
	}
	if err := h.Products.Delete(actor(c), id); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product": id})
	return ok(c, fiber.StatusNoContent, nil)
}

// UploadImages accepts up to two files under the "images" field, resizes
// them and swaps them in as the product's image set.
func (h *ProductHandler) UploadImages(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, "product.images", err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, "product.images", domain.InvalidInput("multipart form with images is required"))
	}
	files := form.File["images"]
	if len(files) == 0 {
		return fail(c, "product.images", domain.InvalidInput("at least one image is required"))
	}
	if len(files) > domain.MaxProductImages {
		return fail(c, "product.images", domain.InvalidInput("a product carries at most 2 images"))
	}
	paths := make([]string, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return fail(c, "product.images", domain.InvalidInput("could not read uploaded file"))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fail(c, "product.images", domain.InvalidInput("could not read uploaded file"))
		}
		path, err := h.Images.Save(data, images.Product, id, i+1)
		if err != nil {
			return fail(c, "product.images", err)
		}
		paths = append(paths, path)
	}
	p, err := h.Products.Update(actor(c), id, map[string]any{"images": paths})
	if err != nil {
		return fail(c, "product.images", err)
	}
	applog.Audit(c, "product.images", map[string]any{"product": id, "count": len(paths)})
	return ok(c, fiber.StatusOK, p)
}
