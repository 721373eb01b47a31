package services

import (
	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService struct {
	Stores   *repos.StoreRepo
	Products *repos.ProductRepo
}

func NewProductService(stores *repos.StoreRepo, products *repos.ProductRepo) *ProductService {
	return &ProductService{Stores: stores, Products: products}
}

type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	AvailableSize []string
	Color         string
	Images        []string
	Tags          []string
	IsTrending    bool
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return domain.InvalidInput("product name is required")
	}
	if in.Price.IsNegative() {
		return domain.InvalidInput("price must be greater than or equal to 0")
	}
	if len(in.Images) > domain.MaxProductImages {
		return domain.InvalidInput("a product carries at most 2 images")
	}
	for _, sz := range in.AvailableSize {
		if !domain.ValidSize(sz) {
			return domain.InvalidInput("invalid size " + sz)
		}
	}
	return nil
}

// Create lists a product in the actor's own store. The owner reference is
// denormalized from the store so later authorization checks skip the join.
// Listing requires a verified email.
func (p *ProductService) Create(actor *domain.User, storeID string, in ProductInput) (*domain.Product, error) {
	store, err := p.Stores.ByOwner(actor.ID)
	if err != nil {
		return nil, domain.Forbidden("you are not allowed to create products here")
	}
	if store.ID != storeID {
		return nil, domain.Forbidden("you are not allowed to create products here")
	}
	if !actor.EmailVerified {
		return nil, domain.Forbidden("verify your email first")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	prod := &domain.Product{
		ID:          uuid.NewString(),
		StoreID:     store.ID,
		OwnerID:     store.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		SizesJSON:   domain.EncodeStrings(in.AvailableSize),
		Color:       in.Color,
		ImagesJSON:  domain.EncodeStrings(in.Images),
		TagsJSON:    domain.EncodeStrings(in.Tags),
		IsTrending:  in.IsTrending,
	}
	if err := p.Products.Create(prod); err != nil {
		return nil, err
	}
	return prod, nil
}

// List returns a store's products filtered/sorted/paged by the raw query
// parameters, public endpoint.
func (p *ProductService) List(storeID string, rawQuery map[string]string) ([]domain.Product, error) {
	store, err := p.Stores.ByID(storeID)
	if err != nil {
		return nil, err
	}
	q, err := repos.BuildListQuery(rawQuery, repos.ProductColumns)
	if err != nil {
		return nil, err
	}
	return p.Products.ListByStore(store.ID, q)
}

func (p *ProductService) Get(id string) (*domain.Product, error) {
	return p.Products.Get(id)
}

// Update mutates allow-listed fields after authorizing against the
// denormalized owner. A missing owner reads as NotFound, not Forbidden.
func (p *ProductService) Update(actor *domain.User, id string, fields map[string]any) (*domain.Product, error) {
	prod, err := p.Products.Get(id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, prod.OwnerID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	for k, v := range fields {
		switch k {
		case "name", "description", "color":
			if str, ok := v.(string); ok && str != "" {
				updates[k] = str
			}
		case "price":
			d, err := decimalFromAny(v)
			if err != nil {
				return nil, domain.InvalidInput("invalid price")
			}
			if d.IsNegative() {
				return nil, domain.InvalidInput("price must be greater than or equal to 0")
			}
			updates["price"] = d
		case "isTrending":
			if b, ok := v.(bool); ok {
				updates["is_trending"] = b
			}
		case "availableSize":
			sizes, err := stringsFromAny(v)
			if err != nil {
				return nil, domain.InvalidInput("invalid availableSize")
			}
			for _, sz := range sizes {
				if !domain.ValidSize(sz) {
					return nil, domain.InvalidInput("invalid size " + sz)
				}
			}
			updates["sizes_json"] = domain.EncodeStrings(sizes)
		case "images":
			imgs, err := stringsFromAny(v)
			if err != nil || len(imgs) > domain.MaxProductImages {
				return nil, domain.InvalidInput("a product carries at most 2 images")
			}
			updates["images_json"] = domain.EncodeStrings(imgs)
		case "tags":
			tags, err := stringsFromAny(v)
			if err != nil {
				return nil, domain.InvalidInput("invalid tags")
			}
			updates["tags_json"] = domain.EncodeStrings(tags)
		}
	}
	if len(updates) == 0 {
		return nil, domain.InvalidInput("no allowed fields to update")
	}
	if err := p.Products.Update(prod.ID, updates); err != nil {
		return nil, err
	}
	return p.Products.Get(prod.ID)
}

func (p *ProductService) Delete(actor *domain.User, id string) error {
	prod, err := p.Products.Get(id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, prod.OwnerID); err != nil {
		return err
	}
	return p.Products.Delete(prod.ID)
}

func decimalFromAny(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	case decimal.Decimal:
		return x, nil
	default:
		return decimal.Zero, domain.InvalidInput("invalid number")
	}
}

func stringsFromAny(v any) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, domain.InvalidInput("expected a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.InvalidInput("expected a list of strings")
	}
}
