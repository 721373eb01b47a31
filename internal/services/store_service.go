package services

import (
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
	slugify "github.com/gosimple/slug"
)

type StoreService struct {
	Stores   *repos.StoreRepo
	Products *repos.ProductRepo

	Now func() time.Time
}

func NewStoreService(stores *repos.StoreRepo, products *repos.ProductRepo) *StoreService {
	return &StoreService{Stores: stores, Products: products, Now: time.Now}
}

// Slug derives the public lookup key from a display name: lowercase,
// ASCII-transliterated, non-alphanumerics collapsed to separators.
// Deterministic for a fixed name.
func Slug(name string) string { return slugify.Make(name) }

type StoreInput struct {
	Name             string
	StoreInformation string
	WhatSell         string
	Logo             string
	BrandColor       string
	HeroImage        string
	Heading          string
	SubHeading       string
}

// Create sets up the actor's storefront. A user owns at most one store; the
// repo surfaces the uniqueness violation as Conflict even when two creation
// attempts race past the existence pre-check.
func (s *StoreService) Create(actor *domain.User, in StoreInput) (*domain.Store, error) {
	if in.Name == "" {
		return nil, domain.InvalidInput("store name is required")
	}
	if in.HeroImage == "" {
		return nil, domain.InvalidInput("hero image is required")
	}
	if _, err := s.Stores.ByOwner(actor.ID); err == nil {
		return nil, domain.Conflict("you already have a store")
	}

	st := &domain.Store{
		ID:               uuid.NewString(),
		OwnerID:          actor.ID,
		Name:             in.Name,
		Slug:             Slug(in.Name),
		StoreInformation: in.StoreInformation,
		WhatSell:         in.WhatSell,
		Logo:             in.Logo,
		BrandColor:       defaultStr(in.BrandColor, "#000000"),
		HeroImage:        in.HeroImage,
		Heading:          defaultStr(in.Heading, "Welcome to our store"),
		SubHeading:       defaultStr(in.SubHeading, "Explore our products and enjoy shopping!"),
	}
	if err := s.Stores.Create(st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetBySlug is the public storefront view: only banners active at the
// current instant are included (window boundaries inclusive).
func (s *StoreService) GetBySlug(slug string) (*domain.Store, error) {
	st, err := s.Stores.BySlug(slug)
	if err != nil {
		return nil, err
	}
	banners, err := s.Stores.BannersByStore(st.ID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	st.Banners = []domain.Banner{}
	for _, b := range banners {
		if b.ActiveAt(now) {
			st.Banners = append(st.Banners, b)
		}
	}
	q, _ := repos.BuildListQuery(nil, repos.ProductColumns)
	st.Products, err = s.Products.ListByStore(st.ID, q)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StoreService) GetOwn(actor *domain.User) (*domain.Store, error) {
	st, err := s.Stores.ByOwner(actor.ID)
	if err != nil {
		return nil, err
	}
	st.Banners, err = s.Stores.BannersByStore(st.ID)
	return st, err
}

func (s *StoreService) ListAll(actor *domain.User) ([]domain.Store, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("admin only")
	}
	return s.Stores.ListAll()
}

// Update applies allow-listed fields. Renaming recomputes the slug; nothing
// else ever touches it.
func (s *StoreService) Update(actor *domain.User, storeID string, fields map[string]any) (*domain.Store, error) {
	st, err := s.Stores.ByID(storeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, st.OwnerID); err != nil {
		return nil, err
	}

	colFor := map[string]string{
		"name":             "name",
		"storeInformation": "store_information",
		"whatSell":         "what_sell",
		"logo":             "logo",
		"brandColor":       "brand_color",
		"heroImage":        "hero_image",
		"heading":          "heading",
		"subHeading":       "sub_heading",
	}
	updates := map[string]any{}
	for k, v := range fields {
		col, ok := colFor[k]
		if !ok {
			continue
		}
		if str, isStr := v.(string); !isStr || str == "" {
			continue
		}
		updates[col] = v
	}
	if name, ok := updates["name"]; ok {
		updates["slug"] = Slug(name.(string))
	}
	if len(updates) == 0 {
		return nil, domain.InvalidInput("no allowed fields to update")
	}
	if err := s.Stores.Update(st.ID, updates); err != nil {
		return nil, err
	}
	return s.Stores.ByID(st.ID)
}

// Delete removes the store and everything under it (products, purchases,
// banners) in one transaction.
func (s *StoreService) Delete(actor *domain.User, storeID string) error {
	st, err := s.Stores.ByID(storeID)
	if err != nil {
		return err
	}
	if err := Authorize(actor, st.OwnerID); err != nil {
		return err
	}
	return s.Stores.DeleteCascade(st.ID)
}

type BannerInput struct {
	Title       string
	Description string
	Image       string
	Link        string
	StartDate   string
	EndDate     string
}

func (s *StoreService) AddBanner(actor *domain.User, storeID string, in BannerInput) (*domain.Banner, error) {
	st, err := s.Stores.ByID(storeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, st.OwnerID); err != nil {
		return nil, err
	}
	if _, err := time.Parse(time.RFC3339, in.StartDate); err != nil {
		return nil, domain.InvalidInput("banner start date is required (RFC3339)")
	}
	if _, err := time.Parse(time.RFC3339, in.EndDate); err != nil {
		return nil, domain.InvalidInput("banner end date is required (RFC3339)")
	}

	b := &domain.Banner{
		ID:          uuid.NewString(),
		StoreID:     st.ID,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Link:        in.Link,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.Stores.AddBanner(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *StoreService) RemoveBanner(actor *domain.User, storeID, bannerID string) error {
	st, err := s.Stores.ByID(storeID)
	if err != nil {
		return err
	}
	if err := Authorize(actor, st.OwnerID); err != nil {
		return err
	}
	return s.Stores.DeleteBanner(st.ID, bannerID)
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
