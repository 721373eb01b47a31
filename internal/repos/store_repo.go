package repos

import (
	"database/sql"
	"errors"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

const storeCols = `id,owner_id,name,slug,store_information,what_sell,logo,brand_color,
  hero_image,heading,sub_heading,active,created_at,updated_at`

type StoreRepo struct{ db *sqlx.DB }

func NewStoreRepo(db *sqlx.DB) *StoreRepo { return &StoreRepo{db: db} }

func (r *StoreRepo) Create(s *domain.Store) error {
	_, err := r.db.Exec(`
		INSERT INTO stores(id,owner_id,name,slug,store_information,what_sell,logo,brand_color,
		  hero_image,heading,sub_heading,active)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.OwnerID, s.Name, s.Slug, s.StoreInformation, s.WhatSell, s.Logo, s.BrandColor,
		s.HeroImage, s.Heading, s.SubHeading, s.Active)
	if IsUniqueViolation(err) {
		return domain.Conflict("store already exists for this owner or name is taken")
	}
	return err
}

func (r *StoreRepo) get(where string, arg any) (*domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, `SELECT `+storeCols+` FROM stores WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("store not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) ByID(id string) (*domain.Store, error)       { return r.get(`id=?`, id) }
func (r *StoreRepo) BySlug(slug string) (*domain.Store, error)   { return r.get(`slug=?`, slug) }
func (r *StoreRepo) ByOwner(owner string) (*domain.Store, error) { return r.get(`owner_id=?`, owner) }

func (r *StoreRepo) ListAll() ([]domain.Store, error) {
	out := []domain.Store{}
	err := r.db.Select(&out, `SELECT `+storeCols+` FROM stores ORDER BY datetime(created_at) DESC`)
	return out, err
}

// Update writes allow-listed presentation fields; name changes arrive with a
// recomputed slug.
func (r *StoreRepo) Update(id string, fields map[string]any) error {
	allowed := []string{"name", "slug", "store_information", "what_sell", "logo",
		"brand_color", "hero_image", "heading", "sub_heading", "active"}
	set := ""
	args := []any{}
	for _, k := range allowed {
		if v, ok := fields[k]; ok {
			if set != "" {
				set += ", "
			}
			set += k + "=?"
			args = append(args, v)
		}
	}
	if set == "" {
		return domain.InvalidInput("no allowed fields to update")
	}
	args = append(args, id)
	res, err := r.db.Exec(`UPDATE stores SET `+set+`, updated_at=CURRENT_TIMESTAMP WHERE id=?`, args...)
	if IsUniqueViolation(err) {
		return domain.Conflict("another store already uses this name")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("store not found")
	}
	return nil
}

// DeleteCascade removes the store with its products, purchases and banners in
// one transaction, so no orphaned rows survive with a dangling owner chain.
func (r *StoreRepo) DeleteCascade(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM purchase_items WHERE purchase_id IN (SELECT id FROM purchases WHERE store_id=?)`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM purchases WHERE store_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM products WHERE store_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM store_banners WHERE store_id=?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM stores WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("store not found")
	}
	return tx.Commit()
}

func (r *StoreRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM stores`)
	return n, err
}

// ---------- banners ----------

func (r *StoreRepo) AddBanner(b *domain.Banner) error {
	_, err := r.db.Exec(`
		INSERT INTO store_banners(id,store_id,title,description,image,link,start_date,end_date)
		VALUES(?,?,?,?,?,?,?,?)`,
		b.ID, b.StoreID, b.Title, b.Description, b.Image, b.Link, b.StartDate, b.EndDate)
	return err
}

func (r *StoreRepo) DeleteBanner(storeID, bannerID string) error {
	res, err := r.db.Exec(`DELETE FROM store_banners WHERE id=? AND store_id=?`, bannerID, storeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("banner not found")
	}
	return nil
}

func (r *StoreRepo) BannersByStore(storeID string) ([]domain.Banner, error) {
	out := []domain.Banner{}
	err := r.db.Select(&out, `
		SELECT id,store_id,title,description,image,link,start_date,end_date,created_at
		FROM store_banners WHERE store_id=? ORDER BY datetime(created_at)`, storeID)
	return out, err
}
