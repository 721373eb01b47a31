package repos

import (
	"database/sql"
	"errors"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const productCols = `id,store_id,owner_id,name,description,price,number_of_purchases,
  sizes_json,color,images_json,tags_json,is_trending,created_at,updated_at`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id,store_id,owner_id,name,description,price,sizes_json,color,
		  images_json,tags_json,is_trending)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.StoreID, p.OwnerID, p.Name, p.Description, p.Price, p.SizesJSON, p.Color,
		p.ImagesJSON, p.TagsJSON, p.IsTrending)
	return err
}

func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetInStore resolves a product only when it belongs to the given store;
// the purchase engine uses this for cart validation.
func (r *ProductRepo) GetInStore(id, storeID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id=? AND store_id=?`, id, storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("product not found in this store")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByStore applies a translated filter/sort/page query scoped to a store.
func (r *ProductRepo) ListByStore(storeID string, q ListQuery) ([]domain.Product, error) {
	query := `SELECT ` + q.SelectClause(productCols) + ` FROM products WHERE ` +
		q.WhereClause("store_id = ?") + ` ORDER BY ` + q.OrderClause() + ` LIMIT ? OFFSET ?`
	args := append(append([]any{storeID}, q.Args...), q.Limit, q.Offset)

	out := []domain.Product{}
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *ProductRepo) Update(id string, fields map[string]any) error {
	allowed := []string{"name", "description", "price", "sizes_json", "color",
		"images_json", "tags_json", "is_trending"}
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
	res, err := r.db.Exec(`UPDATE products SET `+set+`, updated_at=CURRENT_TIMESTAMP WHERE id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("product not found")
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("product not found")
	}
	return nil
}

// CurrentPrice re-reads only the price column; used by tests to assert
// snapshot independence.
func (r *ProductRepo) CurrentPrice(id string) (decimal.Decimal, error) {
	var d decimal.Decimal
	err := r.db.Get(&d, `SELECT price FROM products WHERE id=?`, id)
	return d, err
}

func (r *ProductRepo) SetPrice(id string, price decimal.Decimal) error {
	_, err := r.db.Exec(`UPDATE products SET price=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, price, id)
	return err
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// SyncOwner re-points the denormalized owner field at the store's owner.
// Kept alongside the invariant it maintains: owner_id must equal
// Store(store_id).owner_id at all times.
func (r *ProductRepo) SyncOwner(storeID, ownerID string) error {
	_, err := r.db.Exec(`UPDATE products SET owner_id=? WHERE store_id=?`, ownerID, storeID)
	return err
}
