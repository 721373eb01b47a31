package repos

import (
	"database/sql"
	"errors"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const purchaseCols = `id,store_id,is_pod,pod_image,customer_name,customer_phone,
  customer_address,grand_total,status,created_at,updated_at`

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// CreateWithItems persists the purchase header, its line items, and the
// per-product counter increments in a single transaction. Increments are
// atomic adds at the storage layer, never read-modify-write.
func (r *PurchaseRepo) CreateWithItems(p *domain.Purchase, increments map[string]int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO purchases(id,store_id,is_pod,pod_image,customer_name,customer_phone,
		  customer_address,grand_total,status)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		p.ID, p.StoreID, p.IsPOD, p.PODImage, p.CustomerName, p.CustomerPhone,
		p.CustomerAddress, p.GrandTotal, p.Status); err != nil {
		return err
	}

	for _, it := range p.Products {
		if _, err := tx.Exec(`
			INSERT INTO purchase_items(purchase_id,seq,product_id,name,quantity,size,unit_price,total_price)
			VALUES(?,?,?,?,?,?,?,?)`,
			p.ID, it.Seq, it.ProductID, it.Name, it.Quantity, it.Size, it.UnitPrice, it.TotalPrice); err != nil {
			return err
		}
	}

	for productID, by := range increments {
		if _, err := tx.Exec(`
			UPDATE products SET number_of_purchases = number_of_purchases + ? WHERE id=?`,
			by, productID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PurchaseRepo) Get(id string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.Get(&p, `SELECT `+purchaseCols+` FROM purchases WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("purchase not found")
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepo) attachItems(p *domain.Purchase) error {
	p.Products = []domain.PurchaseItem{}
	return r.db.Select(&p.Products, `
		SELECT purchase_id,seq,product_id,name,quantity,size,unit_price,total_price
		FROM purchase_items WHERE purchase_id=? ORDER BY seq`, p.ID)
}

// ListByStore returns a store's purchases newest first, items attached.
func (r *PurchaseRepo) ListByStore(storeID string) ([]domain.Purchase, error) {
	out := []domain.Purchase{}
	if err := r.db.Select(&out, `
		SELECT `+purchaseCols+` FROM purchases WHERE store_id=?
		ORDER BY datetime(created_at) DESC`, storeID); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.attachItems(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PurchaseRepo) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`
		UPDATE purchases SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("purchase not found")
	}
	return nil
}

func (r *PurchaseRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM purchase_items WHERE purchase_id=?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM purchases WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("purchase not found")
	}
	return tx.Commit()
}

// CountByStore feeds the admin statistics view.
func (r *PurchaseRepo) CountByStore(storeID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM purchases WHERE store_id=?`, storeID)
	return n, err
}

// GlobalStats returns the purchase count and gross revenue across all stores.
// Canceled purchases are excluded from revenue but counted.
func (r *PurchaseRepo) GlobalStats() (int, decimal.Decimal, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM purchases`); err != nil {
		return 0, decimal.Zero, err
	}
	var revenue decimal.Decimal
	err := r.db.Get(&revenue, `
		SELECT COALESCE(SUM(grand_total),0) FROM purchases WHERE status<>'canceled'`)
	return n, revenue, err
}
