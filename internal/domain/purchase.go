package domain

import "github.com/shopspring/decimal"

// Purchase statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

// statusTransitions is the enforced lifecycle table. delivered and canceled
// are terminal.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusPaid, StatusCanceled},
	StatusPaid:      {StatusShipped, StatusCanceled},
	StatusShipped:   {StatusDelivered, StatusCanceled},
	StatusDelivered: {},
	StatusCanceled:  {},
}

func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether a purchase may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PurchaseItem is a frozen snapshot of one cart line. Later price changes on
// the product must never alter these fields.
type PurchaseItem struct {
	PurchaseID string          `db:"purchase_id" json:"-"`
	Seq        int             `db:"seq" json:"-"`
	ProductID  string          `db:"product_id" json:"productId"`
	Name       string          `db:"name" json:"name"`
	Quantity   int             `db:"quantity" json:"quantity"`
	Size       string          `db:"size" json:"size,omitempty"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice decimal.Decimal `db:"total_price" json:"totalPrice"`
}

type Purchase struct {
	ID              string          `db:"id" json:"id"`
	StoreID         string          `db:"store_id" json:"storeId"`
	IsPOD           bool            `db:"is_pod" json:"isPOD"`
	PODImage        string          `db:"pod_image" json:"podImage,omitempty"`
	CustomerName    string          `db:"customer_name" json:"customerName"`
	CustomerPhone   string          `db:"customer_phone" json:"customerPhone"`
	CustomerAddress string          `db:"customer_address" json:"customerAddress"`
	GrandTotal      decimal.Decimal `db:"grand_total" json:"grandTotal"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       string          `db:"created_at" json:"createdAt"`
	UpdatedAt       string          `db:"updated_at" json:"updatedAt,omitempty"`

	Products []PurchaseItem `db:"-" json:"products"`
}
