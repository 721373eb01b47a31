package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Size variants a product may offer.
var ProductSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// MaxProductImages bounds the images list per product.
const MaxProductImages = 2

type Product struct {
	ID      string `db:"id" json:"id"`
	StoreID string `db:"store_id" json:"storeId"`
	// OwnerID duplicates Store(StoreID).OwnerID so authorization never joins
	// through stores. Invariant: must equal the owning store's owner at all times.
	OwnerID           string          `db:"owner_id" json:"-"`
	Name              string          `db:"name" json:"name"`
	Description       string          `db:"description" json:"description"`
	Price             decimal.Decimal `db:"price" json:"price"`
	NumberOfPurchases int             `db:"number_of_purchases" json:"numberOfPurchases"`
	SizesJSON         string          `db:"sizes_json" json:"-"`
	Color             string          `db:"color" json:"color"`
	ImagesJSON        string          `db:"images_json" json:"-"`
	TagsJSON          string          `db:"tags_json" json:"-"`
	IsTrending        bool            `db:"is_trending" json:"isTrending"`
	CreatedAt         string          `db:"created_at" json:"createdAt"`
	UpdatedAt         string          `db:"updated_at" json:"updatedAt,omitempty"`
}

// MarshalJSON expands the JSON-encoded list columns into real arrays.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		AvailableSize []string `json:"availableSize"`
		Images        []string `json:"images"`
		Tags          []string `json:"tags"`
	}{
		alias:         alias(p),
		AvailableSize: DecodeStrings(p.SizesJSON),
		Images:        DecodeStrings(p.ImagesJSON),
		Tags:          DecodeStrings(p.TagsJSON),
	})
}

// DecodeStrings turns a JSON array column into a slice, empty on bad input.
func DecodeStrings(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

// EncodeStrings is the inverse of DecodeStrings for persisting list columns.
func EncodeStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func ValidSize(s string) bool {
	for _, v := range ProductSizes {
		if s == v {
			return true
		}
	}
	return false
}
