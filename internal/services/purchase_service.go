package services

import (
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseService struct {
	Stores    *repos.StoreRepo
	Products  *repos.ProductRepo
	Purchases *repos.PurchaseRepo
}

func NewPurchaseService(stores *repos.StoreRepo, products *repos.ProductRepo, purchases *repos.PurchaseRepo) *PurchaseService {
	return &PurchaseService{Stores: stores, Products: products, Purchases: purchases}
}

// CartItem is one requested line of a customer cart.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// Customer carries the delivery/contact fields of a purchase.
type Customer struct {
	Name     string
	Phone    string
	Address  string
	IsPOD    bool
	PODImage string
}

// Create runs the purchase flow in three phases: validate the whole cart,
// compute totals, then persist purchase + counter increments in one
// transaction. A failing item leaves nothing mutated.
func (s *PurchaseService) Create(storeSlug string, items []CartItem, cust Customer) (*domain.Purchase, error) {
	store, err := s.Stores.BySlug(storeSlug)
	if err != nil {
		return nil, err
	}
	if cust.Name == "" || cust.Phone == "" || cust.Address == "" {
		return nil, domain.InvalidInput("customer name, phone and address are required")
	}

	lines, increments, err := s.resolveCart(store.ID, items)
	if err != nil {
		return nil, err
	}

	p := &domain.Purchase{
		ID:              uuid.NewString(),
		StoreID:         store.ID,
		IsPOD:           cust.IsPOD,
		PODImage:        cust.PODImage,
		CustomerName:    cust.Name,
		CustomerPhone:   cust.Phone,
		CustomerAddress: cust.Address,
		GrandTotal:      grandTotal(lines),
		Status:          domain.StatusPending,
		Products:        lines,
	}
	if err := s.Purchases.CreateWithItems(p, increments); err != nil {
		return nil, err
	}
	return s.Purchases.Get(p.ID)
}

// resolveCart is the pure validation pass: every item must reference a
// product of the store, quantities default to 1 and must be positive. It
// returns fully-resolved snapshot lines in input order, or the first error —
// without touching storage state.
func (s *PurchaseService) resolveCart(storeID string, items []CartItem) ([]domain.PurchaseItem, map[string]int, error) {
	if len(items) == 0 {
		return nil, nil, domain.InvalidInput("no products in cart")
	}

	lines := make([]domain.PurchaseItem, 0, len(items))
	increments := map[string]int{}
	for i, it := range items {
		if it.Quantity < 0 {
			return nil, nil, domain.InvalidInput(fmt.Sprintf("quantity for product %s must be positive", it.ProductID))
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if it.Size != "" && !domain.ValidSize(it.Size) {
			return nil, nil, domain.InvalidInput("invalid size " + it.Size)
		}

		prod, err := s.Products.GetInStore(it.ProductID, storeID)
		if err != nil {
			return nil, nil, domain.InvalidInput(fmt.Sprintf("product %s not found in this store", it.ProductID))
		}

		// price captured at this instant, never re-read
		unit := prod.Price
		lines = append(lines, domain.PurchaseItem{
			Seq:        i,
			ProductID:  prod.ID,
			Name:       prod.Name,
			Quantity:   qty,
			Size:       it.Size,
			UnitPrice:  unit,
			TotalPrice: unit.Mul(decimal.NewFromInt(int64(qty))),
		})
		increments[prod.ID] += qty
	}
	return lines, increments, nil
}

func grandTotal(lines []domain.PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}

// Get returns a purchase after resolving its parent store and authorizing
// the actor against the store's owner.
func (s *PurchaseService) Get(actor *domain.User, id string) (*domain.Purchase, error) {
	p, err := s.Purchases.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStore(actor, p.StoreID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByStore returns a store's purchases newest first, owner or admin only.
func (s *PurchaseService) ListByStore(actor *domain.User, storeSlug string) ([]domain.Purchase, error) {
	store, err := s.Stores.BySlug(storeSlug)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, store.OwnerID); err != nil {
		return nil, err
	}
	return s.Purchases.ListByStore(store.ID)
}

// UpdateStatus moves a purchase through its lifecycle. The transition table
// is enforced: delivered and canceled are terminal.
func (s *PurchaseService) UpdateStatus(actor *domain.User, id, status string) (*domain.Purchase, error) {
	p, err := s.Purchases.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStore(actor, p.StoreID); err != nil {
		return nil, err
	}
	if !domain.ValidStatus(status) {
		return nil, domain.InvalidInput("invalid status " + status)
	}
	if !domain.CanTransition(p.Status, status) {
		return nil, domain.InvalidInput(fmt.Sprintf("cannot move a %s purchase to %s", p.Status, status))
	}
	if err := s.Purchases.UpdateStatus(p.ID, status); err != nil {
		return nil, err
	}
	return s.Purchases.Get(p.ID)
}

func (s *PurchaseService) Delete(actor *domain.User, id string) error {
	p, err := s.Purchases.Get(id)
	if err != nil {
		return err
	}
	if err := s.authorizeStore(actor, p.StoreID); err != nil {
		return err
	}
	return s.Purchases.Delete(p.ID)
}

// authorizeStore walks purchase -> store -> owner. A purchase whose store
// has vanished reads as NotFound, not a permission error.
func (s *PurchaseService) authorizeStore(actor *domain.User, storeID string) error {
	store, err := s.Stores.ByID(storeID)
	if err != nil {
		return err
	}
	return Authorize(actor, store.OwnerID)
}
