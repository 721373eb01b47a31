package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func newPurchaseService(db *sqlx.DB) *services.PurchaseService {
	return services.NewPurchaseService(
		repos.NewStoreRepo(db), repos.NewProductRepo(db), repos.NewPurchaseRepo(db))
}

func TestPurchaseCreateSnapshotsAndTotals(t *testing.T) {
	db := memdb(t)
	owner := seedOwner(t, db, "owner@shop.test", true)
	st := seedStore(t, db, owner.ID, "Corner Shop")
	shirt := seedProduct(t, db, st, "Shirt", "19.99")
	mug := seedProduct(t, db, st, "Mug", "7.50")

	svc := newPurchaseService(db)
	p, err := svc.Create(st.Slug, []services.CartItem{
		{ProductID: shirt.ID, Quantity: 2, Size: "M"},
		{ProductID: mug.ID}, // quantity defaults to 1
	}, services.Customer{Name: "Ada", Phone: "0123456789", Address: "1 Main St"})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	if p.Status != domain.StatusPending {
		t.Fatalf("new purchase should be pending, got %s", p.Status)
	}
	if want := mustDecimal(t, "47.48"); !p.GrandTotal.Equal(want) {
		t.Fatalf("grand total: want %s, got %s", want, p.GrandTotal)
	}
	if len(p.Products) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(p.Products))
	}
	// input order preserved
	if p.Products[0].ProductID != shirt.ID || p.Products[1].ProductID != mug.ID {
		t.Fatal("line items out of input order")
	}
	if p.Products[1].Quantity != 1 {
		t.Fatalf("zero quantity should default to 1, got %d", p.Products[1].Quantity)
	}

	// counters incremented by quantity
	prodRepo := repos.NewProductRepo(db)
	got, err := prodRepo.Get(shirt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberOfPurchases != 2 {
		t.Fatalf("shirt counter: want 2, got %d", got.NumberOfPurchases)
	}

	// later price changes never touch the frozen snapshot
	if err := prodRepo.SetPrice(shirt.ID, mustDecimal(t, "99.99")); err != nil {
		t.Fatal(err)
	}
	again, err := repos.NewPurchaseRepo(db).Get(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Products[0].UnitPrice.Equal(mustDecimal(t, "19.99")) {
		t.Fatalf("snapshot price drifted: %s", again.Products[0].UnitPrice)
	}
	if !again.GrandTotal.Equal(mustDecimal(t, "47.48")) {
		t.Fatalf("grand total drifted: %s", again.GrandTotal)
	}
}

func TestPurchaseCreateFailingItemMutatesNothing(t *testing.T) {
	db := memdb(t)
	owner := seedOwner(t, db, "owner@shop.test", true)
	st := seedStore(t, db, owner.ID, "Corner Shop")
	shirt := seedProduct(t, db, st, "Shirt", "19.99")

	other := seedOwner(t, db, "other@shop.test", true)
	otherStore := seedStore(t, db, other.ID, "Other Shop")
	alien := seedProduct(t, db, otherStore, "Alien", "1.00")

	svc := newPurchaseService(db)
	_, err := svc.Create(st.Slug, []services.CartItem{
		{ProductID: shirt.ID, Quantity: 3},
		{ProductID: alien.ID, Quantity: 1}, // belongs to another store
	}, services.Customer{Name: "Ada", Phone: "0123456789", Address: "1 Main St"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	got, err := repos.NewProductRepo(db).Get(shirt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberOfPurchases != 0 {
		t.Fatalf("counter bumped despite failed checkout: %d", got.NumberOfPurchases)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM purchases`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("purchase row persisted despite failed checkout: %d", n)
	}
}

func TestPurchaseCreateValidation(t *testing.T) {
	db := memdb(t)
	owner := seedOwner(t, db, "owner@shop.test", true)
	st := seedStore(t, db, owner.ID, "Corner Shop")
	shirt := seedProduct(t, db, st, "Shirt", "19.99")
	cust := services.Customer{Name: "Ada", Phone: "0123456789", Address: "1 Main St"}

	svc := newPurchaseService(db)

	if _, err := svc.Create(st.Slug, nil, cust); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty cart: expected invalid input, got %v", err)
	}
	if _, err := svc.Create(st.Slug, []services.CartItem{{ProductID: shirt.ID, Quantity: -1}}, cust); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative quantity: expected invalid input, got %v", err)
	}
	if _, err := svc.Create(st.Slug, []services.CartItem{{ProductID: shirt.ID, Size: "HUGE"}}, cust); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad size: expected invalid input, got %v", err)
	}
	if _, err := svc.Create(st.Slug, []services.CartItem{{ProductID: shirt.ID}}, services.Customer{Name: "Ada"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing customer fields: expected invalid input, got %v", err)
	}
	if _, err := svc.Create("no-such-store", []services.CartItem{{ProductID: shirt.ID}}, cust); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown store: expected not found, got %v", err)
	}
}

func TestPurchaseStatusLifecycle(t *testing.T) {
	db := memdb(t)
	owner := seedOwner(t, db, "owner@shop.test", true)
	st := seedStore(t, db, owner.ID, "Corner Shop")
	shirt := seedProduct(t, db, st, "Shirt", "10.00")

	svc := newPurchaseService(db)
	p, err := svc.Create(st.Slug, []services.CartItem{{ProductID: shirt.ID}},
		services.Customer{Name: "Ada", Phone: "0123456789", Address: "1 Main St"})
	if err != nil {
		t.Fatal(err)
	}

	// skipping a stage is rejected
	if _, err := svc.UpdateStatus(owner, p.ID, domain.StatusShipped); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("pending->shipped should be rejected, got %v", err)
	}
	if _, err := svc.UpdateStatus(owner, p.ID, "refunded"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}

	for _, next := range []string{domain.StatusPaid, domain.StatusShipped, domain.StatusDelivered} {
		p2, err := svc.UpdateStatus(owner, p.ID, next)
		if err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
		if p2.Status != next {
			t.Fatalf("status not applied: want %s got %s", next, p2.Status)
		}
	}

	// delivered is terminal
	if _, err := svc.UpdateStatus(owner, p.ID, domain.StatusCanceled); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("delivered->canceled should be rejected, got %v", err)
	}
}

func TestPurchaseAccessControl(t *testing.T) {
	db := memdb(t)
	owner := seedOwner(t, db, "owner@shop.test", true)
	stranger := seedOwner(t, db, "stranger@shop.test", true)
	admin := seedAdminUser(t, db)
	st := seedStore(t, db, owner.ID, "Corner Shop")
	shirt := seedProduct(t, db, st, "Shirt", "10.00")

	svc := newPurchaseService(db)
	p, err := svc.Create(st.Slug, []services.CartItem{{ProductID: shirt.ID}},
		services.Customer{Name: "Ada", Phone: "0123456789", Address: "1 Main St"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(stranger, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger read should be forbidden, got %v", err)
	}
	if _, err := svc.Get(nil, p.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous read should be unauthorized, got %v", err)
	}
	if _, err := svc.Get(owner, p.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(admin, p.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	if _, err := svc.ListByStore(stranger, st.Slug); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger list should be forbidden, got %v", err)
	}
	list, err := svc.ListByStore(owner, st.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(list))
	}

	if err := svc.Delete(stranger, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete should be forbidden, got %v", err)
	}
	if err := svc.Delete(owner, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(owner, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted purchase should be gone, got %v", err)
	}
}
