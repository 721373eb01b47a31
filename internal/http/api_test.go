package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/mail"
	"storefront/internal/repos"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		ResetTokenTTL:  10 * time.Minute,
		VerifyTokenTTL: time.Hour,
		BcryptCost:     bcrypt.MinCost,
		MediaDir:       t.TempDir(),
		PublicURL:      "http://localhost:8080",
	}
	deps := handlers.NewDeps(db, cfg, &mail.Recorder{})

	requireAuth := handlers.RequireAuth(deps.Auth)
	requireAdmin := handlers.RequireAdmin(deps.Auth)

	app := fiber.New()
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", deps.AuthHandler.SignUp)
	auth.Post("/login", deps.AuthHandler.Login)
	auth.Get("/me", requireAuth, deps.AuthHandler.Me)
	auth.Patch("/me", requireAuth, deps.AuthHandler.UpdateMe)

	stores := api.Group("/stores")
	stores.Post("/", requireAuth, deps.StoreHandler.Create)
	stores.Get("/", requireAdmin, deps.StoreHandler.List)
	stores.Get("/my", requireAuth, deps.StoreHandler.Mine)
	stores.Get("/:slug", deps.StoreHandler.BySlug)
	stores.Patch("/:id", requireAuth, deps.StoreHandler.Update)
	stores.Post("/:storeId/products", requireAuth, deps.ProductHandler.Create)
	stores.Get("/:storeId/products", deps.ProductHandler.List)
	stores.Post("/:slug/purchases", deps.PurchaseHandler.Create)
	stores.Get("/:slug/purchases", requireAuth, deps.PurchaseHandler.ListByStore)

	purchases := api.Group("/purchases", requireAuth)
	purchases.Get("/:id", deps.PurchaseHandler.Get)
	purchases.Patch("/:id/status", deps.PurchaseHandler.UpdateStatus)

	admin := api.Group("/admin", requireAdmin)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Get("/statistics", deps.AdminHandler.Statistics)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func data(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body := decode(t, resp)
	d, _ := body["data"].(map[string]any)
	if d == nil {
		t.Fatalf("no data in envelope: %v", body)
	}
	return d
}

func signup(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/v1/auth/signup", "", fiber.Map{
		"name": "Tester", "email": email,
		"password": "correct horse", "passwordConfirm": "correct horse",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status %d", resp.StatusCode)
	}
	tok, _ := data(t, resp)["token"].(string)
	if tok == "" {
		t.Fatal("signup returned no token")
	}
	return tok
}

func markVerified(t *testing.T, db *sqlx.DB, email string) {
	t.Helper()
	if _, err := db.Exec(`UPDATE users SET email_verified=1 WHERE email=?`, email); err != nil {
		t.Fatal(err)
	}
}

func TestAuthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	tok := signup(t, app, "ada@shop.test")

	resp := doJSON(t, app, "GET", "/api/v1/auth/me", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	me := data(t, resp)
	if me["email"] != "ada@shop.test" {
		t.Fatalf("me: %v", me)
	}
	if _, leaked := me["password"]; leaked {
		t.Fatal("password surfaced in response")
	}

	if resp := doJSON(t, app, "GET", "/api/v1/auth/me", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous me: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/auth/me", "garbage.token.here", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email": "ada@shop.test", "password": "wrong password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d", resp.StatusCode)
	}
}

func TestStoreEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	ownerTok := signup(t, app, "owner@shop.test")
	strangerTok := signup(t, app, "stranger@shop.test")

	resp := doJSON(t, app, "POST", "/api/v1/stores/", ownerTok, fiber.Map{
		"name": "Corner Shop", "heroImage": "hero.png",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create store: status %d", resp.StatusCode)
	}
	st := data(t, resp)
	storeID, _ := st["id"].(string)
	if st["slug"] != "corner-shop" {
		t.Fatalf("slug: %v", st["slug"])
	}

	// one store per owner
	if resp := doJSON(t, app, "POST", "/api/v1/stores/", ownerTok, fiber.Map{
		"name": "Second", "heroImage": "hero.png",
	}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second store: status %d", resp.StatusCode)
	}

	// public storefront needs no auth
	if resp := doJSON(t, app, "GET", "/api/v1/stores/corner-shop", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("public fetch: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/stores/no-such-slug", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing slug: status %d", resp.StatusCode)
	}

	// only the owner (or an admin) may edit
	if resp := doJSON(t, app, "PATCH", "/api/v1/stores/"+storeID, strangerTok, fiber.Map{
		"heading": "Mine now",
	}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger edit: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PATCH", "/api/v1/stores/"+storeID, ownerTok, fiber.Map{
		"heading": "Fresh heading",
	}); resp.StatusCode != http.StatusOK {
		t.Fatalf("owner edit: status %d", resp.StatusCode)
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, db := newTestApp(t)
	ownerTok := signup(t, app, "owner@shop.test")
	strangerTok := signup(t, app, "stranger@shop.test")

	resp := doJSON(t, app, "POST", "/api/v1/stores/", ownerTok, fiber.Map{
		"name": "Corner Shop", "heroImage": "hero.png",
	})
	storeID, _ := data(t, resp)["id"].(string)

	// unverified sellers cannot list products
	resp = doJSON(t, app, "POST", "/api/v1/stores/"+storeID+"/products", ownerTok, fiber.Map{
		"name": "Shirt", "price": "19.99",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unverified listing: status %d", resp.StatusCode)
	}

	markVerified(t, db, "owner@shop.test")
	resp = doJSON(t, app, "POST", "/api/v1/stores/"+storeID+"/products", ownerTok, fiber.Map{
		"name": "Shirt", "price": "19.99", "availableSize": []string{"M", "L"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status %d", resp.StatusCode)
	}
	productID, _ := data(t, resp)["id"].(string)

	// anonymous checkout
	resp = doJSON(t, app, "POST", "/api/v1/stores/corner-shop/purchases", "", fiber.Map{
		"products":    []fiber.Map{{"productId": productID, "quantity": 2, "size": "M"}},
		"name":        "Ada",
		"phoneNumber": "0123456789",
		"address":     "1 Main St",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: status %d", resp.StatusCode)
	}
	purchase := data(t, resp)
	purchaseID, _ := purchase["id"].(string)
	if purchase["grandTotal"] != "39.98" {
		t.Fatalf("grand total: %v", purchase["grandTotal"])
	}
	if purchase["status"] != "pending" {
		t.Fatalf("status: %v", purchase["status"])
	}

	// the purchase ledger is owner-only
	if resp := doJSON(t, app, "GET", "/api/v1/stores/corner-shop/purchases", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous ledger: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/stores/corner-shop/purchases", strangerTok, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger ledger: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/stores/corner-shop/purchases", ownerTok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("owner ledger: status %d", resp.StatusCode)
	}

	// lifecycle over HTTP: skipping a stage is a 400
	if resp := doJSON(t, app, "PATCH", "/api/v1/purchases/"+purchaseID+"/status", ownerTok, fiber.Map{
		"status": "delivered",
	}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("pending->delivered: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PATCH", "/api/v1/purchases/"+purchaseID+"/status", ownerTok, fiber.Map{
		"status": "paid",
	}); resp.StatusCode != http.StatusOK {
		t.Fatalf("pending->paid: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "PATCH", "/api/v1/purchases/"+purchaseID+"/status", strangerTok, fiber.Map{
		"status": "shipped",
	}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger status change: status %d", resp.StatusCode)
	}
}

func TestProductListFiltering(t *testing.T) {
	app, db := newTestApp(t)
	ownerTok := signup(t, app, "owner@shop.test")
	markVerified(t, db, "owner@shop.test")

	resp := doJSON(t, app, "POST", "/api/v1/stores/", ownerTok, fiber.Map{
		"name": "Corner Shop", "heroImage": "hero.png",
	})
	storeID, _ := data(t, resp)["id"].(string)

	for _, p := range []fiber.Map{
		{"name": "Cheap", "price": "5.00"},
		{"name": "Dear", "price": "80.00"},
	} {
		if resp := doJSON(t, app, "POST", "/api/v1/stores/"+storeID+"/products", ownerTok, p); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed product: status %d", resp.StatusCode)
		}
	}

	resp = doJSON(t, app, "GET", "/api/v1/stores/"+storeID+"/products?price[gte]=10", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("filtered list: status %d", resp.StatusCode)
	}
	d := data(t, resp)
	if d["results"] != float64(1) {
		t.Fatalf("filter results: %v", d["results"])
	}

	// unknown filter keys are rejected, not ignored
	if resp := doJSON(t, app, "GET", "/api/v1/stores/"+storeID+"/products?bogus=1", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown filter: status %d", resp.StatusCode)
	}
}

func TestAdminEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	userTok := signup(t, app, "user@shop.test")

	// bootstrap admin seeded by OpenDB
	resp := doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email": "admin@storefront.test", "password": "ChangeMe1!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status %d", resp.StatusCode)
	}
	adminTok, _ := data(t, resp)["token"].(string)

	if resp := doJSON(t, app, "GET", "/api/v1/admin/statistics", userTok, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin statistics: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/admin/statistics", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous statistics: status %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/api/v1/admin/statistics", adminTok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin statistics: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/v1/admin/users?role=storeOwner", adminTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin users: status %d", resp.StatusCode)
	}
	if d := data(t, resp); d["results"] != float64(1) {
		t.Fatalf("user filter results: %v", d["results"])
	}

	if resp := doJSON(t, app, "GET", "/api/v1/stores/", userTok, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin store listing: status %d", resp.StatusCode)
	}
}
