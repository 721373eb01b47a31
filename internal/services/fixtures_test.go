package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// a second pool connection would see a fresh empty memory database
	db.SetMaxOpenConns(1)
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		ResetTokenTTL:  10 * time.Minute,
		VerifyTokenTTL: time.Hour,
		BcryptCost:     bcrypt.MinCost,
		PublicURL:      "http://localhost:8080",
	}
}

func seedOwner(t *testing.T, db *sqlx.DB, email string, verified bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &domain.User{
		ID:            uuid.NewString(),
		Name:          "Owner",
		Email:         email,
		Photo:         "default.jpg",
		Hash:          string(hash),
		Role:          domain.RoleStoreOwner,
		Active:        true,
		EmailVerified: verified,
	}
	if err := repos.NewUserRepo(db).Create(u); err != nil {
		t.Fatal(err)
	}
	return u
}

func seedAdminUser(t *testing.T, db *sqlx.DB) *domain.User {
	t.Helper()
	u, err := repos.NewUserRepo(db).ByEmail("admin@storefront.test")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func seedStore(t *testing.T, db *sqlx.DB, ownerID, name string) *domain.Store {
	t.Helper()
	st := &domain.Store{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Slug:      services.Slug(name),
		HeroImage: "hero.png",
	}
	if err := repos.NewStoreRepo(db).Create(st); err != nil {
		t.Fatal(err)
	}
	return st
}

func seedProduct(t *testing.T, db *sqlx.DB, st *domain.Store, name, price string) *domain.Product {
	t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatal(err)
	}
	p := &domain.Product{
		ID:         uuid.NewString(),
		StoreID:    st.ID,
		OwnerID:    st.OwnerID,
		Name:       name,
		Price:      d,
		SizesJSON:  domain.EncodeStrings([]string{"S", "M", "L"}),
		ImagesJSON: "[]",
		TagsJSON:   "[]",
	}
	if err := repos.NewProductRepo(db).Create(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func newAuthService(db *sqlx.DB, rec *mail.Recorder) *services.AuthService {
	return services.NewAuthService(repos.NewUserRepo(db), repos.NewStoreRepo(db), rec, testConfig())
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
