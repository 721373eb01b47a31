package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure a bootstrap admin exists (idempotent; safe to run every start)
	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  photo TEXT NOT NULL DEFAULT 'default.jpg',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'storeOwner' CHECK (role IN ('storeOwner','admin')),
  active INTEGER NOT NULL DEFAULT 1,
  email_verified INTEGER NOT NULL DEFAULT 0,
  verify_token_hash TEXT NOT NULL DEFAULT '',
  verify_expires TEXT NOT NULL DEFAULT '',
  reset_token_hash TEXT NOT NULL DEFAULT '',
  reset_expires TEXT NOT NULL DEFAULT '',
  password_changed_at TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Stores: one per owner, name unique across tenants
CREATE TABLE IF NOT EXISTS stores(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  store_information TEXT NOT NULL DEFAULT '',
  what_sell TEXT NOT NULL DEFAULT '',
  logo TEXT NOT NULL DEFAULT '',
  brand_color TEXT NOT NULL DEFAULT '#000000',
  hero_image TEXT NOT NULL,
  heading TEXT NOT NULL DEFAULT 'Welcome to our store',
  sub_heading TEXT NOT NULL DEFAULT 'Explore our products and enjoy shopping!',
  active INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_name_nocase ON stores(LOWER(name));
CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_slug ON stores(slug);

CREATE TABLE IF NOT EXISTS store_banners(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_banners_store ON store_banners(store_id);

-- Products: owner_id denormalized from the owning store
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  number_of_purchases INTEGER NOT NULL DEFAULT 0,
  sizes_json TEXT NOT NULL DEFAULT '[]',
  color TEXT NOT NULL DEFAULT '',
  images_json TEXT NOT NULL DEFAULT '[]',
  tags_json TEXT NOT NULL DEFAULT '[]',
  is_trending INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);
CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Purchases: immutable except status; line items are price snapshots
CREATE TABLE IF NOT EXISTS purchases(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  is_pod INTEGER NOT NULL DEFAULT 0,
  pod_image TEXT NOT NULL DEFAULT '',
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_address TEXT NOT NULL,
  grand_total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','paid','shipped','delivered','canceled')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_purchases_store ON purchases(store_id);
CREATE INDEX IF NOT EXISTS idx_purchases_created_at ON purchases(created_at);

CREATE TABLE IF NOT EXISTS purchase_items(
  purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  size TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  PRIMARY KEY (purchase_id, seq)
);
`
	_, err := db.Exec(schema)
	return err
}

// seedAdmin ensures one admin account exists so a fresh install is reachable.
func seedAdmin(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE role='admin'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting bootstrap admin")
	h, err := bcrypt.GenerateFromPassword([]byte("ChangeMe1!"), 12)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,name,email,phone,password_hash,role,email_verified)
		VALUES('u-admin','Admin','admin@storefront.test','',?,'admin',1)
		ON CONFLICT DO NOTHING
	`, string(h))
	return err
}

// IsUniqueViolation reports whether err is a uniqueness-constraint failure,
// which callers surface as a Conflict.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
