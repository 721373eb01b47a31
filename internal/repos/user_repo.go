package repos

import (
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userCols = `id,name,email,phone,photo,password_hash,role,active,email_verified,
  verify_token_hash,verify_expires,reset_token_hash,reset_expires,password_changed_at,
  created_at,updated_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,name,email,phone,photo,password_hash,role,email_verified)
		VALUES(?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.Phone, u.Photo, u.Hash, u.Role, u.EmailVerified)
	if IsUniqueViolation(err) {
		return domain.Conflict("a user with this email already exists")
	}
	return err
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List applies a translated filter/sort/page query. Token and hash columns
// are never projected.
func (r *UserRepo) List(q ListQuery) ([]domain.User, error) {
	sel := q.SelectClause(`id,name,email,phone,photo,role,active,email_verified,created_at,updated_at`)
	query := `SELECT ` + sel + ` FROM users WHERE ` + q.WhereClause() +
		` ORDER BY ` + q.OrderClause() + ` LIMIT ? OFFSET ?`
	args := append(append([]any{}, q.Args...), q.Limit, q.Offset)

	out := []domain.User{}
	err := r.DB.Select(&out, query, args...)
	return out, err
}

// UpdateProfile writes the allow-listed mutable profile fields.
func (r *UserRepo) UpdateProfile(id string, fields map[string]any) error {
	set := ""
	args := []any{}
	for _, k := range []string{"name", "email", "phone", "photo"} {
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
	res, err := r.DB.Exec(`UPDATE users SET `+set+`, updated_at=CURRENT_TIMESTAMP WHERE id=?`, args...)
	if IsUniqueViolation(err) {
		return domain.Conflict("a user with this email already exists")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) SetActive(id string, active bool) error {
	res, err := r.DB.Exec(`UPDATE users SET active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) UpdatePassword(id, hash string, changedAt time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE users SET password_hash=?, password_changed_at=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?`, hash, changedAt.UTC().Format(time.RFC3339), id)
	return err
}

// ---------- one-time token plumbing ----------
// Only the SHA-256 hash of a token is stored; expiry instants are RFC3339
// strings so window checks are plain lexical comparisons.

func (r *UserRepo) SetVerifyToken(id, tokenHash string, expires time.Time) error {
	_, err := r.DB.Exec(`UPDATE users SET verify_token_hash=?, verify_expires=? WHERE id=?`,
		tokenHash, expires.UTC().Format(time.RFC3339), id)
	return err
}

// ClearVerifyToken is also the compensating rollback when the verification
// email cannot be delivered.
func (r *UserRepo) ClearVerifyToken(id string) error {
	_, err := r.DB.Exec(`UPDATE users SET verify_token_hash='', verify_expires='' WHERE id=?`, id)
	return err
}

func (r *UserRepo) ByVerifyTokenHash(tokenHash string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE verify_token_hash=? AND verify_token_hash<>'' AND verify_expires>?`,
		tokenHash, now.UTC().Format(time.RFC3339))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.InvalidInput("verification token is invalid or expired")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) MarkVerified(id string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET email_verified=1, verify_token_hash='', verify_expires='',
		  updated_at=CURRENT_TIMESTAMP
		WHERE id=?`, id)
	return err
}

func (r *UserRepo) SetResetToken(id, tokenHash string, expires time.Time) error {
	_, err := r.DB.Exec(`UPDATE users SET reset_token_hash=?, reset_expires=? WHERE id=?`,
		tokenHash, expires.UTC().Format(time.RFC3339), id)
	return err
}

func (r *UserRepo) ClearResetToken(id string) error {
	_, err := r.DB.Exec(`UPDATE users SET reset_token_hash='', reset_expires='' WHERE id=?`, id)
	return err
}

func (r *UserRepo) ByResetTokenHash(tokenHash string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE reset_token_hash=? AND reset_token_hash<>'' AND reset_expires>?`,
		tokenHash, now.UTC().Format(time.RFC3339))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.InvalidInput("reset token is invalid or has expired")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
