package domain

const (
	RoleStoreOwner = "storeOwner"
	RoleAdmin      = "admin"
)

type User struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Email         string `db:"email" json:"email"`
	Phone         string `db:"phone" json:"phone"`
	Photo         string `db:"photo" json:"photo"`
	Hash          string `db:"password_hash" json:"-"`
	Role          string `db:"role" json:"role"`
	Active        bool   `db:"active" json:"active"`
	EmailVerified bool   `db:"email_verified" json:"emailVerified"`

	// Token hashes only; raw values are delivered out-of-band and never stored.
	VerifyTokenHash   string `db:"verify_token_hash" json:"-"`
	VerifyExpires     string `db:"verify_expires" json:"-"`
	ResetTokenHash    string `db:"reset_token_hash" json:"-"`
	ResetExpires      string `db:"reset_expires" json:"-"`
	PasswordChangedAt string `db:"password_changed_at" json:"-"`

	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
