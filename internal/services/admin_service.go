package services

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
)

// AdminService covers the user-management and reporting surface. Every
// operation assumes the HTTP layer already gated on the admin role.
type AdminService struct {
	Users     *repos.UserRepo
	Stores    *repos.StoreRepo
	Products  *repos.ProductRepo
	Purchases *repos.PurchaseRepo
	Mail      mail.Mailer
	Cfg       *config.Config

	Now func() time.Time
}

func NewAdminService(users *repos.UserRepo, stores *repos.StoreRepo, products *repos.ProductRepo,
	purchases *repos.PurchaseRepo, m mail.Mailer, cfg *config.Config) *AdminService {
	return &AdminService{
		Users: users, Stores: stores, Products: products, Purchases: purchases,
		Mail: m, Cfg: cfg, Now: time.Now,
	}
}

// ListUsers applies the generic filter/sort/page/fields syntax, e.g.
// ?role=storeOwner&sort=-createdAt&limit=20&page=2&fields=name,email.
func (a *AdminService) ListUsers(rawQuery map[string]string) ([]domain.User, error) {
	q, err := repos.BuildListQuery(rawQuery, repos.UserColumns)
	if err != nil {
		return nil, err
	}
	return a.Users.List(q)
}

func (a *AdminService) GetUser(id string) (*domain.User, error) {
	return a.Users.ByID(id)
}

// UpdateUser edits non-credential fields. Password and role fields never
// pass through here.
func (a *AdminService) UpdateUser(id string, fields map[string]any) (*domain.User, error) {
	allowed := map[string]any{}
	for _, k := range []string{"name", "email", "photo"} {
		if v, ok := fields[k]; ok {
			if str, isStr := v.(string); !isStr || str == "" {
				continue
			}
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		return nil, domain.InvalidInput("no allowed fields to update")
	}
	if err := a.Users.UpdateProfile(id, allowed); err != nil {
		return nil, err
	}
	return a.Users.ByID(id)
}

func (a *AdminService) DeactivateUser(id string) (*domain.User, error) {
	if err := a.Users.SetActive(id, false); err != nil {
		return nil, err
	}
	return a.Users.ByID(id)
}

func (a *AdminService) ActivateUser(id string) (*domain.User, error) {
	if err := a.Users.SetActive(id, true); err != nil {
		return nil, err
	}
	return a.Users.ByID(id)
}

func (a *AdminService) DeleteUser(id string) error {
	return a.Users.Delete(id)
}

// ForcePasswordReset issues a reset token on a user's behalf and emails the
// link; the token rolls back if the email cannot be sent.
func (a *AdminService) ForcePasswordReset(id string) error {
	u, err := a.Users.ByID(id)
	if err != nil {
		return err
	}
	raw, tokenHash := newOneTimeToken()
	if err := a.Users.SetResetToken(u.ID, tokenHash, a.Now().Add(a.Cfg.ResetTokenTTL)); err != nil {
		return err
	}
	resetURL := a.Cfg.PublicURL + "/api/v1/auth/reset-password/" + raw
	body := "An administrator requested a password reset for your account.\n" +
		"Use this link within 10 minutes:\n" + resetURL
	if err := a.Mail.Send(u.Email, "Password reset requested by admin", body); err != nil {
		_ = a.Users.ClearResetToken(u.ID)
		return domain.Dependency("there was an error sending the email, try again later")
	}
	return nil
}

// Statistics is the aggregate reporting view.
type Statistics struct {
	Stores    int             `json:"stores"`
	Products  int             `json:"products"`
	Purchases int             `json:"purchases"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func (a *AdminService) GetStatistics() (*Statistics, error) {
	stores, err := a.Stores.Count()
	if err != nil {
		return nil, err
	}
	products, err := a.Products.Count()
	if err != nil {
		return nil, err
	}
	purchases, revenue, err := a.Purchases.GlobalStats()
	if err != nil {
		return nil, err
	}
	return &Statistics{Stores: stores, Products: products, Purchases: purchases, Revenue: revenue}, nil
}
