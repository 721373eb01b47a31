package services

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users  *repos.UserRepo
	Stores *repos.StoreRepo
	Mail   mail.Mailer
	Signer *TokenSigner
	Cfg    *config.Config

	// overridable clock for tests
	Now func() time.Time
}

func NewAuthService(users *repos.UserRepo, stores *repos.StoreRepo, m mail.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		Users:  users,
		Stores: stores,
		Mail:   m,
		Signer: &TokenSigner{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL},
		Cfg:    cfg,
		Now:    time.Now,
	}
}

type SignUpInput struct {
	Name            string
	Email           string
	Phone           string
	Photo           string
	Password        string
	PasswordConfirm string
}

// Session bundles what login-like operations hand back to the HTTP layer.
type Session struct {
	User      *domain.User
	Token     string
	StoreSlug string
}

// SignUp creates the account, issues a verification token and emails the
// raw value. If the email cannot be delivered the token fields are rolled
// back so no stale unusable state lingers.
func (s *AuthService) SignUp(in SignUpInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.InvalidInput("name, email and password are required")
	}
	if !validate.Password(in.Password) {
		return nil, domain.InvalidInput("password must be between 8 and 72 characters")
	}
	if in.Password != in.PasswordConfirm {
		return nil, domain.InvalidInput("passwords are not the same")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	photo := in.Photo
	if photo == "" {
		photo = "default.jpg"
	}
	u := &domain.User{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Photo:  photo,
		Hash:   string(hash),
		Role:   domain.RoleStoreOwner,
		Active: true,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}

	raw, tokenHash := newOneTimeToken()
	now := s.Now()
	if err := s.Users.SetVerifyToken(u.ID, tokenHash, now.Add(s.Cfg.VerifyTokenTTL)); err != nil {
		return nil, err
	}

	verifyURL := s.Cfg.PublicURL + "/api/v1/auth/verify/" + raw
	body := "Welcome! Please verify your email by visiting: " + verifyURL +
		"\nThis link expires in 1 hour."
	if err := s.Mail.Send(u.Email, "Verify your email", body); err != nil {
		// compensating rollback: the issued token must not survive
		_ = s.Users.ClearVerifyToken(u.ID)
		return nil, domain.Dependency("error sending verification email, try again later")
	}

	return s.newSession(u, now)
}

// ResendVerification re-issues the verification token for an unverified user.
func (s *AuthService) ResendVerification(actor *domain.User) error {
	if actor.EmailVerified {
		return domain.InvalidInput("email is already verified")
	}
	raw, tokenHash := newOneTimeToken()
	now := s.Now()
	if err := s.Users.SetVerifyToken(actor.ID, tokenHash, now.Add(s.Cfg.VerifyTokenTTL)); err != nil {
		return err
	}
	verifyURL := s.Cfg.PublicURL + "/api/v1/auth/verify/" + raw
	if err := s.Mail.Send(actor.Email, "Verify your email",
		"Please verify your email by visiting: "+verifyURL); err != nil {
		_ = s.Users.ClearVerifyToken(actor.ID)
		return domain.Dependency("error sending verification email, try again later")
	}
	return nil
}

func (s *AuthService) VerifyEmail(rawToken string) (*Session, error) {
	u, err := s.Users.ByVerifyTokenHash(hashToken(rawToken), s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Users.MarkVerified(u.ID); err != nil {
		return nil, err
	}
	u.EmailVerified = true
	return s.newSession(u, s.Now())
}

func (s *AuthService) Login(email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.InvalidInput("please provide an email and password")
	}
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, domain.Unauthorized("incorrect email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, domain.Unauthorized("incorrect email or password")
	}
	if !u.Active {
		return nil, domain.Forbidden("this account has been deactivated")
	}
	return s.newSession(u, s.Now())
}

// CurrentUser resolves a bearer token to a live user. Tokens issued before
// the last password change are rejected.
func (s *AuthService) CurrentUser(token string) (*domain.User, error) {
	userID, issuedAt, err := s.Signer.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(userID)
	if err != nil {
		return nil, domain.Unauthorized("user no longer exists")
	}
	if !u.Active {
		return nil, domain.Forbidden("this account has been deactivated")
	}
	if u.PasswordChangedAt != "" {
		changed, perr := time.Parse(time.RFC3339, u.PasswordChangedAt)
		if perr == nil && issuedAt.Before(changed) {
			return nil, domain.Unauthorized("password changed recently, please log in again")
		}
	}
	return u, nil
}

func (s *AuthService) UpdatePassword(actor *domain.User, current, newPass, confirm string) (*Session, error) {
	if current == "" || newPass == "" || confirm == "" {
		return nil, domain.InvalidInput("provide current password, new password and confirmation")
	}
	if current == newPass {
		return nil, domain.InvalidInput("new password must differ from the current one")
	}
	if newPass != confirm {
		return nil, domain.InvalidInput("passwords are not the same")
	}
	if !validate.Password(newPass) {
		return nil, domain.InvalidInput("password must be between 8 and 72 characters")
	}
	if bcrypt.CompareHashAndPassword([]byte(actor.Hash), []byte(current)) != nil {
		return nil, domain.Unauthorized("your current password is wrong")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), s.Cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if err := s.Users.UpdatePassword(actor.ID, string(hash), now); err != nil {
		return nil, err
	}
	// re-issue so the fresh token postdates password_changed_at
	return s.newSession(actor, now.Add(time.Second))
}

// ForgotPassword issues a reset token and emails the raw value. The outward
// response is identical whether or not the account exists, so callers learn
// nothing about registered emails. A failed send rolls the token back.
func (s *AuthService) ForgotPassword(email string) error {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil // deliberately indistinguishable from success
	}

	raw, tokenHash := newOneTimeToken()
	now := s.Now()
	if err := s.Users.SetResetToken(u.ID, tokenHash, now.Add(s.Cfg.ResetTokenTTL)); err != nil {
		return err
	}

	resetURL := s.Cfg.PublicURL + "/api/v1/auth/reset-password/" + raw
	body := "Forgot your password? Submit a PATCH request with your new password to: " + resetURL +
		"\nIf you didn't request this, ignore this email."
	if err := s.Mail.Send(u.Email, "Your password reset token (valid for 10 min)", body); err != nil {
		_ = s.Users.ClearResetToken(u.ID)
		return domain.Dependency("there was an error sending the email, try again later")
	}
	return nil
}

func (s *AuthService) ResetPassword(rawToken, newPass, confirm string) (*Session, error) {
	if newPass != confirm {
		return nil, domain.InvalidInput("passwords are not the same")
	}
	if !validate.Password(newPass) {
		return nil, domain.InvalidInput("password must be between 8 and 72 characters")
	}
	u, err := s.Users.ByResetTokenHash(hashToken(rawToken), s.Now())
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), s.Cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if err := s.Users.UpdatePassword(u.ID, string(hash), now); err != nil {
		return nil, err
	}
	if err := s.Users.ClearResetToken(u.ID); err != nil {
		return nil, err
	}
	return s.newSession(u, now.Add(time.Second))
}

// UpdateProfile applies the allow-listed profile fields for the actor.
// Password changes are rejected here; they go through UpdatePassword.
func (s *AuthService) UpdateProfile(actor *domain.User, fields map[string]any) (*domain.User, error) {
	for _, k := range []string{"password", "passwordConfirm", "role", "active"} {
		if _, ok := fields[k]; ok {
			return nil, domain.InvalidInput("this route is not for " + k + " updates")
		}
	}
	allowed := map[string]any{}
	for _, k := range []string{"name", "email", "phone", "photo"} {
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
	if err := s.Users.UpdateProfile(actor.ID, allowed); err != nil {
		return nil, err
	}
	return s.Users.ByID(actor.ID)
}

// newSession signs a token and resolves the actor's store slug, which the
// frontend uses to route straight to the owner dashboard.
func (s *AuthService) newSession(u *domain.User, now time.Time) (*Session, error) {
	token, err := s.Signer.Sign(u.ID, now)
	if err != nil {
		return nil, err
	}
	slug := ""
	if st, err := s.Stores.ByOwner(u.ID); err == nil {
		slug = st.Slug
	}
	return &Session{User: u, Token: token, StoreSlug: slug}, nil
}
