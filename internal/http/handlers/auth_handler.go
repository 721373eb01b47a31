package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	Cfg  *config.Config
}

// setSession mirrors the bearer token into an HTTP-only cookie so browser
// clients don't have to manage the Authorization header themselves.
func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.Cfg.JWTTTL),
	})
}

func sessionBody(s *services.Session) fiber.Map {
	m := fiber.Map{"token": s.Token, "user": s.User}
	if s.StoreSlug != "" {
		m["storeSlug"] = s.StoreSlug
	}
	return m
}

type signUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phoneNumber"`
	Photo           string `json:"photo"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.signup", domain.InvalidInput("malformed request body"))
	}
	email, okEmail := validate.Email(req.Email)
	if !okEmail {
		return fail(c, "auth.signup", domain.InvalidInput("a valid email address is required"))
	}
	if req.Phone != "" {
		if _, ok := validate.Phone(req.Phone); !ok {
			return fail(c, "auth.signup", domain.InvalidInput("phone number looks invalid"))
		}
	}
	sess, err := h.Auth.SignUp(services.SignUpInput{
		Name:            req.Name,
		Email:           email,
		Phone:           req.Phone,
		Photo:           req.Photo,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return fail(c, "auth.signup", err)
	}
	h.setSession(c, sess.Token)
	applog.Audit(c, "auth.signup", map[string]any{"email": sess.User.Email})
	return ok(c, fiber.StatusCreated, sessionBody(sess))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.login", domain.InvalidInput("malformed request body"))
	}
	sess, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, "auth.login", err)
	}
	h.setSession(c, sess.Token)
	applog.Audit(c, "auth.login.success", map[string]any{"email": sess.User.Email})
	return ok(c, fiber.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return ok(c, fiber.StatusOK, nil)
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	sess, err := h.Auth.VerifyEmail(c.Params("token"))
	if err != nil {
		return fail(c, "auth.verify", err)
	}
	h.setSession(c, sess.Token)
	applog.Audit(c, "auth.verify", map[string]any{"email": sess.User.Email})
	return ok(c, fiber.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	if err := h.Auth.ResendVerification(actor(c)); err != nil {
		return fail(c, "auth.verify.resend", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "verification email sent"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.forgot", domain.InvalidInput("malformed request body"))
	}
	if err := h.Auth.ForgotPassword(req.Email); err != nil {
		return fail(c, "auth.forgot", err)
	}
	// same reply whether or not the address exists
	return ok(c, fiber.StatusOK, fiber.Map{"message": "if that account exists, a reset email is on its way"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.reset", domain.InvalidInput("malformed request body"))
	}
	sess, err := h.Auth.ResetPassword(c.Params("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return fail(c, "auth.reset", err)
	}
	h.setSession(c, sess.Token)
	applog.Audit(c, "auth.reset", map[string]any{"email": sess.User.Email})
	return ok(c, fiber.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		PasswordCurrent string `json:"passwordCurrent"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.password.update", domain.InvalidInput("malformed request body"))
	}
	sess, err := h.Auth.UpdatePassword(actor(c), req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return fail(c, "auth.password.update", err)
	}
	h.setSession(c, sess.Token)
	applog.Audit(c, "auth.password.update", nil)
	return ok(c, fiber.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, actor(c))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return fail(c, "auth.profile.update", domain.InvalidInput("malformed request body"))
	}
	u, err := h.Auth.UpdateProfile(actor(c), fields)
	if err != nil {
		return fail(c, "auth.profile.update", err)
	}
	applog.Audit(c, "auth.profile.update", nil)
	return ok(c, fiber.StatusOK, u)
}
