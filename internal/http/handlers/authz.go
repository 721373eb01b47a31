package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/services"
)

// bearerToken extracts the session token from the Authorization header or
// the jwt cookie (mobile clients send the header, browsers the cookie).
func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Cookies("jwt")
}

// RequireAuth resolves the actor and stores it in Locals("user").
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return fail(c, "auth.missing", domain.Unauthorized("you are not logged in"))
		}
		u, err := auth.CurrentUser(tok)
		if err != nil {
			return fail(c, "auth.invalid", err)
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

// RequireAdmin authenticates and gates on the admin role.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return fail(c, "auth.missing", domain.Unauthorized("you are not logged in"))
		}
		u, err := auth.CurrentUser(tok)
		if err != nil {
			return fail(c, "auth.invalid", err)
		}
		if !u.IsAdmin() {
			return fail(c, "access.denied.admin", domain.Forbidden("you are not allowed to do that"))
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

func actor(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
