package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/mail"
	"storefront/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	mailer := &mail.SMTP{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	}

	deps := handlers.NewDeps(db, &cfg, mailer)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "something went wrong, please try again",
			})
		},
	})
	// Body size guard; image uploads are the largest payloads we accept.
	app.Server().MaxRequestBodySize = 10 << 20 // 10 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": "fail", "message": "too many requests, retry soon"})
		},
	}))

	// ---------- Media ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /media -> %s", mediaDir)

	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Routes ----------
	requireAuth := handlers.RequireAuth(deps.Auth)
	requireAdmin := handlers.RequireAdmin(deps.Auth)

	api := app.Group("/api/v1")

	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": "fail", "message": "too many attempts, please try again later"})
		},
	})

	auth := api.Group("/auth")
	auth.Post("/signup", deps.AuthHandler.SignUp)
	auth.Post("/login", loginLimiter, deps.AuthHandler.Login)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/verify/:token", deps.AuthHandler.VerifyEmail)
	auth.Post("/verify/resend", requireAuth, deps.AuthHandler.ResendVerification)
	auth.Post("/forgot-password", loginLimiter, deps.AuthHandler.ForgotPassword)
	auth.Patch("/reset-password/:token", deps.AuthHandler.ResetPassword)
	auth.Patch("/update-password", requireAuth, deps.AuthHandler.UpdatePassword)
	auth.Get("/me", requireAuth, deps.AuthHandler.Me)
	auth.Patch("/me", requireAuth, deps.AuthHandler.UpdateMe)

	stores := api.Group("/stores")
	stores.Post("/", requireAuth, deps.StoreHandler.Create)
	stores.Get("/", requireAdmin, deps.StoreHandler.List)
	stores.Get("/my", requireAuth, deps.StoreHandler.Mine)
	stores.Get("/:slug", deps.StoreHandler.BySlug)
	stores.Patch("/:id", requireAuth, deps.StoreHandler.Update)
	stores.Delete("/:id", requireAuth, deps.StoreHandler.Delete)
	stores.Post("/:id/logo", requireAuth, deps.StoreHandler.UploadLogo)
	stores.Post("/:id/banners", requireAuth, deps.StoreHandler.AddBanner)
	stores.Delete("/:id/banners/:bannerId", requireAuth, deps.StoreHandler.RemoveBanner)

	// Catalog and checkout hang off the store they belong to.
	stores.Post("/:storeId/products", requireAuth, deps.ProductHandler.Create)
	stores.Get("/:storeId/products", deps.ProductHandler.List)
	stores.Post("/:slug/purchases", deps.PurchaseHandler.Create)
	stores.Get("/:slug/purchases", requireAuth, deps.PurchaseHandler.ListByStore)

	products := api.Group("/products")
	products.Get("/:id", deps.ProductHandler.Get)
	products.Patch("/:id", requireAuth, deps.ProductHandler.Update)
	products.Delete("/:id", requireAuth, deps.ProductHandler.Delete)
	products.Post("/:id/images", requireAuth, deps.ProductHandler.UploadImages)

	purchases := api.Group("/purchases", requireAuth)
	purchases.Get("/:id", deps.PurchaseHandler.Get)
	purchases.Patch("/:id/status", deps.PurchaseHandler.UpdateStatus)
	purchases.Delete("/:id", deps.PurchaseHandler.Delete)

	admin := api.Group("/admin", requireAdmin)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Get("/users/:id", deps.AdminHandler.GetUser)
	admin.Patch("/users/:id", deps.AdminHandler.UpdateUser)
	admin.Delete("/users/:id", deps.AdminHandler.DeleteUser)
	admin.Post("/users/:id/deactivate", deps.AdminHandler.DeactivateUser)
	admin.Post("/users/:id/activate", deps.AdminHandler.ActivateUser)
	admin.Post("/users/:id/reset-password", deps.AdminHandler.ForcePasswordReset)
	admin.Get("/statistics", deps.AdminHandler.Statistics)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "fail", "message": "route not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
