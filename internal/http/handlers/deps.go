package handlers

import (
	"storefront/internal/config"
	"storefront/internal/images"
	"storefront/internal/mail"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler     *AuthHandler
	StoreHandler    *StoreHandler
	ProductHandler  *ProductHandler
	PurchaseHandler *PurchaseHandler
	AdminHandler    *AdminHandler

	// Auth is exposed for route middleware wiring.
	Auth *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg *config.Config, m mail.Mailer) *Deps {
	userRepo := repos.NewUserRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	prodRepo := repos.NewProductRepo(db)
	purchRepo := repos.NewPurchaseRepo(db)

	authSvc := services.NewAuthService(userRepo, storeRepo, m, cfg)
	storeSvc := services.NewStoreService(storeRepo, prodRepo)
	prodSvc := services.NewProductService(storeRepo, prodRepo)
	purchSvc := services.NewPurchaseService(storeRepo, prodRepo, purchRepo)
	adminSvc := services.NewAdminService(userRepo, storeRepo, prodRepo, purchRepo, m, cfg)
	pipe := images.New(cfg.MediaDir)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: authSvc, Cfg: cfg},
		StoreHandler:    &StoreHandler{Stores: storeSvc, Images: pipe},
		ProductHandler:  &ProductHandler{Products: prodSvc, Images: pipe},
		PurchaseHandler: &PurchaseHandler{Purchases: purchSvc},
		AdminHandler:    &AdminHandler{Admin: adminSvc},
		Auth:            authSvc,
	}
}
