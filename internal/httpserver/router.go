package httpserver

import (
	"errors"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/logger"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/cartmerge"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
)

// Deps holds the services the router hands requests to.
type Deps struct {
	Auth      *auth.Manager
	Catalog   *catalogsvc.Service
	Carts     *cartsvc.Store
	Merge     *cartmerge.Service
	Checkout  *checkoutsvc.Service
	Customers *customersvc.Service

	// CORSAllowOrigins lists allowed origins; "*" or empty allows all.
	CORSAllowOrigins []string
}

func (d Deps) validate() error {
	if d.Auth == nil {
		return errors.New("httpserver: Auth manager is required")
	}
	if d.Catalog == nil {
		return errors.New("httpserver: Catalog service is required")
	}
	if d.Carts == nil {
		return errors.New("httpserver: Carts store is required")
	}
	if d.Merge == nil {
		return errors.New("httpserver: Merge service is required")
	}
	if d.Checkout == nil {
		return errors.New("httpserver: Checkout service is required")
	}
	if d.Customers == nil {
		return errors.New("httpserver: Customers service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(log), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(deps.CORSAllowOrigins) == 0 || deps.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.CORSAllowOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: log}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	router.POST("/sessions/anonymous", h.anonymousSession)
	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)
	router.POST("/auth/refresh", h.refresh)

	authed := router.Group("/", authMiddleware(deps.Auth))
	{
		authed.GET("/cart", h.getCart)
		authed.POST("/cart/items", h.addCartItem)
		authed.PATCH("/cart/items/:id", h.updateCartItem)
		authed.DELETE("/cart/items/:id", h.removeCartItem)
		authed.DELETE("/cart", h.clearCart)

		authed.POST("/checkout", h.checkout)
		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders/:id/payment/confirm", h.confirmPayment)
	}

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
