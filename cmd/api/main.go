package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	customerrepo "storefront/internal/repository/customer"
	"storefront/internal/repository/guestcart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/cartmerge"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	productRepo := productrepo.NewPostgres(dbpool, log)
	cartRepo := cartrepo.NewPostgres(dbpool, log)
	guestRepo := guestcart.NewRedis(redisClient, cfg.Redis.GuestCartTTL, log)
	orderRepo := orderrepo.NewPostgres(dbpool, log)
	customerRepo := customerrepo.NewPostgres(dbpool, log)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	calc := pricing.NewCalculatorWith(cfg.Pricing.FreeShippingThresholdCents, cfg.Pricing.FlatShippingFeeCents)
	jwtManager := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)

	catalogService := catalogsvc.New(productRepo)
	cartStore := cartsvc.New(cartRepo, cartsvc.NewGuestBackend(guestRepo), productRepo, calc, log)
	mergeService := cartmerge.New(guestRepo, cartStore, log)
	customerService := customersvc.New(customerRepo, tokenRepo, jwtManager, cfg.JWT.RefreshTTL)

	payments := payment.NewRegistry()
	payments.Register(domain.PaymentMethodCard, payment.NewStripe(cfg.Payment.StripeAPIKey, cfg.Payment.Currency))
	offline := payment.NewOffline()
	payments.Register(domain.PaymentMethodPix, offline)
	payments.Register(domain.PaymentMethodBankTransfer, offline)
	payments.Register(domain.PaymentMethodOnDelivery, offline)

	checkoutService := checkoutsvc.New(cartStore, orderRepo, payments, calc, cfg.Pricing.PixDiscountPercent, log)

	srv, err := httpserver.New(cfg.HTTP.Addr, log, dbpool, httpserver.Deps{
		Auth:             jwtManager,
		Catalog:          catalogService,
		Carts:            cartStore,
		Merge:            mergeService,
		Checkout:         checkoutService,
		Customers:        customerService,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
	})
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}
