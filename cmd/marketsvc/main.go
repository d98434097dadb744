package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mkrupp/storefront/internal/infra/config"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/product"
	"github.com/mkrupp/storefront/internal/repo/storage"
	"github.com/mkrupp/storefront/internal/repo/user"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/ordersvc"
)

const (
	appName = "storefront"
	svcName = "marketsvc"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig      `envPrefix:"LOG_"`
	Auth  authsvc.AuthConfig        `envPrefix:"AUTH_"`
	HTTP  http.HTTPTransportConfig  `envPrefix:"HTTP_"`
	Store storage.SQLiteStoreConfig `envPrefix:"STORE_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.marketsvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	store, err := storage.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	var (
		users    = user.NewSQLiteUserRepository(store)
		products = product.NewSQLiteProductRepository(store)
		orders   = order.NewSQLiteOrderRepository(store)
	)

	authSvc, err := authsvc.NewAuthService(users, cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	catalogSvc := catalogsvc.NewCatalogService(products, orders)
	orderSvc := ordersvc.NewOrderService(products, orders)

	router := mux.NewRouter()
	authsvc.NewHTTPTransport(authSvc).RegisterRoutes(router)
	catalogsvc.NewHTTPTransport(catalogSvc, authSvc).RegisterRoutes(router)
	ordersvc.NewHTTPTransport(orderSvc, authSvc).RegisterRoutes(router)

	if err := http.ListenAndServe(ctx, router, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
