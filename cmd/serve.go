package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartCmd "github.com/Alturino/marketplace/cart/cmd"
	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/infra"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/middleware"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	inventoryCmd "github.com/Alturino/marketplace/inventory/cmd"
	"github.com/Alturino/marketplace/notification/pkg/mail"
	orderCmd "github.com/Alturino/marketplace/order/cmd"
	sellerCmd "github.com/Alturino/marketplace/seller/cmd"
	userCmd "github.com/Alturino/marketplace/user/cmd"
	wishlistCmd "github.com/Alturino/marketplace/wishlist/cmd"
)

const shutdownTimeout = 15 * time.Second

func runServer(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "main runServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppMarketplace).
		Str(log.KeyTag, "main runServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.ConfigFileName)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppMarketplace, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down otel").Logger()
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
		defer cancel()
		if err := inOtel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing database").Logger()
		logger.Info().Msg("closing database")
		db.Close()
		logger.Info().Msg("closed database")
	}()
	store := repository.NewStore(db)
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing cache").Logger()
		logger.Info().Msg("closing cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing mailer").Logger()
	logger.Info().Msg("initializing mailer")
	mailer, err := mail.NewMailer(cfg.Mail)
	if err != nil {
		err = fmt.Errorf("failed initializing mailer with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized mailer")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppMarketplace), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", otelhttp.NewHandler(promhttp.Handler(), "metrics")).Methods(http.MethodGet)
	protected := router.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Application.SecretKey))
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "attaching services").Logger()
	logger.Info().Msg("attaching services")
	c = logger.WithContext(c)
	userCmd.AttachUserService(c, router, protected, store, mailer, cfg)
	inventoryCmd.AttachInventoryService(c, router, protected, store)
	cartService := cartCmd.AttachCartService(c, protected, store, cache, cfg.Cache)
	orderCmd.AttachOrderService(c, protected, store, cartService)
	sellerCmd.AttachSellerService(c, protected, store, cfg.Application.Location())
	wishlistCmd.AttachWishlistService(c, protected, store)
	logger.Info().Msg("attached services")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	serverErr := make(chan error, 1)
	go func() {
		lg := logger.With().Str(log.KeyProcess, "start server").Logger()
		lg.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("encounter error=%w while running server", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
	case <-c.Done():
		logger.Info().Msg("received interuption signal shutting down")
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down server").Logger()
	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown server")
}
