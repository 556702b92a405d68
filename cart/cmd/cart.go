package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/cart/internal/cache"
	"github.com/Alturino/marketplace/cart/internal/controller"
	"github.com/Alturino/marketplace/cart/internal/service"
	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
)

// AttachCartService builds the cart engine and mounts its routes on the
// authenticated router.
func AttachCartService(
	c context.Context,
	protected *mux.Router,
	store repository.Store,
	client *redis.Client,
	cfg config.Cache,
) *service.CartService {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCart).
		Str(log.KeyTag, "main AttachCartService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	cartService := service.NewCartService(store, cache.NewRedisCache(client, cfg.TTL))
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(log.KeyProcess, "initializing cart controller").Logger()
	logger.Info().Msg("initializing cart controller")
	controller.AttachCartController(protected, cartService)
	logger.Info().Msg("initialized cart controller")

	return cartService
}
