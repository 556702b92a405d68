package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal/constants"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/order/internal/controller"
	"github.com/Alturino/marketplace/order/internal/service"
)

type CartClearer = service.CartClearer

func AttachOrderService(c context.Context, protected *mux.Router, store repository.Store, cart CartClearer) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppOrder).
		Str(log.KeyTag, "main AttachOrderService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing order service").Logger()
	logger.Info().Msg("initializing order service")
	orderService := service.NewOrderService(store, cart)
	logger.Info().Msg("initialized order service")

	logger = logger.With().Str(log.KeyProcess, "initializing order controller").Logger()
	logger.Info().Msg("initializing order controller")
	controller.AttachOrderController(protected, orderService)
	logger.Info().Msg("initialized order controller")
}
