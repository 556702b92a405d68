package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
	"github.com/Alturino/marketplace/order/internal/otel"
	"github.com/Alturino/marketplace/order/internal/service"
	"github.com/Alturino/marketplace/order/pkg/request"
)

type OrderController struct {
	service  *service.OrderService
	validate *validator.Validate
}

func AttachOrderController(mux *mux.Router, service *service.OrderService) {
	controller := OrderController{
		service:  service,
		validate: validate.New(),
	}

	router := mux.PathPrefix("/orders").Subrouter()
	router.HandleFunc("", controller.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("", controller.GetOrdersByUserId).Methods(http.MethodGet)

	mux.HandleFunc("/sellers/{sellerId}/sold-items", controller.GetSoldItemsBySellerId).
		Methods(http.MethodGet)
}

func (ctrl OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController CreateOrder").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
	logger.Info().Msg("getting userId from jwtToken")
	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
	logger.Info().Msgf("got userId=%s", userId.String())

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.CreateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := ctrl.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyOrder, reqBody).Logger()
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	c = logger.WithContext(c)
	result, err := ctrl.service.CreateOrder(c, userId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCode(err),
			"message":    result.Message,
			"data":       result,
		})
		return
	}
	logger.Info().Str(log.KeyOrderID, result.Order.ID.String()).Msg("created order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    result.Message,
		"data":       result,
	})
}

func (ctrl OrderController) GetOrdersByUserId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController GetOrdersByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController GetOrdersByUserId").
		Str(log.KeyProcess, "getting userId from jwtToken").
		Logger()

	logger.Info().Msg("getting userId from jwtToken")
	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := ctrl.service.GetOrdersByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrdersCount, len(orders)).Msg("found orders")

	message := "successfully found orders"
	if orders == nil {
		message = "no orders found"
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]interface{}{
			"orders": orders,
		},
	})
}

func (ctrl OrderController) GetSoldItemsBySellerId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController GetSoldItemsBySellerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController GetSoldItemsBySellerId").
		Str(log.KeyProcess, "validating sellerId").
		Logger()

	logger.Info().Msg("validating sellerId")
	pathValues := mux.Vars(r)
	sellerId, err := uuid.Parse(pathValues["sellerId"])
	if err != nil {
		err = fmt.Errorf("failed validating sellerId=%s with error=%w", pathValues["sellerId"], inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeySellerID, sellerId.String()).
		Str(log.KeyProcess, "finding sold items").
		Logger()
	logger.Info().Msg("validated sellerId")

	logger.Info().Msg("finding sold items")
	c = logger.WithContext(c)
	sold, err := ctrl.service.GetSoldItemsBySellerId(c, sellerId)
	if err != nil {
		err = fmt.Errorf("failed finding sold items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyItems, len(sold)).Msg("found sold items")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found sold items",
		"data": map[string]interface{}{
			"soldItems": sold,
		},
	})
}
