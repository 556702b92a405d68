package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/cart/internal/otel"
	"github.com/Alturino/marketplace/cart/internal/service"
	"github.com/Alturino/marketplace/cart/pkg/request"
	"github.com/Alturino/marketplace/cart/pkg/response"
	"github.com/Alturino/marketplace/internal"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
)

type CartController struct {
	service  *service.CartService
	validate *validator.Validate
}

// AttachCartController expects mux to already require authentication.
func AttachCartController(mux *mux.Router, service *service.CartService) {
	controller := CartController{
		service:  service,
		validate: validate.New(),
	}

	router := mux.PathPrefix("/carts").Subrouter()
	router.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.AddToCart).Methods(http.MethodPost)
	router.HandleFunc("/items/{type}/{itemId}", controller.RemoveFromCart).Methods(http.MethodDelete)
}

func writeMessage(w http.ResponseWriter, r *http.Request, message response.Message, err error) {
	c := r.Context()
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCode(err),
			"message":    message.Message,
		})
		return
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message.Message,
		"data":       message,
	})
}

func (ctrl CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController AddToCart").Logger()

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
	reqBody := request.AddToCart{}
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
	logger = logger.With().Object(log.KeyCartItem, reqBody).Logger()
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	message, err := ctrl.service.AddToCart(c, userId, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(message.Message)
	} else {
		logger.Info().Msg("added item to cart")
	}
	writeMessage(w, r.WithContext(c), message, err)
}

func (ctrl CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveFromCart").Logger()

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

	logger = logger.With().Str(log.KeyProcess, "validating path values").Logger()
	logger.Info().Msg("validating path values")
	pathValues := mux.Vars(r)
	logger = logger.With().Any(log.KeyPathValues, pathValues).Logger()
	itemId, err := uuid.Parse(pathValues["itemId"])
	if err != nil {
		err = fmt.Errorf("failed validating itemId=%s with error=%w", pathValues["itemId"], inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("validated path values")

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	c = logger.WithContext(c)
	message, err := ctrl.service.RemoveFromCart(
		c,
		userId,
		request.RemoveFromCart{ItemId: itemId, Type: pathValues["type"]},
	)
	if err != nil {
		logger.Error().Err(err).Msg(message.Message)
	} else {
		logger.Info().Msg("removed item from cart")
	}
	writeMessage(w, r.WithContext(c), message, err)
}

func (ctrl CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
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
		Str(log.KeyProcess, "deleting cart").
		Logger()

	logger.Info().Msg("deleting cart")
	c = logger.WithContext(c)
	message, err := ctrl.service.ClearCart(c, userId)
	if err != nil {
		logger.Error().Err(err).Msg(message.Message)
	} else {
		logger.Info().Msg("deleted cart")
	}
	writeMessage(w, r.WithContext(c), message, err)
}

func (ctrl CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
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
		Str(log.KeyProcess, "finding cart items").
		Logger()

	logger.Info().Msg("finding cart items")
	c = logger.WithContext(c)
	items, err := ctrl.service.GetAllCartItemsForUser(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("found cart items")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found cart items",
		"data": map[string]interface{}{
			"items": items,
		},
	})
}
