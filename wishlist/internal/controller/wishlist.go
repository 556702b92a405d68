package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/marketplace/internal"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
	"github.com/Alturino/marketplace/wishlist/internal/otel"
	"github.com/Alturino/marketplace/wishlist/internal/service"
	"github.com/Alturino/marketplace/wishlist/pkg/request"
	"github.com/Alturino/marketplace/wishlist/pkg/response"
)

type WishlistController struct {
	service  *service.WishlistService
	validate *validator.Validate
}

// AttachWishlistController expects protected to already require authentication.
func AttachWishlistController(protected *mux.Router, service *service.WishlistService) {
	controller := WishlistController{
		service:  service,
		validate: validate.New(),
	}

	router := protected.PathPrefix("/wishlist").Subrouter()
	router.HandleFunc("", controller.GetWishlist).Methods(http.MethodGet)
	router.HandleFunc("/items", controller.AddWishlistItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}", controller.GetWishlistItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id}", controller.RemoveWishlistItem).Methods(http.MethodDelete)
}

// caller resolves the authenticated user and, when withId is set, the wishlist item id from the path.
func caller(
	w http.ResponseWriter,
	r *http.Request,
	span trace.Span,
	logger zerolog.Logger,
	withId bool,
) (uuid.UUID, uuid.UUID, zerolog.Logger, bool) {
	c := r.Context()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
	logger.Info().Msg("getting userId from jwtToken")
	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return uuid.Nil, uuid.Nil, logger, false
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
	logger.Info().Msgf("got userId=%s", userId.String())
	if !withId {
		return userId, uuid.Nil, logger, true
	}

	logger = logger.With().Str(log.KeyProcess, "validating path values").Logger()
	logger.Info().Msg("validating path values")
	value := mux.Vars(r)["id"]
	id, err := uuid.Parse(value)
	if err != nil {
		err = fmt.Errorf("failed validating id=%s with error=%w", value, inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return uuid.Nil, uuid.Nil, logger, false
	}
	logger = logger.With().Str(log.KeyWishlistItemID, id.String()).Logger()
	logger.Info().Msg("validated path values")
	return userId, id, logger, true
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message response.Message, err error) {
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
		"statusCode": status,
		"message":    message.Message,
		"data":       message,
	})
}

func (ctrl WishlistController) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController AddWishlistItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController AddWishlistItem").Logger()
	userId, _, logger, ok := caller(w, r.WithContext(c), span, logger, false)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	reqBody := request.AddWishlistItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	if err := ctrl.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "adding wishlist item").Logger()
	logger.Info().Msg("adding wishlist item")
	c = logger.WithContext(c)
	message, err := ctrl.service.AddWishlistItem(c, userId, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(message.Message)
	} else {
		logger.Info().Msg("added wishlist item")
	}
	writeMessage(w, r.WithContext(c), http.StatusCreated, message, err)
}

func (ctrl WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController GetWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController GetWishlist").Logger()
	userId, _, logger, ok := caller(w, r.WithContext(c), span, logger, false)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding wishlist items").Logger()
	logger.Info().Msg("finding wishlist items")
	c = logger.WithContext(c)
	items, err := ctrl.service.GetWishlistItemsByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding wishlist items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found wishlist items")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("found %d wishlist items", len(items)),
		"data":       items,
	})
}

func (ctrl WishlistController) GetWishlistItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController GetWishlistItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController GetWishlistItem").Logger()
	userId, id, logger, ok := caller(w, r.WithContext(c), span, logger, true)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding wishlist item").Logger()
	logger.Info().Msg("finding wishlist item")
	c = logger.WithContext(c)
	found, err := ctrl.service.GetWishlistItemById(c, userId, id)
	if err != nil {
		err = fmt.Errorf("failed finding wishlist item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found wishlist item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("wishlist item with id=%s found", id),
		"data":       found,
	})
}

func (ctrl WishlistController) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController RemoveWishlistItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WishlistController RemoveWishlistItem").Logger()
	userId, id, logger, ok := caller(w, r.WithContext(c), span, logger, true)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing wishlist item").Logger()
	logger.Info().Msg("removing wishlist item")
	c = logger.WithContext(c)
	message, err := ctrl.service.RemoveWishlistItem(c, userId, id)
	if err != nil {
		logger.Error().Err(err).Msg(message.Message)
	} else {
		logger.Info().Msg("removed wishlist item")
	}
	writeMessage(w, r.WithContext(c), http.StatusOK, message, err)
}
