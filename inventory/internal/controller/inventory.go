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
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
	"github.com/Alturino/marketplace/inventory/internal/otel"
	"github.com/Alturino/marketplace/inventory/internal/service"
	"github.com/Alturino/marketplace/inventory/pkg/request"
)

type InventoryController struct {
	service  *service.InventoryService
	validate *validator.Validate
}

// AttachInventoryController registers the catalogue reads on public and
// every mutation on protected.
func AttachInventoryController(public *mux.Router, protected *mux.Router, service *service.InventoryService) {
	controller := InventoryController{
		service:  service,
		validate: validate.New(),
	}

	items := public.PathPrefix("/items").Subrouter()
	items.HandleFunc("/{type}", controller.FindItems).Methods(http.MethodGet)
	items.HandleFunc("/{type}/{itemId}", controller.FindItemById).Methods(http.MethodGet)
	public.HandleFunc("/sellers/{sellerId}/items", controller.FindItemsBySellerId).Methods(http.MethodGet)

	mutations := protected.PathPrefix("/items").Subrouter()
	mutations.HandleFunc("/{type}", controller.Upload).Methods(http.MethodPost)
	mutations.HandleFunc("/{type}/{itemId}/reviews", controller.AddReview).Methods(http.MethodPost)
	mutations.HandleFunc("/{type}/{itemId}/reviews/{reviewer}", controller.UpdateReview).Methods(http.MethodPut)
	mutations.HandleFunc("/{type}/{itemId}/reviews/{reviewer}", controller.DeleteReview).Methods(http.MethodDelete)
}

func pathItem(r *http.Request) (item.Type, uuid.UUID, error) {
	pathValues := mux.Vars(r)
	t, err := item.ParseType(pathValues["type"])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed parsing type with error=%w", err)
	}
	id, err := uuid.Parse(pathValues["itemId"])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf(
			"failed validating itemId=%s with error=%w",
			pathValues["itemId"],
			inErrors.InvalidInput(err),
		)
	}
	return t, id, nil
}

func (ctrl InventoryController) Upload(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "InventoryController Upload")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "InventoryController Upload").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
	logger.Info().Msg("getting userId from jwtToken")
	sellerId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeySellerID, sellerId.String()).Logger()
	logger.Info().Msgf("got sellerId=%s", sellerId.String())

	logger = logger.With().Str(log.KeyProcess, "parsing item type").Logger()
	logger.Info().Msg("parsing item type")
	t, err := item.ParseType(mux.Vars(r)["type"])
	if err != nil {
		err = fmt.Errorf("failed parsing item type with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyItemType, t.String()).Logger()
	logger.Info().Msg("parsed item type")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.UploadItem{}
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
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "uploading item").Logger()
	logger.Info().Msg("uploading item")
	c = logger.WithContext(c)
	result, err := ctrl.service.Upload(c, t, sellerId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed uploading item with error=%w", err)
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
	logger.Info().Msg("uploaded item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    result.Message,
		"data":       result,
	})
}

func (ctrl InventoryController) FindItems(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "InventoryController FindItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryController FindItems").
		Str(log.KeyProcess, "parsing item type").
		Logger()

	logger.Info().Msg("parsing item type")
	t, err := item.ParseType(mux.Vars(r)["type"])
	if err != nil {
		err = fmt.Errorf("failed parsing item type with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyItemType, t.String()).
		Str(log.KeyProcess, "finding items").
		Logger()

	logger.Info().Msg("finding items")
	c = logger.WithContext(c)
	items, err := ctrl.service.FindItems(c, t)
	if err != nil {
		err = fmt.Errorf("failed finding items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyItems, len(items)).Msg("found items")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("successfully found %s items", t),
		"data": map[string]interface{}{
			"items": items,
		},
	})
}

func (ctrl InventoryController) FindItemById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "InventoryController FindItemById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryController FindItemById").
		Str(log.KeyProcess, "validating path values").
		Any(log.KeyPathValues, mux.Vars(r)).
		Logger()

	logger.Info().Msg("validating path values")
	t, id, err := pathItem(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProcess, "finding item by id").Logger()

	logger.Info().Msg("finding item by id")
	c = logger.WithContext(c)
	found, err := ctrl.service.FindItemById(c, t, id)
	if err != nil {
		err = fmt.Errorf("failed finding item by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found item by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("%s found", t.Label()),
		"data": map[string]interface{}{
			"item": found,
		},
	})
}

func (ctrl InventoryController) FindItemsBySellerId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "InventoryController FindItemsBySellerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryController FindItemsBySellerId").
		Str(log.KeyProcess, "validating sellerId").
		Logger()

	logger.Info().Msg("validating sellerId")
	sellerId, err := uuid.Parse(mux.Vars(r)["sellerId"])
	if err != nil {
		err = fmt.Errorf("failed validating sellerId with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeySellerID, sellerId.String()).
		Str(log.KeyProcess, "finding items by sellerId").
		Logger()

	logger.Info().Msg("finding items by sellerId")
	c = logger.WithContext(c)
	items, err := ctrl.service.FindItemsBySellerId(c, sellerId)
	if err != nil {
		err = fmt.Errorf("failed finding items by sellerId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyItems, len(items)).Msg("found items by sellerId")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found seller items",
		"data": map[string]interface{}{
			"items": items,
		},
	})
}

func (ctrl InventoryController) AddReview(w http.ResponseWriter, r *http.Request) {
	ctrl.review(w, r, "InventoryController AddReview", true)
}

func (ctrl InventoryController) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctrl.review(w, r, "InventoryController UpdateReview", true)
}

func (ctrl InventoryController) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctrl.review(w, r, "InventoryController DeleteReview", false)
}

// review serves the three review mutations. The reviewer path value, when
// present, selects the review to update or delete.
func (ctrl InventoryController) review(w http.ResponseWriter, r *http.Request, tag string, hasBody bool) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	pathValues := mux.Vars(r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeyProcess, "validating path values").
		Any(log.KeyPathValues, pathValues).
		Logger()

	logger.Info().Msg("validating path values")
	t, id, err := pathItem(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	reviewer, byReviewer := pathValues["reviewer"]
	logger.Info().Msg("validated path values")

	reqBody := request.Review{}
	if hasBody {
		logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
		logger.Info().Msg("decoding request body")
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			err = fmt.Errorf("failed decoding request body with error=%w", inErrors.InvalidInput(err))
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		if byReviewer {
			reqBody.Reviewer = reviewer
		}
		if err := ctrl.validate.StructCtx(c, reqBody); err != nil {
			err = fmt.Errorf("failed validating request body with error=%w", inErrors.InvalidInput(err))
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
		logger = logger.With().Object(log.KeyReviewer, reqBody).Logger()
		logger.Info().Msg("decoded request body")
	}

	logger = logger.With().Str(log.KeyProcess, "updating reviews").Logger()
	logger.Info().Msg("updating reviews")
	c = logger.WithContext(c)
	var result interface{}
	switch {
	case !hasBody:
		result, err = ctrl.service.DeleteReview(c, t, id, reviewer)
	case byReviewer:
		result, err = ctrl.service.UpdateReview(c, t, id, reviewer, reqBody)
	default:
		result, err = ctrl.service.AddReview(c, t, id, reqBody)
	}
	if err != nil {
		err = fmt.Errorf("failed updating reviews with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated reviews")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated reviews",
		"data": map[string]interface{}{
			"item": result,
		},
	})
}
