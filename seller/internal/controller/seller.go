package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
	"github.com/Alturino/marketplace/seller/internal/otel"
	"github.com/Alturino/marketplace/seller/internal/service"
	"github.com/Alturino/marketplace/seller/pkg/request"
)

type SellerController struct {
	service  *service.SellerService
	validate *validator.Validate
}

func AttachSellerController(mux *mux.Router, service *service.SellerService) {
	controller := SellerController{
		service:  service,
		validate: validate.New(),
	}

	router := mux.PathPrefix("/sellers/{sellerId}").Subrouter()
	router.HandleFunc("/statistics", controller.GetSellerStatistics).Methods(http.MethodGet)
	router.HandleFunc("/analytics", controller.GetSellerSalesAnalytics).Methods(http.MethodGet)
	router.HandleFunc("/top-products", controller.GetTopSellingProducts).Methods(http.MethodGet)
	router.HandleFunc("/sales-by-category", controller.GetSalesByCategory).Methods(http.MethodGet)
	router.HandleFunc("/revenue", controller.GetRevenueOverTime).Methods(http.MethodGet)
}

// parseAnalytics reads the seller id from the path and the filters from the query string.
func (ctrl SellerController) parseAnalytics(r *http.Request) (request.Analytics, error) {
	pathValues := mux.Vars(r)
	sellerId, err := uuid.Parse(pathValues["sellerId"])
	if err != nil {
		return request.Analytics{}, fmt.Errorf(
			"failed validating sellerId=%s with error=%w",
			pathValues["sellerId"],
			inErrors.InvalidInput(err),
		)
	}

	query := r.URL.Query()
	param := request.Analytics{
		SellerId:  sellerId,
		TimeFrame: query.Get("timeFrame"),
		Metric:    query.Get("metric"),
		GroupBy:   query.Get("groupBy"),
	}
	if limit := query.Get("limit"); limit != "" {
		param.Limit, err = strconv.Atoi(limit)
		if err != nil {
			return request.Analytics{}, fmt.Errorf(
				"failed parsing limit=%s with error=%w",
				limit,
				inErrors.InvalidInput(err),
			)
		}
	}

	if err := ctrl.validate.StructCtx(r.Context(), param); err != nil {
		return request.Analytics{}, fmt.Errorf("failed validating query with error=%w", inErrors.InvalidInput(err))
	}
	return param, nil
}

// handle runs the shared parse, compute and respond steps of every analytics endpoint.
func (ctrl SellerController) handle(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	message string,
	compute func(r *http.Request, param request.Analytics) (interface{}, error),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeyProcess, "parsing analytics query").
		Any(log.KeyQueryValues, r.URL.Query()).
		Logger()

	logger.Info().Msg("parsing analytics query")
	param, err := ctrl.parseAnalytics(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyAnalytics, param).Logger()
	logger.Info().Msg("parsed analytics query")

	logger = logger.With().Str(log.KeyProcess, "computing analytics").Logger()
	logger.Info().Msg("computing analytics")
	c = logger.WithContext(c)
	data, err := compute(r.WithContext(c), param)
	if err != nil {
		err = fmt.Errorf("failed computing analytics with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("computed analytics")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data":       data,
	})
}

func (ctrl SellerController) GetSellerSalesAnalytics(w http.ResponseWriter, r *http.Request) {
	ctrl.handle(w, r, "SellerController GetSellerSalesAnalytics", "successfully computed sales analytics",
		func(r *http.Request, param request.Analytics) (interface{}, error) {
			return ctrl.service.GetSellerSalesAnalytics(r.Context(), param)
		},
	)
}

func (ctrl SellerController) GetTopSellingProducts(w http.ResponseWriter, r *http.Request) {
	ctrl.handle(w, r, "SellerController GetTopSellingProducts", "successfully found top selling products",
		func(r *http.Request, param request.Analytics) (interface{}, error) {
			products, err := ctrl.service.GetTopSellingProducts(r.Context(), param)
			return map[string]interface{}{"products": products}, err
		},
	)
}

func (ctrl SellerController) GetSalesByCategory(w http.ResponseWriter, r *http.Request) {
	ctrl.handle(w, r, "SellerController GetSalesByCategory", "successfully computed sales by category",
		func(r *http.Request, param request.Analytics) (interface{}, error) {
			return ctrl.service.GetSalesByCategory(r.Context(), param)
		},
	)
}

func (ctrl SellerController) GetRevenueOverTime(w http.ResponseWriter, r *http.Request) {
	ctrl.handle(w, r, "SellerController GetRevenueOverTime", "successfully computed revenue over time",
		func(r *http.Request, param request.Analytics) (interface{}, error) {
			return ctrl.service.GetRevenueOverTime(r.Context(), param)
		},
	)
}

func (ctrl SellerController) GetSellerStatistics(w http.ResponseWriter, r *http.Request) {
	ctrl.handle(w, r, "SellerController GetSellerStatistics", "successfully computed seller statistics",
		func(r *http.Request, param request.Analytics) (interface{}, error) {
			return ctrl.service.GetSellerStatistics(r.Context(), param.SellerId)
		},
	)
}
