package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJsonResponse").Logger()

	w.Header().Set(HeaderContentType, HeaderValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"].(int); ok {
		w.WriteHeader(v)
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

// WriteErrorResponse writes the failed envelope with the status code mapped from err.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": StatusCode(err),
		"message":    err.Error(),
	})
}

func StatusCode(err error) int {
	switch kind := inErrors.Kind(err); {
	case errors.Is(kind, inErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, inErrors.ErrOutOfStock), errors.Is(kind, inErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, inErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(kind, inErrors.ErrExpired):
		return http.StatusGone
	case errors.Is(kind, inErrors.ErrEmptyAuth),
		errors.Is(kind, inErrors.ErrEmptySubject),
		errors.Is(kind, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
