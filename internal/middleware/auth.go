package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/marketplace/internal"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/otel"
)

func Auth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Auth").Logger()

			authorization := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(authorization, " ")
			if authorization == "" || !found || !strings.EqualFold(scheme, "bearer") {
				err := fmt.Errorf("failed reading authorization header with error=%w", inErrors.ErrEmptyAuth)
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}

			jwtToken, err := internal.VerifyToken(c, secretKey, token)
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.AttachJwtToken(r.Context(), jwtToken)))
		})
	}
}
