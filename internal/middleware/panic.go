package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/metrics"
	"github.com/Alturino/marketplace/internal/otel"
)

// RecoverPanic turns a handler panic into a 500 envelope.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
		defer span.End()

		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			metrics.PanicsRecovered.WithLabelValues(r.Method).Inc()

			err := fmt.Errorf("recovered from panic=%v on %s %s with error=%w", recovered, r.Method, r.URL.Path, inErrors.ErrUnexpected)
			otel.RecordError(err, span)
			zerolog.Ctx(c).
				Error().
				Str(log.KeyTag, "middleware RecoverPanic").
				Err(err).
				Stack().
				Msg("recovered from panic")
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusInternalServerError,
				"message":    http.StatusText(http.StatusInternalServerError),
			})
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
