package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/marketplace/internal/constants"
)

var Tracer = otel.Tracer(constants.AppNotification)
