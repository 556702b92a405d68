package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/marketplace/internal/errors"
)

const KeyErrorKind = "error.kind"

// RecordError marks span as failed and tags it with the error kind from the taxonomy.
func RecordError(err error, span trace.Span) {
	if err == nil {
		return
	}
	kind := inErrors.Kind(err)
	span.SetAttributes(attribute.String(KeyErrorKind, kind.Error()))
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
