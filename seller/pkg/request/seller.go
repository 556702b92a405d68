package request

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Analytics holds the query of every seller analytics endpoint. Unknown
// TimeFrame values select the whole order history.
type Analytics struct {
	SellerId  uuid.UUID `validate:"required" json:"sellerId"`
	TimeFrame string    `                    json:"timeFrame"`
	Metric    string    `                    json:"metric"`
	GroupBy   string    `                    json:"groupBy"`
	Limit     int       `                    json:"limit"`
}

func (a Analytics) MarshalZerologObject(e *zerolog.Event) {
	e.Str("sellerId", a.SellerId.String()).
		Str("timeFrame", a.TimeFrame).
		Str("metric", a.Metric).
		Str("groupBy", a.GroupBy).
		Int("limit", a.Limit)
}
