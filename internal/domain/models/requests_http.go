package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
}

type IndicatorsRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
	N     int    `query:"n" json:"n" default:"100" validate:"gte=1,lte=1000"`
}

type SignalHistoryRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
