package models

// Requests for the DVOL HTTP endpoints. Defined in domain for consistency and reuse.

type DvolRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
	N     int    `query:"n" json:"n" default:"24" validate:"gte=1,lte=8760"`
	From  string `query:"from" json:"from,omitempty"`
	To    string `query:"to" json:"to,omitempty"`
}

type VovRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
	N     int    `query:"n" json:"n" default:"90" validate:"gte=1,lte=3650"`
	From  string `query:"from" json:"from,omitempty"`
	To    string `query:"to" json:"to,omitempty"`
}

type ValidationRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
}
