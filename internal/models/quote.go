package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteRequestStatus string

const (
	RequestAwaitingSupplier QuoteRequestStatus = "AwaitingSupplier"
	RequestReceived         QuoteRequestStatus = "Received"
	RequestAwarded          QuoteRequestStatus = "Awarded"
	RequestCancelled        QuoteRequestStatus = "Cancelled"
	RequestNoLiveLines      QuoteRequestStatus = "NoLiveLines"
	RequestExpired          QuoteRequestStatus = "Expired"
)

func ValidQuoteRequestStatus(s QuoteRequestStatus) bool {
	switch s {
	case RequestAwaitingSupplier, RequestReceived, RequestAwarded,
		RequestCancelled, RequestNoLiveLines, RequestExpired:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave s.
func (s QuoteRequestStatus) Terminal() bool {
	return s != RequestAwaitingSupplier && s != RequestReceived
}

type QuoteLineStatus string

const (
	LinePending     QuoteLineStatus = "Pending"
	LineOffered     QuoteLineStatus = "Offered"
	LineUnavailable QuoteLineStatus = "Unavailable"
	LineWon         QuoteLineStatus = "Won"
	LineLostToRival QuoteLineStatus = "LostToRival"
	LineCancelled   QuoteLineStatus = "Cancelled"
)

func ValidQuoteLineStatus(s QuoteLineStatus) bool {
	switch s {
	case LinePending, LineOffered, LineUnavailable, LineWon, LineLostToRival, LineCancelled:
		return true
	default:
		return false
	}
}

// Live reports whether the line still takes part in the bidding round.
func (s QuoteLineStatus) Live() bool {
	return s == LinePending || s == LineOffered
}

func LiveLineStatuses() []QuoteLineStatus {
	return []QuoteLineStatus{LinePending, LineOffered}
}

type QuoteRequest struct {
	Id           string              `json:"id"`
	SupplierId   string              `json:"supplierId"`
	Status       QuoteRequestStatus  `json:"status"`
	AccessToken  string              `json:"-"`
	DeliveryDate *time.Time          `json:"deliveryDate,omitempty"`
	OfferedTotal decimal.NullDecimal `json:"offeredTotal"`
	Recommended  bool                `json:"recommended"`
	Lines        []QuoteLine         `json:"lines,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"-"`
}

type QuoteLine struct {
	Id               string              `json:"id"`
	QuoteRequestId   string              `json:"quoteRequestId"`
	ProductId        string              `json:"productId"`
	Status           QuoteLineStatus     `json:"status"`
	RequestedQty     int                 `json:"requestedQty"`
	OfferedUnitPrice decimal.NullDecimal `json:"offeredUnitPrice"`
	OfferedQty       *int                `json:"offeredQty,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"-"`
}

// EffectiveQty is the quantity an award would order: the supplier's offered
// quantity when positive, the requested lot size otherwise.
func (l QuoteLine) EffectiveQty() int {
	if l.OfferedQty != nil && *l.OfferedQty > 0 {
		return *l.OfferedQty
	}
	return l.RequestedQty
}

// RequestScore is the snapshot of a received request the recommendation
// ranking runs on.
type RequestScore struct {
	RequestId    string
	OfferedLines int
	OfferedTotal decimal.NullDecimal
	DeliveryDate *time.Time
}

// OfferSubmission is a supplier's bid for a whole quote request.
type OfferSubmission struct {
	DeliveryDate time.Time
	Lines        []OfferLine
}

type OfferLine struct {
	LineId    string
	UnitPrice decimal.NullDecimal
	Quantity  *int
	Available bool
}
