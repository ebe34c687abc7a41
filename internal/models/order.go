package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	OrderPending   PurchaseOrderStatus = "Pending"
	OrderCompleted PurchaseOrderStatus = "Completed"
	OrderCancelled PurchaseOrderStatus = "Cancelled"
)

func ValidPurchaseOrderStatus(s PurchaseOrderStatus) bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

type PurchaseOrder struct {
	Id             string              `json:"id"`
	Number         string              `json:"number"`
	SupplierId     string              `json:"supplierId"`
	QuoteRequestId string              `json:"quoteRequestId"`
	CreatedBy      string              `json:"createdBy"`
	Status         PurchaseOrderStatus `json:"status"`
	Total          decimal.Decimal     `json:"total"`
	Lines          []PurchaseOrderLine `json:"lines,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"-"`
}

type PurchaseOrderLine struct {
	Id              string          `json:"id"`
	PurchaseOrderId string          `json:"purchaseOrderId"`
	ProductId       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
}
