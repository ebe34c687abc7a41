package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

func TestAddPurchaseOrder(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	user := AddTestUser(t, repo)
	req := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0], cat.Products[1])

	order := models.PurchaseOrder{
		Number:         "PO-" + uuid.NewString(),
		SupplierId:     cat.Suppliers[0].Id,
		QuoteRequestId: req.Id,
		CreatedBy:      user.Id,
		Total:          decimal.RequireFromString("1230.00"),
		Lines: []models.PurchaseOrderLine{
			{ProductId: cat.Products[0].Id, Quantity: 50, UnitPrice: decimal.RequireFromString("24.00")},
			{ProductId: cat.Products[1].Id, Quantity: 20, UnitPrice: decimal.RequireFromString("1.50")},
		},
	}

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	order, err = repo.AddPurchaseOrder(ctx, order, tx)
	if err != nil {
		tx.Rollback()
		t.Fatal(err)
	}
	err = tx.Commit()
	if err != nil {
		t.Fatal(err)
	}

	if order.Status != models.OrderPending {
		t.Errorf("Expected new order status '%s', got '%s'", models.OrderPending, order.Status)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("Expected 2 order lines, got %d", len(order.Lines))
	}

	got, err := repo.GetPurchaseOrderByUUID(ctx, order.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Number != order.Number || got.SupplierId != order.SupplierId || got.QuoteRequestId != order.QuoteRequestId {
		t.Errorf("Stored order does not match: expected %v, got %v", order, got)
	}
	if !got.Total.Equal(order.Total) {
		t.Errorf("Expected total %s, got %s", order.Total, got.Total)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("Expected 2 stored lines, got %d", len(got.Lines))
	}

	orders, err := repo.GetPurchaseOrders(ctx, 0, 0, cat.Suppliers[0].Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].Id != order.Id {
		t.Fatalf("Supplier filter returned wrong result: %v", orders)
	}

	orders, err = repo.GetPurchaseOrders(ctx, 0, 0, cat.Suppliers[1].Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Fatalf("Expected no orders for supplier without awards, got %d", len(orders))
	}

	_, err = repo.GetPurchaseOrderByUUID(ctx, EmptyUUID)
	if !errors.Is(err, models.ErrNoOrder) {
		t.Fatalf("Expected ErrNoOrder, got %v", err)
	}
}
