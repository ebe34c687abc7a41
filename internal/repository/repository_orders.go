package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"partsrfq/internal/models"
)

// AddPurchaseOrder inserts an order with its lines. It always runs inside the
// award transaction, so the caller owns commit and rollback.
func (repo *Repository) AddPurchaseOrder(ctx context.Context, order models.PurchaseOrder, tx *sql.Tx) (models.PurchaseOrder, error) {
	result := order

	query := `
	INSERT INTO purchase_orders (number, supplier_id, quote_request_id, created_by, status, total)
	VALUES ($1, $2, $3, $4, 'Pending', $5)
	RETURNING id, status, created_at, updated_at
	`

	row := tx.QueryRowContext(ctx, query, order.Number, order.SupplierId, order.QuoteRequestId, order.CreatedBy, order.Total)
	err := row.Scan(&result.Id, &result.Status, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddPurchaseOrder: %w", err)
	}

	lineQuery := `
	INSERT INTO purchase_order_lines (purchase_order_id, product_id, quantity, unit_price)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	result.Lines = make([]models.PurchaseOrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		line.PurchaseOrderId = result.Id
		err = tx.QueryRowContext(ctx, lineQuery, result.Id, line.ProductId, line.Quantity, line.UnitPrice).Scan(&line.Id)
		if err != nil {
			return result, fmt.Errorf("repository.Repository.AddPurchaseOrder: line insert failed: %w", err)
		}
		result.Lines = append(result.Lines, line)
	}

	return result, nil
}

func (repo *Repository) prepOrdersQuery(limit, offset int, orderId, supplierId string) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		number,
		supplier_id,
		quote_request_id,
		created_by,
		status,
		total,
		created_at,
		updated_at
	FROM purchase_orders
	$conditions$
	ORDER BY created_at, id
	LIMIT $1
	OFFSET $2
	`

	queryParams = make([]interface{}, 0, 4)
	conditions := make([]string, 0, 2)

	if limit <= 0 {
		queryParams = append(queryParams, nil)
	} else {
		queryParams = append(queryParams, limit)
	}
	queryParams = append(queryParams, offset)

	if len(orderId) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, orderId)
	}

	if len(supplierId) > 0 {
		conditions = append(conditions, "supplier_id = $$")
		queryParams = append(queryParams, supplierId)
	}

	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	query = strings.Replace(query, "$conditions$", condStr, -1)

	return query, queryParams
}

func (repo *Repository) scanOrder(row interface{ Scan(...any) error }) (models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := row.Scan(&order.Id, &order.Number, &order.SupplierId, &order.QuoteRequestId,
		&order.CreatedBy, &order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt)
	return order, err
}

func (repo *Repository) GetPurchaseOrders(ctx context.Context, limit, offset int, supplierId string) ([]models.PurchaseOrder, error) {
	query, queryParams := repo.prepOrdersQuery(limit, offset, "", supplierId)

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetPurchaseOrders: %w", err)
	}
	defer rows.Close()

	var result []models.PurchaseOrder
	for rows.Next() {
		order, err := repo.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetPurchaseOrders: row scan failed: %w", err)
		}
		result = append(result, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetPurchaseOrders: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetPurchaseOrderByUUID(ctx context.Context, UUID string) (models.PurchaseOrder, error) {
	query, queryParams := repo.prepOrdersQuery(1, 0, UUID, "")

	order, err := repo.scanOrder(repo.db.QueryRowContext(ctx, query, queryParams...))
	if errors.Is(err, sql.ErrNoRows) {
		return order, fmt.Errorf("repository.Repository.GetPurchaseOrderByUUID: %w", models.ErrNoOrder)
	} else if err != nil {
		return order, fmt.Errorf("repository.Repository.GetPurchaseOrderByUUID: %w", err)
	}

	order.Lines, err = repo.GetPurchaseOrderLines(ctx, order.Id)
	if err != nil {
		return order, fmt.Errorf("repository.Repository.GetPurchaseOrderByUUID: %w", err)
	}

	return order, nil
}

func (repo *Repository) GetPurchaseOrderLines(ctx context.Context, orderId string) ([]models.PurchaseOrderLine, error) {
	query := `
	SELECT
		id,
		purchase_order_id,
		product_id,
		quantity,
		unit_price
	FROM purchase_order_lines
	WHERE purchase_order_id = $1
	ORDER BY id
	`

	rows, err := repo.db.QueryContext(ctx, query, orderId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetPurchaseOrderLines: %w", err)
	}
	defer rows.Close()

	var result []models.PurchaseOrderLine
	var line models.PurchaseOrderLine
	for rows.Next() {
		err = rows.Scan(&line.Id, &line.PurchaseOrderId, &line.ProductId, &line.Quantity, &line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetPurchaseOrderLines: row scan failed: %w", err)
		}
		result = append(result, line)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetPurchaseOrderLines: %w", rows.Err())
	}

	return result, nil
}
