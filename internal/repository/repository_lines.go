package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

const lineColumns = `
	id,
	quote_request_id,
	product_id,
	status,
	requested_qty,
	offered_unit_price,
	offered_qty,
	created_at,
	updated_at
`

func (repo *Repository) scanLine(row interface{ Scan(...any) error }) (models.QuoteLine, error) {
	var line models.QuoteLine
	var offeredQty sql.NullInt32

	err := row.Scan(&line.Id, &line.QuoteRequestId, &line.ProductId, &line.Status,
		&line.RequestedQty, &line.OfferedUnitPrice, &offeredQty, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return line, err
	}

	if offeredQty.Valid {
		n := int(offeredQty.Int32)
		line.OfferedQty = &n
	}
	return line, nil
}

func (repo *Repository) GetQuoteLines(ctx context.Context, requestId string, tx *sql.Tx, forUpdate bool) ([]models.QuoteLine, error) {
	query := `
	SELECT ` + lineColumns + `
	FROM quote_lines
	WHERE quote_request_id = $1
	ORDER BY created_at, id
	`
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, err := repo.q(tx).QueryContext(ctx, query, requestId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetQuoteLines: %w", err)
	}
	defer rows.Close()

	var result []models.QuoteLine
	for rows.Next() {
		line, err := repo.scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetQuoteLines: row scan failed: %w", err)
		}
		result = append(result, line)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetQuoteLines: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetQuoteLineByUUID(ctx context.Context, UUID string, tx *sql.Tx, forUpdate bool) (models.QuoteLine, error) {
	query := `
	SELECT ` + lineColumns + `
	FROM quote_lines
	WHERE id = $1
	`
	if forUpdate {
		query += "FOR UPDATE"
	}

	line, err := repo.scanLine(repo.q(tx).QueryRowContext(ctx, query, UUID))
	if errors.Is(err, sql.ErrNoRows) {
		return line, fmt.Errorf("repository.Repository.GetQuoteLineByUUID: %w", models.ErrNoLine)
	} else if err != nil {
		return line, fmt.Errorf("repository.Repository.GetQuoteLineByUUID: %w", err)
	}

	return line, nil
}

// UpdateLineOffer writes a supplier's answer for one line: the new state plus
// price and quantity, both nullable.
func (repo *Repository) UpdateLineOffer(ctx context.Context, lineId string, status models.QuoteLineStatus, unitPrice decimal.NullDecimal, offeredQty *int, tx *sql.Tx) error {
	query := `
	UPDATE quote_lines
	SET (status, offered_unit_price, offered_qty, updated_at) = ($2, $3, $4, CURRENT_TIMESTAMP)
	WHERE id = $1
	`

	var qty sql.NullInt32
	if offeredQty != nil {
		qty = sql.NullInt32{Int32: int32(*offeredQty), Valid: true}
	}

	_, err := repo.q(tx).ExecContext(ctx, query, lineId, status, unitPrice, qty)
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateLineOffer: %w", err)
	}
	return nil
}

func (repo *Repository) SetLineStatus(ctx context.Context, lineIds []string, status models.QuoteLineStatus, tx *sql.Tx) error {
	if len(lineIds) == 0 {
		return nil
	}

	query := `
	UPDATE quote_lines
	SET (status, updated_at) = ($2, CURRENT_TIMESTAMP)
	WHERE id = any($1)
	`
	_, err := repo.q(tx).ExecContext(ctx, query, pq.Array(lineIds), status)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetLineStatus: %w", err)
	}
	return nil
}

// GetRivalLines returns every live line for any of the products outside the
// given request, locked for the caller's transaction. This is the cross-request
// scan the award cascade runs on.
func (repo *Repository) GetRivalLines(ctx context.Context, productIds []string, excludeRequestId string, tx *sql.Tx) ([]models.QuoteLine, error) {
	if len(productIds) == 0 {
		return nil, nil
	}

	query := `
	SELECT ` + lineColumns + `
	FROM quote_lines
	WHERE product_id = any($1)
		AND quote_request_id <> $2
		AND status IN ('Pending', 'Offered')
	ORDER BY quote_request_id, id
	FOR UPDATE
	`

	rows, err := repo.q(tx).QueryContext(ctx, query, pq.Array(productIds), excludeRequestId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetRivalLines: %w", err)
	}
	defer rows.Close()

	var result []models.QuoteLine
	for rows.Next() {
		line, err := repo.scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetRivalLines: row scan failed: %w", err)
		}
		result = append(result, line)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetRivalLines: %w", rows.Err())
	}

	return result, nil
}

// CountLines counts the request's lines in the given states.
func (repo *Repository) CountLines(ctx context.Context, requestId string, statuses []models.QuoteLineStatus, tx *sql.Tx) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM quote_lines
	WHERE quote_request_id = $1 AND status = any($2::quote_line_status[])
	`

	var count int
	err := repo.q(tx).QueryRowContext(ctx, query, requestId, sliceToSQLList(statuses)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.CountLines: %w", err)
	}
	return count, nil
}
