package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"partsrfq/internal/models"
)

// AddQuoteRequest inserts a request together with its lines in one
// transaction. The partial unique index on live requests per supplier turns a
// concurrent duplicate into models.ErrDuplicateRequest, which the sweep
// treats as "skip".
func (repo *Repository) AddQuoteRequest(ctx context.Context, req models.QuoteRequest) (models.QuoteRequest, error) {
	result := req

	query := `
	INSERT INTO quote_requests (supplier_id, status, access_token)
	VALUES ($1, 'AwaitingSupplier', $2)
	RETURNING id, status, created_at, updated_at
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddQuoteRequest: failed to start transaction: %w", err)
	}

	row := tx.QueryRowContext(ctx, query, req.SupplierId, req.AccessToken)
	err = row.Scan(&result.Id, &result.Status, &result.CreatedAt, &result.UpdatedAt)
	if isUniqueViolation(err) {
		return result, fmt.Errorf("repository.Repository.AddQuoteRequest: %w", wrapRollbackErr(tx, models.ErrDuplicateRequest))
	} else if err != nil {
		return result, fmt.Errorf("repository.Repository.AddQuoteRequest: %w", wrapRollbackErr(tx, err))
	}

	lineQuery := `
	INSERT INTO quote_lines (quote_request_id, product_id, requested_qty)
	VALUES ($1, $2, $3)
	RETURNING id, status, created_at, updated_at
	`

	result.Lines = make([]models.QuoteLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		line.QuoteRequestId = result.Id
		row = tx.QueryRowContext(ctx, lineQuery, result.Id, line.ProductId, line.RequestedQty)
		err = row.Scan(&line.Id, &line.Status, &line.CreatedAt, &line.UpdatedAt)
		if err != nil {
			return result, fmt.Errorf("repository.Repository.AddQuoteRequest: line insert failed: %w", wrapRollbackErr(tx, err))
		}
		result.Lines = append(result.Lines, line)
	}

	err = tx.Commit()
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddQuoteRequest: failed to commit transaction: %w", err)
	}

	return result, nil
}

func (repo *Repository) SupplierHasLiveRequest(ctx context.Context, supplierId string, tx *sql.Tx) (bool, error) {
	query := `
	SELECT id
	FROM quote_requests
	WHERE supplier_id = $1 AND status IN ('AwaitingSupplier', 'Received')
	LIMIT 1
	`

	var dummy string
	err := repo.q(tx).QueryRowContext(ctx, query, supplierId).Scan(&dummy)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	}
	return false, fmt.Errorf("repository.Repository.SupplierHasLiveRequest: %w", err)
}

func (repo *Repository) prepRequestsQuery(limit, offset int, requestId, token, supplierId string, statuses []models.QuoteRequestStatus, forUpdate bool) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		supplier_id,
		status,
		access_token,
		delivery_date,
		offered_total,
		recommended,
		created_at,
		updated_at
	FROM quote_requests
	$conditions$
	ORDER BY created_at, id
	LIMIT $1
	OFFSET $2
	$lock$
	`

	queryParams = make([]interface{}, 0, 6)
	conditions := make([]string, 0, 4)

	if limit <= 0 {
		queryParams = append(queryParams, nil)
	} else {
		queryParams = append(queryParams, limit)
	}
	queryParams = append(queryParams, offset)

	if len(requestId) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, requestId)
	}

	if len(token) > 0 {
		conditions = append(conditions, "access_token = $$")
		queryParams = append(queryParams, token)
	}

	if len(supplierId) > 0 {
		conditions = append(conditions, "supplier_id = $$")
		queryParams = append(queryParams, supplierId)
	}

	if len(statuses) > 0 {
		conditions = append(conditions, "status = any($$::quote_request_status[])")
		queryParams = append(queryParams, sliceToSQLList(statuses))
	}

	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	query = strings.Replace(query, "$conditions$", condStr, -1)

	lock := ""
	if forUpdate {
		lock = "FOR UPDATE"
	}
	query = strings.Replace(query, "$lock$", lock, -1)

	return query, queryParams
}

func (repo *Repository) scanRequest(row interface{ Scan(...any) error }) (models.QuoteRequest, error) {
	var req models.QuoteRequest
	var deliveryDate sql.NullTime

	err := row.Scan(&req.Id, &req.SupplierId, &req.Status, &req.AccessToken,
		&deliveryDate, &req.OfferedTotal, &req.Recommended, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return req, err
	}

	if deliveryDate.Valid {
		d := deliveryDate.Time
		req.DeliveryDate = &d
	}
	return req, nil
}

func (repo *Repository) GetQuoteRequests(ctx context.Context, limit, offset int, supplierId string, statuses []models.QuoteRequestStatus) ([]models.QuoteRequest, error) {
	query, queryParams := repo.prepRequestsQuery(limit, offset, "", "", supplierId, statuses, false)

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetQuoteRequests: %w", err)
	}
	defer rows.Close()

	var result []models.QuoteRequest
	for rows.Next() {
		req, err := repo.scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetQuoteRequests: row scan failed: %w", err)
		}
		result = append(result, req)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetQuoteRequests: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetQuoteRequestByUUID(ctx context.Context, UUID string, tx *sql.Tx, forUpdate bool) (models.QuoteRequest, error) {
	query, queryParams := repo.prepRequestsQuery(1, 0, UUID, "", "", nil, forUpdate)

	req, err := repo.scanRequest(repo.q(tx).QueryRowContext(ctx, query, queryParams...))
	if errors.Is(err, sql.ErrNoRows) {
		return req, fmt.Errorf("repository.Repository.GetQuoteRequestByUUID: %w", models.ErrNoRequest)
	} else if err != nil {
		return req, fmt.Errorf("repository.Repository.GetQuoteRequestByUUID: %w", err)
	}

	return req, nil
}

func (repo *Repository) GetQuoteRequestByToken(ctx context.Context, token string, tx *sql.Tx, forUpdate bool) (models.QuoteRequest, error) {
	query, queryParams := repo.prepRequestsQuery(1, 0, "", token, "", nil, forUpdate)

	req, err := repo.scanRequest(repo.q(tx).QueryRowContext(ctx, query, queryParams...))
	if errors.Is(err, sql.ErrNoRows) {
		return req, fmt.Errorf("repository.Repository.GetQuoteRequestByToken: %w", models.ErrNoToken)
	} else if err != nil {
		return req, fmt.Errorf("repository.Repository.GetQuoteRequestByToken: %w", err)
	}

	return req, nil
}

func (repo *Repository) SetRequestStatus(ctx context.Context, requestId string, status models.QuoteRequestStatus, tx *sql.Tx) error {
	query := `
	UPDATE quote_requests
	SET (status, updated_at) = ($2, CURRENT_TIMESTAMP)
	WHERE id = $1
	`
	_, err := repo.q(tx).ExecContext(ctx, query, requestId, status)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetRequestStatus: %w", err)
	}
	return nil
}

// FinalizeSubmission records the supplier's delivery date and moves the
// request to Received. The offered total is recomputed separately.
func (repo *Repository) FinalizeSubmission(ctx context.Context, requestId string, deliveryDate time.Time, tx *sql.Tx) error {
	query := `
	UPDATE quote_requests
	SET (status, delivery_date, updated_at) = ('Received', $2, CURRENT_TIMESTAMP)
	WHERE id = $1
	`
	_, err := repo.q(tx).ExecContext(ctx, query, requestId, deliveryDate)
	if err != nil {
		return fmt.Errorf("repository.Repository.FinalizeSubmission: %w", err)
	}
	return nil
}

// RecomputeOfferedTotal derives offered_total from the request's lines in the
// given states, as sum(unit price x effective quantity). No matching lines
// yields NULL, which the scorer ranks as most expensive.
func (repo *Repository) RecomputeOfferedTotal(ctx context.Context, requestId string, statuses []models.QuoteLineStatus, tx *sql.Tx) error {
	query := `
	UPDATE quote_requests
	SET (offered_total, updated_at) = (
		(
			SELECT SUM(offered_unit_price * COALESCE(NULLIF(offered_qty, 0), requested_qty))
			FROM quote_lines
			WHERE quote_request_id = $1 AND status = any($2::quote_line_status[])
		),
		CURRENT_TIMESTAMP
	)
	WHERE id = $1
	`
	_, err := repo.q(tx).ExecContext(ctx, query, requestId, sliceToSQLList(statuses))
	if err != nil {
		return fmt.Errorf("repository.Repository.RecomputeOfferedTotal: %w", err)
	}
	return nil
}

// GetRequestScores reads the ranking snapshot of every received request,
// locking the rows so two concurrent rescores cannot interleave.
func (repo *Repository) GetRequestScores(ctx context.Context, tx *sql.Tx) ([]models.RequestScore, error) {
	query := `
	SELECT
		qr.id,
		(
			SELECT COUNT(*)
			FROM quote_lines AS ql
			WHERE ql.quote_request_id = qr.id AND ql.status = 'Offered'
		),
		qr.offered_total,
		qr.delivery_date
	FROM quote_requests AS qr
	WHERE qr.status = 'Received'
	ORDER BY qr.id
	FOR UPDATE OF qr
	`

	rows, err := repo.q(tx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetRequestScores: %w", err)
	}
	defer rows.Close()

	var result []models.RequestScore
	for rows.Next() {
		var score models.RequestScore
		var deliveryDate sql.NullTime
		err = rows.Scan(&score.RequestId, &score.OfferedLines, &score.OfferedTotal, &deliveryDate)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetRequestScores: row scan failed: %w", err)
		}
		if deliveryDate.Valid {
			d := deliveryDate.Time
			score.DeliveryDate = &d
		}
		result = append(result, score)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetRequestScores: %w", rows.Err())
	}

	return result, nil
}

// SetRecommended clears every recommended flag and raises it on the given
// request. An empty id only clears.
func (repo *Repository) SetRecommended(ctx context.Context, requestId string, tx *sql.Tx) error {
	if len(requestId) == 0 {
		_, err := repo.q(tx).ExecContext(ctx, "UPDATE quote_requests SET recommended = FALSE WHERE recommended")
		if err != nil {
			return fmt.Errorf("repository.Repository.SetRecommended: %w", err)
		}
		return nil
	}

	_, err := repo.q(tx).ExecContext(ctx, "UPDATE quote_requests SET recommended = FALSE WHERE recommended AND id <> $1", requestId)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetRecommended: %w", err)
	}

	_, err = repo.q(tx).ExecContext(ctx, "UPDATE quote_requests SET recommended = TRUE WHERE id = $1", requestId)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetRecommended: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
