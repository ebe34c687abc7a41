package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

// PublicOffer is the supplier-facing view behind an access token: the request
// and its live lines, with all pricing stripped.
func (s *Service) PublicOffer(ctx context.Context, token string) (models.QuoteRequest, error) {
	req, err := s.repo.GetQuoteRequestByToken(ctx, token, nil, false)
	if err != nil {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.PublicOffer: %w", err)
	}

	if req.Status.Terminal() {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.PublicOffer: %w", models.ErrRequestProcessed)
	}

	lines, err := s.repo.GetQuoteLines(ctx, req.Id, nil, false)
	if err != nil {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.PublicOffer: %w", err)
	}

	req.OfferedTotal = decimal.NullDecimal{}
	req.Lines = req.Lines[:0]
	for _, line := range lines {
		if !line.Status.Live() {
			continue
		}
		line.OfferedUnitPrice = decimal.NullDecimal{}
		req.Lines = append(req.Lines, line)
	}

	return req, nil
}

// SubmitOffer applies a supplier's bid to the request behind the token.
//
// The token row is locked for the whole transaction, so a double-submitted
// form serializes and the second attempt fails on the state check.
func (s *Service) SubmitOffer(ctx context.Context, token string, sub models.OfferSubmission) (result models.QuoteRequest, err error) {
	if sub.DeliveryDate.IsZero() {
		return result, fmt.Errorf("service.Service.SubmitOffer: missing delivery date: %w", models.ErrValidation)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	req, err := s.repo.GetQuoteRequestByToken(ctx, token, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	if req.Status != models.RequestAwaitingSupplier {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", models.ErrRequestProcessed)
	}

	lines, err := s.repo.GetQuoteLines(ctx, req.Id, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	byId := make(map[string]models.QuoteLine, len(lines))
	for _, line := range lines {
		byId[line.Id] = line
	}

	for _, offer := range sub.Lines {
		line, ok := byId[offer.LineId]
		if !ok {
			return result, fmt.Errorf("service.Service.SubmitOffer: line %s: %w", offer.LineId, models.ErrForeignLine)
		}
		if line.Status != models.LinePending {
			return result, fmt.Errorf("service.Service.SubmitOffer: line %s: %w", offer.LineId, models.ErrLineFinalized)
		}

		if !offer.Available {
			err = s.repo.UpdateLineOffer(ctx, line.Id, models.LineUnavailable, decimal.NullDecimal{}, nil, tx)
			if err != nil {
				return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
			}
			continue
		}

		if !offer.UnitPrice.Valid || offer.UnitPrice.Decimal.Sign() <= 0 {
			return result, fmt.Errorf("service.Service.SubmitOffer: line %s: non-positive unit price: %w", offer.LineId, models.ErrValidation)
		}
		if offer.Quantity != nil && *offer.Quantity <= 0 {
			return result, fmt.Errorf("service.Service.SubmitOffer: line %s: non-positive quantity: %w", offer.LineId, models.ErrValidation)
		}

		err = s.repo.UpdateLineOffer(ctx, line.Id, models.LineOffered, offer.UnitPrice, offer.Quantity, tx)
		if err != nil {
			return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
		}
	}

	err = s.repo.RecomputeOfferedTotal(ctx, req.Id, []models.QuoteLineStatus{models.LineOffered}, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	err = s.repo.FinalizeSubmission(ctx, req.Id, sub.DeliveryDate, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	err = s.rescore(ctx, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: failed to commit transaction: %w", err)
	}

	result, err = s.repo.GetQuoteRequestByUUID(ctx, req.Id, nil, false)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}
	result.Lines, err = s.repo.GetQuoteLines(ctx, result.Id, nil, false)
	if err != nil {
		return result, fmt.Errorf("service.Service.SubmitOffer: %w", err)
	}

	return result, nil
}
