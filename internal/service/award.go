package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

// AwardRequest accepts one received quote request: it freezes the offered
// lines into a purchase order, marks them won, drives every rival line for the
// same products to LostToRival, auto-closes rival requests left without live
// lines and re-runs the recommendation ranking. Everything happens in one
// transaction; a failure anywhere leaves no trace.
func (s *Service) AwardRequest(ctx context.Context, username, requestId string) (order models.PurchaseOrder, err error) {
	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	req, err := s.repo.GetQuoteRequestByUUID(ctx, requestId, tx, true)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	if req.Status != models.RequestReceived {
		if req.Status.Terminal() {
			return order, fmt.Errorf("service.Service.AwardRequest: %w", models.ErrRequestFinalized)
		}
		return order, fmt.Errorf("service.Service.AwardRequest: %w", models.ErrRequestNotReady)
	}

	lines, err := s.repo.GetQuoteLines(ctx, req.Id, tx, true)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	var offered []models.QuoteLine
	for _, line := range lines {
		if line.Status == models.LineOffered {
			offered = append(offered, line)
		}
	}
	if len(offered) == 0 {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", models.ErrNoOfferedLines)
	}

	// Freeze prices into the order.
	order = models.PurchaseOrder{
		Number:         "PO-" + uuid.NewString(),
		SupplierId:     req.SupplierId,
		QuoteRequestId: req.Id,
		CreatedBy:      user.Id,
		Total:          decimal.Zero,
	}

	wonIds := make([]string, 0, len(offered))
	productIds := make([]string, 0, len(offered))
	for _, line := range offered {
		qty := line.EffectiveQty()
		order.Lines = append(order.Lines, models.PurchaseOrderLine{
			ProductId: line.ProductId,
			Quantity:  qty,
			UnitPrice: line.OfferedUnitPrice.Decimal,
		})
		order.Total = order.Total.Add(line.OfferedUnitPrice.Decimal.Mul(decimal.NewFromInt(int64(qty))))
		wonIds = append(wonIds, line.Id)
		productIds = append(productIds, line.ProductId)
	}

	order, err = s.repo.AddPurchaseOrder(ctx, order, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	err = s.repo.SetLineStatus(ctx, wonIds, models.LineWon, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	// Rival cascade.
	rivals, err := s.repo.GetRivalLines(ctx, productIds, req.Id, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	rivalIds := make([]string, 0, len(rivals))
	affected := make(map[string]bool)
	for _, rival := range rivals {
		rivalIds = append(rivalIds, rival.Id)
		affected[rival.QuoteRequestId] = true
	}

	err = s.repo.SetLineStatus(ctx, rivalIds, models.LineLostToRival, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	affectedIds := make([]string, 0, len(affected))
	for id := range affected {
		affectedIds = append(affectedIds, id)
	}
	sort.Strings(affectedIds)

	var closed []models.QuoteRequest
	for _, rid := range affectedIds {
		rreq, err2 := s.repo.GetQuoteRequestByUUID(ctx, rid, tx, true)
		if err2 != nil {
			err = fmt.Errorf("service.Service.AwardRequest: %w", err2)
			return order, err
		}

		live, err2 := s.repo.CountLines(ctx, rid, []models.QuoteLineStatus{models.LinePending, models.LineOffered, models.LineWon}, tx)
		if err2 != nil {
			err = fmt.Errorf("service.Service.AwardRequest: %w", err2)
			return order, err
		}

		if live == 0 {
			err = s.repo.SetRequestStatus(ctx, rid, models.RequestNoLiveLines, tx)
			if err != nil {
				return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
			}
			closed = append(closed, rreq)
			continue
		}

		if rreq.Status == models.RequestReceived {
			err = s.repo.RecomputeOfferedTotal(ctx, rid, []models.QuoteLineStatus{models.LineOffered, models.LineWon}, tx)
			if err != nil {
				return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
			}
		}
	}

	err = s.repo.SetRequestStatus(ctx, req.Id, models.RequestAwarded, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	err = s.rescore(ctx, tx)
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return order, fmt.Errorf("service.Service.AwardRequest: failed to commit transaction: %w", err)
	}

	s.emitAwardEvents(req, order, offered, rivals, closed)
	s.notifyAwardOutcome(ctx, req, order, closed)

	return order, nil
}

// CancelRequest is the operator withdrawing a whole request.
func (s *Service) CancelRequest(ctx context.Context, username, requestId string) (result models.QuoteRequest, err error) {
	_, err = s.userByUsername(ctx, username)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	req, err := s.repo.GetQuoteRequestByUUID(ctx, requestId, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}

	if req.Status.Terminal() {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", models.ErrRequestFinalized)
	}

	lines, err := s.repo.GetQuoteLines(ctx, req.Id, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}

	var liveIds []string
	for _, line := range lines {
		if line.Status.Live() {
			liveIds = append(liveIds, line.Id)
		}
	}

	err = s.repo.SetLineStatus(ctx, liveIds, models.LineCancelled, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}

	err = s.repo.SetRequestStatus(ctx, req.Id, models.RequestCancelled, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}

	if req.Status == models.RequestReceived {
		err = s.rescore(ctx, tx)
		if err != nil {
			return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: failed to commit transaction: %w", err)
	}

	event := newEvent(models.EventRequestCancelled)
	event.RequestId = req.Id
	s.emit(event)

	result, err = s.repo.GetQuoteRequestByUUID(ctx, req.Id, nil, false)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelRequest: %w", err)
	}
	return result, nil
}

// CancelLine is the operator withdrawing a single line; a request whose last
// live line goes away closes itself.
func (s *Service) CancelLine(ctx context.Context, username, requestId, lineId string) (result models.QuoteRequest, err error) {
	_, err = s.userByUsername(ctx, username)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	req, err := s.repo.GetQuoteRequestByUUID(ctx, requestId, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}

	if req.Status.Terminal() {
		return result, fmt.Errorf("service.Service.CancelLine: %w", models.ErrRequestFinalized)
	}

	line, err := s.repo.GetQuoteLineByUUID(ctx, lineId, tx, true)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}
	if line.QuoteRequestId != req.Id {
		return result, fmt.Errorf("service.Service.CancelLine: %w", models.ErrNoLine)
	}
	if !line.Status.Live() {
		return result, fmt.Errorf("service.Service.CancelLine: %w", models.ErrLineFinalized)
	}

	err = s.repo.SetLineStatus(ctx, []string{line.Id}, models.LineCancelled, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}

	live, err := s.repo.CountLines(ctx, req.Id, []models.QuoteLineStatus{models.LinePending, models.LineOffered, models.LineWon}, tx)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}

	closed := false
	if live == 0 {
		err = s.repo.SetRequestStatus(ctx, req.Id, models.RequestNoLiveLines, tx)
		if err != nil {
			return result, fmt.Errorf("service.Service.CancelLine: %w", err)
		}
		closed = true
	} else if req.Status == models.RequestReceived {
		err = s.repo.RecomputeOfferedTotal(ctx, req.Id, []models.QuoteLineStatus{models.LineOffered}, tx)
		if err != nil {
			return result, fmt.Errorf("service.Service.CancelLine: %w", err)
		}
	}

	if req.Status == models.RequestReceived {
		err = s.rescore(ctx, tx)
		if err != nil {
			return result, fmt.Errorf("service.Service.CancelLine: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: failed to commit transaction: %w", err)
	}

	if closed {
		event := newEvent(models.EventRequestCancelled)
		event.RequestId = req.Id
		s.emit(event)
	}

	result, err = s.repo.GetQuoteRequestByUUID(ctx, req.Id, nil, false)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}
	result.Lines, err = s.repo.GetQuoteLines(ctx, result.Id, nil, false)
	if err != nil {
		return result, fmt.Errorf("service.Service.CancelLine: %w", err)
	}
	return result, nil
}

//// Service

func (s *Service) emitAwardEvents(req models.QuoteRequest, order models.PurchaseOrder, won, rivals []models.QuoteLine, closed []models.QuoteRequest) {
	event := newEvent(models.EventRequestAwarded)
	event.RequestId = req.Id
	event.OrderId = order.Id
	s.emit(event)

	for _, line := range won {
		event = newEvent(models.EventLineWon)
		event.RequestId = req.Id
		event.LineId = line.Id
		event.ProductId = line.ProductId
		event.OrderId = order.Id
		s.emit(event)
	}

	for _, line := range rivals {
		event = newEvent(models.EventLineLostToRival)
		event.RequestId = line.QuoteRequestId
		event.LineId = line.Id
		event.ProductId = line.ProductId
		s.emit(event)
	}

	for _, rreq := range closed {
		event = newEvent(models.EventRequestCancelled)
		event.RequestId = rreq.Id
		s.emit(event)
	}
}

func (s *Service) notifyAwardOutcome(ctx context.Context, req models.QuoteRequest, order models.PurchaseOrder, closed []models.QuoteRequest) {
	winner, err := s.repo.SupplierByUUID(ctx, req.SupplierId)
	if err != nil {
		log.Printf("service: could not load supplier %s for award notification: %s", req.SupplierId, err)
	} else {
		s.notifyAsync(winner.Email,
			"Your offer has been accepted",
			fmt.Sprintf("Hello %s,\n\nyour offer was accepted. Purchase order %s totalling %s is on its way.\n",
				winner.Name, order.Number, order.Total.StringFixed(2)))
	}

	for _, rreq := range closed {
		supplier, err := s.repo.SupplierByUUID(ctx, rreq.SupplierId)
		if err != nil {
			continue
		}
		s.notifyAsync(supplier.Email,
			"Quote request closed",
			fmt.Sprintf("Hello %s,\n\nyour quote request was closed because all of its lines were awarded elsewhere.\n", supplier.Name))
	}
}
