package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"partsrfq/internal/models"
	"partsrfq/internal/token"
)

// Sweep is the operator-triggered understock run.
func (s *Service) Sweep(ctx context.Context, username string) ([]models.QuoteRequest, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.Sweep: %w", err)
	}
	return s.CollectUnderstocked(ctx)
}

// CollectUnderstocked groups every understocked product by the suppliers
// covering its category and opens one quote request per supplier that has no
// live request yet. Suppliers are mailed their single-use offer link.
//
// The run tolerates being fired repeatedly: the live-request check skips
// suppliers mid-round, and the partial unique index catches the rare race
// between two overlapping runs.
func (s *Service) CollectUnderstocked(ctx context.Context) ([]models.QuoteRequest, error) {
	products, err := s.repo.UnderstockedProducts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("service.Service.CollectUnderstocked: %w", err)
	}

	type assignment struct {
		supplier models.Supplier
		products []models.Product
	}

	bySupplier := make(map[string]*assignment)
	var order []string

	for _, product := range products {
		suppliers, err := s.repo.SuppliersForCategory(ctx, product.CategoryId, nil)
		if err != nil {
			return nil, fmt.Errorf("service.Service.CollectUnderstocked: %w", err)
		}
		for _, supplier := range suppliers {
			a, ok := bySupplier[supplier.Id]
			if !ok {
				a = &assignment{supplier: supplier}
				bySupplier[supplier.Id] = a
				order = append(order, supplier.Id)
			}
			a.products = append(a.products, product)
		}
	}

	var created []models.QuoteRequest
	for _, supplierId := range order {
		a := bySupplier[supplierId]

		has, err := s.repo.SupplierHasLiveRequest(ctx, supplierId, nil)
		if err != nil {
			return created, fmt.Errorf("service.Service.CollectUnderstocked: %w", err)
		}
		if has {
			continue
		}

		tok, err := token.New()
		if err != nil {
			return created, fmt.Errorf("service.Service.CollectUnderstocked: %w", err)
		}

		req := models.QuoteRequest{
			SupplierId:  supplierId,
			AccessToken: tok,
		}
		for _, product := range a.products {
			req.Lines = append(req.Lines, models.QuoteLine{
				ProductId:    product.Id,
				RequestedQty: product.ReorderLot,
			})
		}

		req, err = s.repo.AddQuoteRequest(ctx, req)
		if errors.Is(err, models.ErrDuplicateRequest) {
			log.Printf("service: supplier %s got a live request concurrently, skipping", supplierId)
			continue
		} else if err != nil {
			return created, fmt.Errorf("service.Service.CollectUnderstocked: %w", err)
		}

		created = append(created, req)
		s.notifyAsync(a.supplier.Email,
			"Request for quote",
			fmt.Sprintf("Hello %s,\n\nwe would like a quote for %d product(s). Please submit your offer at:\n%s\n",
				a.supplier.Name, len(req.Lines), s.offerURL(tok)))
	}

	return created, nil
}
