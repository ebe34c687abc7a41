package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"partsrfq/internal/models"
	"partsrfq/internal/notify"
	"partsrfq/internal/repository"
	"partsrfq/internal/scorer"
)

type Service struct {
	repo     *repository.Repository
	notifier notify.Notifier
	baseURL  string
	sinks    []func(models.Event)
}

func NewService(repo *repository.Repository, notifier notify.Notifier, baseURL string) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// Subscribe registers an observer for engine events. Call before the service
// starts handling requests; sinks run synchronously after the owning
// transaction commits.
func (s *Service) Subscribe(fn func(models.Event)) {
	s.sinks = append(s.sinks, fn)
}

//// Quote requests (operator)

func (s *Service) GetQuoteRequests(ctx context.Context, username string, limit, offset int, supplierId string, statuses []models.QuoteRequestStatus) ([]models.QuoteRequest, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetQuoteRequests: %w", err)
	}

	requests, err := s.repo.GetQuoteRequests(ctx, limit, offset, supplierId, statuses)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetQuoteRequests: %w", err)
	}
	return requests, nil
}

func (s *Service) GetQuoteRequest(ctx context.Context, username, requestId string) (models.QuoteRequest, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.GetQuoteRequest: %w", err)
	}

	req, err := s.repo.GetQuoteRequestByUUID(ctx, requestId, nil, false)
	if err != nil {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.GetQuoteRequest: %w", err)
	}

	req.Lines, err = s.repo.GetQuoteLines(ctx, req.Id, nil, false)
	if err != nil {
		return models.QuoteRequest{}, fmt.Errorf("service.Service.GetQuoteRequest: %w", err)
	}

	return req, nil
}

//// Purchase orders (operator)

func (s *Service) GetPurchaseOrders(ctx context.Context, username string, limit, offset int, supplierId string) ([]models.PurchaseOrder, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetPurchaseOrders: %w", err)
	}

	orders, err := s.repo.GetPurchaseOrders(ctx, limit, offset, supplierId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetPurchaseOrders: %w", err)
	}
	return orders, nil
}

func (s *Service) GetPurchaseOrder(ctx context.Context, username, orderId string) (models.PurchaseOrder, error) {
	_, err := s.userByUsername(ctx, username)
	if err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("service.Service.GetPurchaseOrder: %w", err)
	}

	order, err := s.repo.GetPurchaseOrderByUUID(ctx, orderId)
	if err != nil {
		return models.PurchaseOrder{}, fmt.Errorf("service.Service.GetPurchaseOrder: %w", err)
	}
	return order, nil
}

//// Service

// rescore re-runs the recommendation ranking over every received request
// inside the caller's transaction, so the "exactly one recommended" invariant
// moves atomically with the state change that triggered it.
func (s *Service) rescore(ctx context.Context, tx *sql.Tx) error {
	scores, err := s.repo.GetRequestScores(ctx, tx)
	if err != nil {
		return fmt.Errorf("service.Service.rescore: %w", err)
	}

	id, _ := scorer.Pick(scores)
	err = s.repo.SetRecommended(ctx, id, tx)
	if err != nil {
		return fmt.Errorf("service.Service.rescore: %w", err)
	}
	return nil
}

func (s *Service) userByUsername(ctx context.Context, username string) (models.User, error) {
	user, ok, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("service.Service.userByUsername: %w", err)
	}
	if !ok {
		return models.User{}, fmt.Errorf("service.Service.userByUsername: %w: %s", models.ErrInvalidUser, username)
	}
	return user, err
}

func (s *Service) offerURL(token string) string {
	return s.baseURL + "/offer/" + token
}

// notifyAsync delivers off the request path; failures are logged and never
// reach the caller.
func (s *Service) notifyAsync(destination, subject, body string) {
	go func() {
		err := s.notifier.Notify(destination, subject, body)
		if err != nil {
			log.Printf("service: notification to %s failed: %s", destination, err)
		}
	}()
}

func (s *Service) emit(events ...models.Event) {
	for _, event := range events {
		for _, sink := range s.sinks {
			sink(event)
		}
	}
}

func newEvent(t models.EventType) models.Event {
	return models.Event{
		Id:   uuid.NewString(),
		Type: t,
		At:   time.Now().UTC(),
	}
}
