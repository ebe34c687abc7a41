package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
	"partsrfq/internal/token"
)

func TestAddQuoteRequest(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	req := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0], cat.Products[1])

	if req.Status != models.RequestAwaitingSupplier {
		t.Errorf("Expected new request status '%s', got '%s'", models.RequestAwaitingSupplier, req.Status)
	}
	if len(req.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(req.Lines))
	}
	for _, line := range req.Lines {
		if line.Status != models.LinePending {
			t.Errorf("Expected new line status '%s', got '%s'", models.LinePending, line.Status)
		}
		if line.RequestedQty <= 0 {
			t.Errorf("Expected positive requested quantity, got %d", line.RequestedQty)
		}
	}

	// second live request for the same supplier must hit the partial unique index
	tok, err := token.New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = repo.AddQuoteRequest(ctx, models.QuoteRequest{
		SupplierId:  cat.Suppliers[0].Id,
		AccessToken: tok,
		Lines:       []models.QuoteLine{{ProductId: cat.Products[0].Id, RequestedQty: 10}},
	})
	if !errors.Is(err, models.ErrDuplicateRequest) {
		t.Fatalf("Expected ErrDuplicateRequest, got %v", err)
	}
}

func TestSupplierHasLiveRequest(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)

	has, err := repo.SupplierHasLiveRequest(ctx, cat.Suppliers[0].Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("Supplier without requests reported as having a live one")
	}

	req := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0])

	has, err = repo.SupplierHasLiveRequest(ctx, cat.Suppliers[0].Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("Supplier with an awaiting request reported as free")
	}

	// terminal request does not count as live
	err = repo.SetRequestStatus(ctx, req.Id, models.RequestCancelled, nil)
	if err != nil {
		t.Fatal(err)
	}

	has, err = repo.SupplierHasLiveRequest(ctx, cat.Suppliers[0].Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("Supplier with only a cancelled request reported as having a live one")
	}
}

func TestGetQuoteRequestByToken(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	req := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0])

	found, err := repo.GetQuoteRequestByToken(ctx, req.AccessToken, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if found.Id != req.Id {
		t.Errorf("Expected request '%s', got '%s'", req.Id, found.Id)
	}

	_, err = repo.GetQuoteRequestByToken(ctx, "bogus", nil, false)
	if !errors.Is(err, models.ErrNoToken) {
		t.Fatalf("Expected ErrNoToken, got %v", err)
	}
}

func TestGetQuoteRequests(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	req0 := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0])
	req1 := AddTestRequest(t, repo, cat.Suppliers[1].Id, cat.Products[0], cat.Products[2])
	AddTestRequest(t, repo, cat.Suppliers[2].Id, cat.Products[2])

	// no filters
	requests, err := repo.GetQuoteRequests(ctx, 0, 0, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(requests))
	}

	// supplier filter
	requests, err = repo.GetQuoteRequests(ctx, 0, 0, cat.Suppliers[1].Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 1 || requests[0].Id != req1.Id {
		t.Fatalf("Supplier filter returned wrong result: %v", requests)
	}

	// status filter
	err = repo.SetRequestStatus(ctx, req0.Id, models.RequestCancelled, nil)
	if err != nil {
		t.Fatal(err)
	}

	requests, err = repo.GetQuoteRequests(ctx, 0, 0, "", []models.QuoteRequestStatus{models.RequestCancelled})
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 1 || requests[0].Id != req0.Id {
		t.Fatalf("Status filter returned wrong result: %v", requests)
	}

	// pagination
	requests, err = repo.GetQuoteRequests(ctx, 2, 0, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 2 {
		t.Fatalf("Expected 2 requests with limit 2, got %d", len(requests))
	}

	requests, err = repo.GetQuoteRequests(ctx, 0, 2, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 1 {
		t.Fatalf("Expected 1 request with offset 2, got %d", len(requests))
	}
}

func TestRecomputeOfferedTotal(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	req := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0], cat.Products[1])

	// line 0: 12.50 x requested lot (50) = 625.00
	err := repo.UpdateLineOffer(ctx, req.Lines[0].Id, models.LineOffered,
		decimal.NewNullDecimal(decimal.RequireFromString("12.50")), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// line 1: 3.00 x offered qty 10 = 30.00
	qty := 10
	err = repo.UpdateLineOffer(ctx, req.Lines[1].Id, models.LineOffered,
		decimal.NewNullDecimal(decimal.RequireFromString("3.00")), &qty, nil)
	if err != nil {
		t.Fatal(err)
	}

	err = repo.RecomputeOfferedTotal(ctx, req.Id, []models.QuoteLineStatus{models.LineOffered}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetQuoteRequestByUUID(ctx, req.Id, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	expected := decimal.RequireFromString("655.00")
	if !got.OfferedTotal.Valid || !got.OfferedTotal.Decimal.Equal(expected) {
		t.Fatalf("Expected offered total %s, got %v", expected, got.OfferedTotal)
	}

	// unavailable lines fall out of the total
	err = repo.UpdateLineOffer(ctx, req.Lines[1].Id, models.LineUnavailable, decimal.NullDecimal{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = repo.RecomputeOfferedTotal(ctx, req.Id, []models.QuoteLineStatus{models.LineOffered}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err = repo.GetQuoteRequestByUUID(ctx, req.Id, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	expected = decimal.RequireFromString("625.00")
	if !got.OfferedTotal.Valid || !got.OfferedTotal.Decimal.Equal(expected) {
		t.Fatalf("Expected offered total %s, got %v", expected, got.OfferedTotal)
	}
}

func TestRequestScoresAndRecommended(t *testing.T) {
	ctx := context.Background()
	repo := OpenTestRepo(t)
	defer repo.Close()

	cat := SeedTestCatalog(t, repo)
	req0 := AddTestRequest(t, repo, cat.Suppliers[0].Id, cat.Products[0])
	req1 := AddTestRequest(t, repo, cat.Suppliers[1].Id, cat.Products[0])

	// only received requests score
	scores, err := repo.GetRequestScores(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 0 {
		t.Fatalf("Awaiting requests should not score, got %d entries", len(scores))
	}

	deadline := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	for _, req := range []models.QuoteRequest{req0, req1} {
		err = repo.UpdateLineOffer(ctx, req.Lines[0].Id, models.LineOffered,
			decimal.NewNullDecimal(decimal.RequireFromString("5.00")), nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		err = repo.RecomputeOfferedTotal(ctx, req.Id, []models.QuoteLineStatus{models.LineOffered}, nil)
		if err != nil {
			t.Fatal(err)
		}
		err = repo.FinalizeSubmission(ctx, req.Id, deadline, nil)
		if err != nil {
			t.Fatal(err)
		}
	}

	scores, err = repo.GetRequestScores(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 scores, got %d", len(scores))
	}
	for _, score := range scores {
		if score.OfferedLines != 1 {
			t.Errorf("Expected 1 offered line in score, got %d", score.OfferedLines)
		}
		if !score.OfferedTotal.Valid {
			t.Error("Expected a priced total in score")
		}
		if score.DeliveryDate == nil || !score.DeliveryDate.Equal(deadline) {
			t.Errorf("Expected delivery date %s in score, got %v", deadline, score.DeliveryDate)
		}
	}

	// raise flag on req0, then move it to req1
	recommendedCount := func() (count int, recommendedId string) {
		requests, err := repo.GetQuoteRequests(ctx, 0, 0, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, req := range requests {
			if req.Recommended {
				count++
				recommendedId = req.Id
			}
		}
		return count, recommendedId
	}

	err = repo.SetRecommended(ctx, req0.Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	count, id := recommendedCount()
	if count != 1 || id != req0.Id {
		t.Fatalf("Expected only '%s' recommended, got count=%d id=%s", req0.Id, count, id)
	}

	err = repo.SetRecommended(ctx, req1.Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	count, id = recommendedCount()
	if count != 1 || id != req1.Id {
		t.Fatalf("Expected only '%s' recommended, got count=%d id=%s", req1.Id, count, id)
	}

	// empty id clears every flag
	err = repo.SetRecommended(ctx, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	count, _ = recommendedCount()
	if count != 0 {
		t.Fatalf("Expected no recommended requests after clear, got %d", count)
	}
}
