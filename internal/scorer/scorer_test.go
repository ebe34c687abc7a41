package scorer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

func TestPickEmpty(t *testing.T) {
	id, ok := Pick(nil)
	if ok || id != "" {
		t.Fatalf("empty candidate set should yield no pick, got '%s'", id)
	}
}

func TestPickSingle(t *testing.T) {
	id, ok := Pick([]models.RequestScore{{RequestId: "a"}})
	if !ok || id != "a" {
		t.Fatalf("expected 'a', got '%s' (ok=%v)", id, ok)
	}
}

func TestPickCriteria(t *testing.T) {
	day := func(n int) *time.Time {
		d := time.Date(2026, 9, n, 0, 0, 0, 0, time.UTC)
		return &d
	}
	total := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}

	cases := []struct {
		name     string
		cands    []models.RequestScore
		expected string
	}{
		{
			name: "more offered lines win",
			cands: []models.RequestScore{
				{RequestId: "a", OfferedLines: 2, OfferedTotal: total("10.00")},
				{RequestId: "b", OfferedLines: 3, OfferedTotal: total("900.00")},
			},
			expected: "b",
		},
		{
			name: "lower total breaks line tie",
			cands: []models.RequestScore{
				{RequestId: "a", OfferedLines: 2, OfferedTotal: total("500.00")},
				{RequestId: "b", OfferedLines: 2, OfferedTotal: total("499.99")},
			},
			expected: "b",
		},
		{
			name: "null total loses to any priced total",
			cands: []models.RequestScore{
				{RequestId: "a", OfferedLines: 1},
				{RequestId: "b", OfferedLines: 1, OfferedTotal: total("999999.99")},
			},
			expected: "b",
		},
		{
			name: "earlier delivery breaks total tie",
			cands: []models.RequestScore{
				{RequestId: "a", OfferedLines: 1, OfferedTotal: total("100.00"), DeliveryDate: day(20)},
				{RequestId: "b", OfferedLines: 1, OfferedTotal: total("100.00"), DeliveryDate: day(10)},
			},
			expected: "b",
		},
		{
			name: "null delivery date counts as latest",
			cands: []models.RequestScore{
				{RequestId: "a", OfferedLines: 1, OfferedTotal: total("100.00")},
				{RequestId: "b", OfferedLines: 1, OfferedTotal: total("100.00"), DeliveryDate: day(28)},
			},
			expected: "b",
		},
		{
			name: "lowest id is the final tie break",
			cands: []models.RequestScore{
				{RequestId: "b", OfferedLines: 1, OfferedTotal: total("100.00"), DeliveryDate: day(10)},
				{RequestId: "a", OfferedLines: 1, OfferedTotal: total("100.00"), DeliveryDate: day(10)},
			},
			expected: "a",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := Pick(tc.cands)
			if !ok {
				t.Fatal("expected a pick")
			}
			if id != tc.expected {
				t.Fatalf("expected '%s', got '%s'", tc.expected, id)
			}
		})
	}
}

func TestPickOrderIndependent(t *testing.T) {
	cands := []models.RequestScore{
		{RequestId: "a", OfferedLines: 1},
		{RequestId: "b", OfferedLines: 2},
		{RequestId: "c", OfferedLines: 2, OfferedTotal: decimal.NewNullDecimal(decimal.NewFromInt(50))},
	}

	expected, _ := Pick(cands)

	// rotate the slice and make sure the pick never changes
	for i := 0; i < len(cands); i++ {
		rotated := append(append([]models.RequestScore{}, cands[i:]...), cands[:i]...)
		id, ok := Pick(rotated)
		if !ok || id != expected {
			t.Fatalf("rotation %d changed the pick: expected '%s', got '%s'", i, expected, id)
		}
	}
}
