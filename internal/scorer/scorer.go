// Package scorer ranks received quote requests and picks the one to flag as
// recommended. The ranking is a total order, so the result only depends on the
// candidate set, never on iteration order.
package scorer

import (
	"time"

	"github.com/shopspring/decimal"

	"partsrfq/internal/models"
)

// Pick returns the id of the request to recommend, or ok == false when the
// candidate set is empty.
//
// Criteria, applied in order until one breaks the tie:
//  1. more lines in state Offered
//  2. lower offered total (null counts as infinitely expensive)
//  3. earlier requested delivery date (null counts as latest)
//  4. lowest request id
func Pick(cands []models.RequestScore) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best.RequestId, true
}

func better(a, b models.RequestScore) bool {
	if a.OfferedLines != b.OfferedLines {
		return a.OfferedLines > b.OfferedLines
	}
	if cmp := compareTotals(a.OfferedTotal, b.OfferedTotal); cmp != 0 {
		return cmp < 0
	}
	if cmp := compareDates(a.DeliveryDate, b.DeliveryDate); cmp != 0 {
		return cmp < 0
	}
	return a.RequestId < b.RequestId
}

func compareTotals(a, b decimal.NullDecimal) int {
	switch {
	case a.Valid && b.Valid:
		return a.Decimal.Cmp(b.Decimal)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

func compareDates(a, b *time.Time) int {
	switch {
	case a != nil && b != nil:
		if a.Before(*b) {
			return -1
		}
		if b.Before(*a) {
			return 1
		}
		return 0
	case a != nil:
		return -1
	case b != nil:
		return 1
	default:
		return 0
	}
}
