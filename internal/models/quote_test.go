package models

import "testing"

func TestRequestStatusTerminal(t *testing.T) {
	live := []QuoteRequestStatus{RequestAwaitingSupplier, RequestReceived}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("status '%s' should not be terminal", s)
		}
	}

	terminal := []QuoteRequestStatus{RequestAwarded, RequestCancelled, RequestNoLiveLines, RequestExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("status '%s' should be terminal", s)
		}
	}
}

func TestLineStatusLive(t *testing.T) {
	live := []QuoteLineStatus{LinePending, LineOffered}
	for _, s := range live {
		if !s.Live() {
			t.Errorf("status '%s' should be live", s)
		}
	}

	settled := []QuoteLineStatus{LineUnavailable, LineWon, LineLostToRival, LineCancelled}
	for _, s := range settled {
		if s.Live() {
			t.Errorf("status '%s' should not be live", s)
		}
	}
}

func TestEffectiveQty(t *testing.T) {
	qty := func(n int) *int { return &n }

	cases := []struct {
		name     string
		line     QuoteLine
		expected int
	}{
		{"no offered qty", QuoteLine{RequestedQty: 50}, 50},
		{"offered qty overrides", QuoteLine{RequestedQty: 50, OfferedQty: qty(30)}, 30},
		{"zero offered qty ignored", QuoteLine{RequestedQty: 50, OfferedQty: qty(0)}, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.line.EffectiveQty(); got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestValidStatuses(t *testing.T) {
	if ValidQuoteRequestStatus("None") {
		t.Error("'None' should not be a valid request status")
	}
	if ValidQuoteLineStatus("None") {
		t.Error("'None' should not be a valid line status")
	}
	if !ValidQuoteRequestStatus(RequestReceived) {
		t.Error("'Received' should be a valid request status")
	}
	if !ValidQuoteLineStatus(LineOffered) {
		t.Error("'Offered' should be a valid line status")
	}
}
