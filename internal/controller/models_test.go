package controller

import (
	"testing"
	"time"
)

func TestParseSubmitOfferReq(t *testing.T) {
	body := `
	{
		"deliveryDate": "2026-09-15",
		"lines": [
			{"lineId": "l1", "available": true, "unitPrice": "12.50", "quantity": 40},
			{"lineId": "l2", "available": true, "unitPrice": 8},
			{"lineId": "l3", "available": false}
		]
	}`

	sub, err := ParseSubmitOfferReq([]byte(body))
	if err != nil {
		t.Fatal(err)
	}

	expected := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !sub.DeliveryDate.Equal(expected) {
		t.Errorf("expected delivery date %s, got %s", expected, sub.DeliveryDate)
	}
	if len(sub.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(sub.Lines))
	}

	if !sub.Lines[0].UnitPrice.Valid || sub.Lines[0].UnitPrice.Decimal.String() != "12.5" {
		t.Errorf("line l1 price parsed wrong: %v", sub.Lines[0].UnitPrice)
	}
	if sub.Lines[0].Quantity == nil || *sub.Lines[0].Quantity != 40 {
		t.Errorf("line l1 quantity parsed wrong: %v", sub.Lines[0].Quantity)
	}
	if sub.Lines[1].Quantity != nil {
		t.Errorf("line l2 should have no quantity, got %d", *sub.Lines[1].Quantity)
	}
	if sub.Lines[2].Available {
		t.Error("line l3 should be unavailable")
	}
	if sub.Lines[2].UnitPrice.Valid {
		t.Error("line l3 should have no price")
	}
}

func TestParseSubmitOfferReqErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"broken json", `{`},
		{"missing delivery date", `{"lines": [{"lineId": "l1", "available": true, "unitPrice": 1}]}`},
		{"malformed delivery date", `{"deliveryDate": "15.09.2026", "lines": [{"lineId": "l1", "available": true, "unitPrice": 1}]}`},
		{"no lines", `{"deliveryDate": "2026-09-15", "lines": []}`},
		{"empty line id", `{"deliveryDate": "2026-09-15", "lines": [{"available": true, "unitPrice": 1}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSubmitOfferReq([]byte(tc.body))
			if err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}
