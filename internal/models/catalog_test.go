package models

import "testing"

func TestUnderstocked(t *testing.T) {
	cases := []struct {
		name     string
		product  Product
		expected bool
	}{
		{"below threshold", Product{Stock: 2, ReorderPoint: 10}, true},
		{"at threshold", Product{Stock: 10, ReorderPoint: 10}, true},
		{"above threshold", Product{Stock: 11, ReorderPoint: 10}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.product.Understocked(); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
