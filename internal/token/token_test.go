package token

import "testing"

func TestNew(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != Bytes*2 {
		t.Fatalf("expected token of %d hex chars, got %d", Bytes*2, len(tok))
	}

	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("token contains non-hex character %q", c)
		}
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := New()
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = true
	}
}
