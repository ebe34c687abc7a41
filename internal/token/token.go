// Package token generates the single-use access tokens embedded in supplier
// offer links.
package token

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
)

// Bytes of entropy per token. 32 bytes keeps the link unguessable even if an
// attacker can enumerate responses offline.
const Bytes = 32

func New() (string, error) {
	var b [Bytes]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("token.New: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
