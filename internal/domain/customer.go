package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GuestCustomerID derives a stable synthetic customer id from a guest's
// contact details, so repeat orders by the same unauthenticated contact are
// attributable to one identity. The derivation is deterministic: normalized
// email and phone are hashed together, and the first 16 hex characters are
// used with a "guest-" prefix.
//
// Normalization: email is lowercased and trimmed; phone keeps digits only,
// so "+91 98765-43210" and "9876543210" with a country prefix typed
// differently still collide when the digits match.
func GuestCustomerID(email, phone string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	p := normalizePhone(phone)

	sum := sha256.Sum256([]byte(e + "|" + p))
	return "guest-" + hex.EncodeToString(sum[:])[:16]
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
