package utils

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for request ids, senders and recipients.
type IDGenerator func() string

// GenerateID returns a random (v4) UUID string.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateRequestID creates a new random request ID
func GenerateRequestID() string {
	return GenerateID()
}

// SecureCompareString compares two strings in constant time to prevent timing attacks
func SecureCompareString(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
