package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a hex SHA-256 digest used to compare row contents
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}
