package compiler

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash is sha256 of the output bytes.
func ContentHash(output string) [32]byte {
	return sha256.Sum256([]byte(output))
}

// HashToHex converts a 32-byte hash to lowercase hex.
func HashToHex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

// HexToHash parses a 64-character hex string to a 32-byte hash.
func HexToHash(s string) ([32]byte, bool) {
	var h [32]byte
	if len(s) != 64 {
		return h, false
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, false
	}
	return h, true
}
