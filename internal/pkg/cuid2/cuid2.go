// Package cuid2 generates short, prefixed, URL-safe identifiers.
package cuid2

import (
	crypto_rand "crypto/rand"
	"strings"
	"time"
)

// Base62 alphabet: 0-9, A-Z, a-z (62 characters)
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	timestampLength     = 6
	defaultSortableRand = 18
	defaultRandomLength = 24
	maxAcceptedIDLength = 64
)

// EncodeTimestampBase62 encodes a Unix timestamp (seconds) as a 6-character base62 string.
// Produces lexicographically sortable output for timestamps.
//
// Range: 0 to ~56 billion seconds (~1800 years from Unix epoch)
func EncodeTimestampBase62(timestampSeconds int64) string {
	n := timestampSeconds
	result := make([]byte, timestampLength)
	for i := timestampLength - 1; i >= 0; i-- {
		result[i] = base62Alphabet[n%62]
		n = n / 62
	}
	return string(result)
}

// randomBase62 returns length uniformly distributed base62 characters.
//
// Bits are taken 6 at a time and values >= 62 are rejected.
func randomBase62(length int) string {
	bytes := make([]byte, (length*6)/8+4)
	if _, err := crypto_rand.Read(bytes); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}

	var result strings.Builder
	result.Grow(length)
	bitBuffer := uint64(0)
	bitsInBuffer := uint(0)
	byteIndex := 0

	for result.Len() < length {
		for bitsInBuffer < 6 && byteIndex < len(bytes) {
			bitBuffer = (bitBuffer << 8) | uint64(bytes[byteIndex])
			bitsInBuffer += 8
			byteIndex++
		}

		value := (bitBuffer >> (bitsInBuffer - 6)) & 0x3f
		bitsInBuffer -= 6
		if value < 62 {
			result.WriteByte(base62Alphabet[value])
		}

		if byteIndex >= len(bytes) && bitsInBuffer < 6 && result.Len() < length {
			if _, err := crypto_rand.Read(bytes); err != nil {
				panic("failed to read random bytes: " + err.Error())
			}
			byteIndex = 0
			bitBuffer = 0
			bitsInBuffer = 0
		}
	}

	return result.String()
}

// Options for generating prefixed IDs.
type Options struct {
	// Random drops the timestamp prefix.
	Random bool
	// Length of the random portion (default: 18 with timestamp, 24 otherwise).
	Length int
}

// New generates a time-sortable ID such as "req_0CL2KwaB3cD5eF7gH9iJ1k".
func New(prefix string) string {
	return NewWithOptions(prefix, Options{})
}

// NewWithOptions generates a prefixed ID.
func NewWithOptions(prefix string, options Options) string {
	length := options.Length
	if options.Random {
		if length <= 0 {
			length = defaultRandomLength
		}
		return prefix + "_" + randomBase62(length)
	}

	if length <= 0 {
		length = defaultSortableRand
	}
	return prefix + "_" + EncodeTimestampBase62(time.Now().Unix()) + randomBase62(length)
}

// Valid reports whether id is safe to echo back as an identifier: non-empty,
// bounded in length, and made of base62 characters, '_' and '-'.
func Valid(id string) bool {
	if id == "" || len(id) > maxAcceptedIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '_' || c == '-' || strings.IndexByte(base62Alphabet, c) >= 0 {
			continue
		}
		return false
	}
	return true
}
