package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

func (h Hash) String() string { return string(h) }

// Short returns the first 16 hex characters, enough for cache keys.
func (h Hash) Short() string {
	if len(h) < 16 {
		return string(h)
	}
	return string(h[:16])
}

// ComputeQueryHash hashes a set of request parameters independent of map order.
func ComputeQueryHash(params map[string]string) Hash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte('=')
		data.WriteString(params[key])
		data.WriteByte(';')
	}
	return NewHash([]byte(data.String()))
}
