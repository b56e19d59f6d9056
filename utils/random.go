package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const alnum = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomAlnum returns n random lowercase alphanumeric characters.
func RandomAlnum(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(alnum)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		b.WriteByte(alnum[idx.Int64()])
	}
	return b.String()
}

// RandomAlnumUpper returns n random uppercase alphanumeric characters.
func RandomAlnumUpper(n int) string {
	return strings.ToUpper(RandomAlnum(n))
}

// NormalizeCode canonicalizes an access code for comparison: trimmed and
// uppercased, matching the store's lookup semantics.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
