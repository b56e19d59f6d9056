package utils

import (
	"regexp"
	"testing"
)

func TestRandomAlnum(t *testing.T) {
	lower := regexp.MustCompile(`^[a-z0-9]+$`)
	upper := regexp.MustCompile(`^[A-Z0-9]+$`)

	for _, n := range []int{1, 6, 9} {
		if got := RandomAlnum(n); len(got) != n || !lower.MatchString(got) {
			t.Fatalf("RandomAlnum(%d) = %q", n, got)
		}
		if got := RandomAlnumUpper(n); len(got) != n || !upper.MatchString(got) {
			t.Fatalf("RandomAlnumUpper(%d) = %q", n, got)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  gg-abc123 "); got != "GG-ABC123" {
		t.Fatalf("NormalizeCode = %q", got)
	}
}
