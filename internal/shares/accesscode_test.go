package shares_test

import (
	"strings"
	"testing"

	"github.com/docrelay/docrelay/internal/shares"
)

func TestGenerateAccessCode(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	t.Run("shape", func(t *testing.T) {
		for range 100 {
			code, err := shares.GenerateAccessCode()
			if err != nil {
				t.Fatalf("GenerateAccessCode: %v", err)
			}
			if len(code) != 8 {
				t.Fatalf("len(%q) = %d, want 8", code, len(code))
			}
			for _, r := range code {
				if !strings.ContainsRune(alphabet, r) {
					t.Fatalf("code %q contains %q outside alphabet", code, r)
				}
			}
		}
	})

	t.Run("characters drawn uniformly", func(t *testing.T) {
		counts := make(map[rune]int, len(alphabet))
		const codes = 20000
		for range codes {
			code, err := shares.GenerateAccessCode()
			if err != nil {
				t.Fatalf("GenerateAccessCode: %v", err)
			}
			for _, r := range code {
				counts[r]++
			}
		}

		// 160000 uniform draws average ~4444 per character with a
		// standard deviation near 66. Mapping raw bytes mod 36 would
		// push the first four characters to ~5000, so 4800 separates
		// the two cleanly.
		for _, r := range alphabet {
			if got := counts[r]; got < 4000 || got > 4800 {
				t.Errorf("character %q drawn %d times in 160000 samples, want near 4444", r, got)
			}
		}
	})

	t.Run("collision rate", func(t *testing.T) {
		seen := make(map[string]bool, 10000)
		collisions := 0
		for range 10000 {
			code, err := shares.GenerateAccessCode()
			if err != nil {
				t.Fatalf("GenerateAccessCode: %v", err)
			}
			if seen[code] {
				collisions++
			}
			seen[code] = true
		}

		// 36^8 codes makes even one collision in 10k draws vanishingly
		// unlikely; a handful signals broken randomness.
		if collisions > 2 {
			t.Errorf("%d collisions in 10000 codes", collisions)
		}
	})
}
