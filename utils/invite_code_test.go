package utils

import (
	"strings"
	"testing"
)

func TestGenerateCommunityCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateCommunityCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != CommunityCodeLength {
			t.Fatalf("expected %d chars, got %q", CommunityCodeLength, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains invalid character %q", code, c)
			}
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code %q is not uppercase", code)
		}
	}
}

func TestGenerateCommunityCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCommunityCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from 36^6 values colliding down to a handful would mean
	// the generator is broken
	if len(seen) < 45 {
		t.Fatalf("expected mostly unique codes, got %d distinct of 50", len(seen))
	}
}

func TestNormalizeCommunityCode(t *testing.T) {
	cases := map[string]string{
		"runners":  "RUNNERS",
		" AB12cd ": "AB12CD",
		"XYZ789":   "XYZ789",
	}
	for in, want := range cases {
		if got := NormalizeCommunityCode(in); got != want {
			t.Errorf("NormalizeCommunityCode(%q) = %q, want %q", in, got, want)
		}
	}
}
