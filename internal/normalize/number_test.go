package normalize

import "testing"

func TestNumberLikeStrings(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234.56", 1234.56},
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1.234.567,89", 1234567.89},
		{"1,234,567.89", 1234567.89},
		{"2,50", 2.50},
		{"1.000", 1000},
		{"1 234,56", 1234.56},
		{"0", 0},
		{"-42.5", -42.5},
		{"15", 15},
	}
	for _, tc := range cases {
		got := NumberLike(tc.in)
		if got == nil {
			t.Errorf("NumberLike(%q) = nil, want %v", tc.in, tc.want)
			continue
		}
		if *got != tc.want {
			t.Errorf("NumberLike(%q) = %v, want %v", tc.in, *got, tc.want)
		}
	}
}

func TestNumberLikeNative(t *testing.T) {
	got := NumberLike(float64(99.5))
	if got == nil || *got != 99.5 {
		t.Fatalf("NumberLike(99.5) = %v, want 99.5", got)
	}
}

func TestNumberLikeAbsent(t *testing.T) {
	// Failed parses are absent, never zero.
	for _, in := range []any{"", "   ", "abc", "12abc", nil, true, []any{}} {
		if got := NumberLike(in); got != nil {
			t.Errorf("NumberLike(%v) = %v, want nil", in, *got)
		}
	}
}

func TestStringLike(t *testing.T) {
	if got := StringLike("  INV-1  "); got != "INV-1" {
		t.Errorf("StringLike trimmed = %q, want %q", got, "INV-1")
	}
	if got := StringLike(float64(42)); got != "42" {
		t.Errorf("StringLike(42) = %q, want %q", got, "42")
	}
	if got := StringLike(nil); got != "" {
		t.Errorf("StringLike(nil) = %q, want empty", got)
	}
}
