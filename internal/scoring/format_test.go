package scoring

import "testing"

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "Rp0"},
		{950, "Rp950"},
		{1_000, "Rp1.000"},
		{1_234_567, "Rp1.234.567"},
		{1_500_000_000, "Rp1.500.000.000"},
		{-750_000, "-Rp750.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.amount); got != tc.want {
			t.Fatalf("FormatRupiah(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
