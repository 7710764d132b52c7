package scoring

import "strconv"

// FormatRupiah renders an amount with the Indonesian thousands-dot
// convention, e.g. 1500000 -> "Rp1.500.000". Fractions are truncated; the
// upstream data carries whole-rupiah amounts.
func FormatRupiah(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(int64(amount), 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	if negative {
		return "-Rp" + string(out)
	}
	return "Rp" + string(out)
}
