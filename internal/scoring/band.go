package scoring

// Band is the four-level qualitative grouping of a numeric average rating.
type Band string

const (
	BandSangatBaik Band = "sangat_baik"
	BandBaik       Band = "baik"
	BandCukup      Band = "cukup"
	BandKurang     Band = "kurang"
)

// BandFor maps an average rating onto a band. Boundaries are inclusive at
// the lower bound of each band.
func BandFor(average float64) Band {
	switch {
	case average >= 4.2:
		return BandSangatBaik
	case average >= 3.5:
		return BandBaik
	case average >= 2.5:
		return BandCukup
	default:
		return BandKurang
	}
}
