package scoring

import "strings"

// SignalCounts tallies positive and negative keyword hits across a set of
// free-text survey fields.
type SignalCounts struct {
	Positive int `json:"positiveSignals"`
	Negative int `json:"negativeSignals"`
}

// Lexicon holds the keyword patterns scanned for in survey text. Terms are
// matched case-insensitively as substrings, in the operating language of the
// cooperative (Indonesian). Tests may substitute fixture lexicons.
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns the production keyword sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Negative: []string{
			"jelek",
			"buruk",
			"negatif",
			"sering telat",
			"sering terlambat",
			"nunggak",
			"menunggak",
			"macet",
			"diragukan",
			"kurang",
			"sengketa",
			"penipu",
			"tidak kooperatif",
		},
		Positive: []string{
			"baik",
			"aktif",
			"lancar",
			"disiplin",
			"jujur",
			"amanah",
			"dapat dipercaya",
			"terpercaya",
			"stabil",
			"tetap",
			"rukun",
			"harmonis",
			"kuat",
			"solid",
			"rajin",
		},
	}
}

// Extractor scans survey text for lexicon signals.
type Extractor struct {
	lexicon Lexicon
}

// NewExtractor constructs an Extractor with the given lexicon.
func NewExtractor(lexicon Lexicon) *Extractor {
	return &Extractor{lexicon: lexicon}
}

// Extract counts fields containing at least one negative term and fields
// containing at least one positive term. A single field may increment both
// counters; empty fields count toward neither. The result is independent of
// field ordering.
func (e *Extractor) Extract(fields []string) SignalCounts {
	var counts SignalCounts
	for _, field := range fields {
		text := strings.ToLower(strings.TrimSpace(field))
		if text == "" {
			continue
		}
		if matchesAny(text, e.lexicon.Negative) {
			counts.Negative++
		}
		if matchesAny(text, e.lexicon.Positive) {
			counts.Positive++
		}
	}
	return counts
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
