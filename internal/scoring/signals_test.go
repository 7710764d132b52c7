package scoring

import "testing"

func TestExtractCountsPerField(t *testing.T) {
	ex := NewExtractor(DefaultLexicon())
	counts := ex.Extract([]string{
		"Sholat rajin dan jujur",
		"Pernah menunggak di koperasi lain",
		"",
		"Keluarga rukun",
	})
	if counts.Positive != 2 {
		t.Fatalf("Positive = %d, want 2", counts.Positive)
	}
	if counts.Negative != 1 {
		t.Fatalf("Negative = %d, want 1", counts.Negative)
	}
}

func TestExtractOrderIndependent(t *testing.T) {
	ex := NewExtractor(DefaultLexicon())
	fields := []string{"pembayaran lancar", "sering telat bayar", "usaha stabil"}
	perms := [][]string{
		{fields[0], fields[1], fields[2]},
		{fields[2], fields[0], fields[1]},
		{fields[1], fields[2], fields[0]},
	}
	want := ex.Extract(perms[0])
	for i, perm := range perms[1:] {
		if got := ex.Extract(perm); got != want {
			t.Fatalf("permutation %d: got %+v, want %+v", i+1, got, want)
		}
	}
}

func TestExtractFieldCanHitBothLexicons(t *testing.T) {
	ex := NewExtractor(DefaultLexicon())
	counts := ex.Extract([]string{"dulu sering telat, sekarang lancar"})
	if counts.Positive != 1 || counts.Negative != 1 {
		t.Fatalf("got %+v, want one positive and one negative", counts)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	ex := NewExtractor(DefaultLexicon())
	counts := ex.Extract([]string{"MACET di bank lain"})
	if counts.Negative != 1 {
		t.Fatalf("Negative = %d, want 1", counts.Negative)
	}
}

func TestExtractFixtureLexicon(t *testing.T) {
	ex := NewExtractor(Lexicon{Positive: []string{"good"}, Negative: []string{"bad"}})
	counts := ex.Extract([]string{"good neighbour", "bad payer", "neither"})
	if counts.Positive != 1 || counts.Negative != 1 {
		t.Fatalf("got %+v, want {1 1}", counts)
	}
}
