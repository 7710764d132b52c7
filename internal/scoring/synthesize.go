package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	RecommendationLayak        = "layak"
	RecommendationPertimbangan = "pertimbangan"
	RecommendationTidakLayak   = "tidak_layak"
)

// CharacterSurvey carries the free-text notes collected during the 5C
// character survey.
type CharacterSurvey struct {
	Religious          string   `json:"keagamaan"`
	Experience         string   `json:"pengalaman"`
	CommunityRelations string   `json:"hubunganMasyarakat"`
	LoanCharacter      string   `json:"karakterPinjaman"`
	Notes              string   `json:"catatan"`
	Additional         []string `json:"tambahan,omitempty"`
}

// Fields flattens the survey into the text fields scanned for signals.
func (s CharacterSurvey) Fields() []string {
	fields := []string{s.Religious, s.Experience, s.CommunityRelations, s.LoanCharacter, s.Notes}
	return append(fields, s.Additional...)
}

// PlannedLoan is the applicant's requested financing with its estimated
// monthly installment.
type PlannedLoan struct {
	Amount      float64 `json:"pengajuan"`
	TermMonths  int     `json:"jangkaWaktu"`
	Installment float64 `json:"estimasiAngsuran"`
}

// Input is everything the synthesizer considers for one decision. Optional
// parts are pointers; absence is never an error.
type Input struct {
	AverageScore      float64
	Survey            CharacterSurvey
	SurveyRatings     []string
	AssessmentAverage *float64
	SubAnalysis       *AffordabilityResult
	Planned           *PlannedLoan
}

// Outcome is the synthesized recommendation with its audit trail.
type Outcome struct {
	Band           Band         `json:"band"`
	Recommendation string       `json:"recommendation"`
	Narrative      string       `json:"summary"`
	Factors        []string     `json:"factors"`
	Signals        SignalCounts `json:"signals"`
}

// Synthesizer combines survey ratings, text signals and capacity figures
// into a recommendation band plus narrative. Stateless and safe for
// concurrent use.
type Synthesizer struct {
	extractor *Extractor
}

// NewSynthesizer constructs a Synthesizer scanning text with the given
// lexicon.
func NewSynthesizer(lexicon Lexicon) *Synthesizer {
	return &Synthesizer{extractor: NewExtractor(lexicon)}
}

// overrideRule is one step of the ordered decision sequence. Rules are
// evaluated top to bottom against the current state; each applicable rule
// overwrites the recommendation, so the last applicable rule wins.
type overrideRule struct {
	name    string
	applies func(st decisionState) bool
	outcome string
}

type decisionState struct {
	band           Band
	signals        SignalCounts
	ratio          float64
	ratioDefined   bool
	recommendation string
}

func decisionRules() []overrideRule {
	return []overrideRule{
		{
			name: "baseline_layak",
			applies: func(st decisionState) bool {
				return st.band == BandSangatBaik || (st.band == BandBaik && st.signals.Negative == 0)
			},
			outcome: RecommendationLayak,
		},
		{
			name: "baseline_cukup",
			applies: func(st decisionState) bool {
				return st.band == BandCukup
			},
			outcome: RecommendationPertimbangan,
		},
		{
			name: "baseline_tidak_layak",
			applies: func(st decisionState) bool {
				return st.band == BandKurang || st.signals.Negative >= 2
			},
			outcome: RecommendationTidakLayak,
		},
		{
			name: "capacity_too_heavy",
			applies: func(st decisionState) bool {
				return st.ratioDefined && st.ratio > 0.6
			},
			outcome: RecommendationTidakLayak,
		},
		{
			name: "capacity_strain_downgrade",
			applies: func(st decisionState) bool {
				return st.ratioDefined && st.ratio > 0.45 && st.recommendation == RecommendationLayak
			},
			outcome: RecommendationPertimbangan,
		},
		{
			name: "capacity_safeguard_partial",
			applies: func(st decisionState) bool {
				return st.ratioDefined && st.ratio <= 0.10 && st.recommendation == RecommendationTidakLayak &&
					(st.signals.Negative >= 2 || st.band == BandKurang)
			},
			outcome: RecommendationPertimbangan,
		},
		{
			name: "capacity_safeguard_full",
			applies: func(st decisionState) bool {
				return st.ratioDefined && st.ratio <= 0.10 && st.recommendation == RecommendationTidakLayak &&
					st.signals.Negative < 2 && st.band != BandKurang
			},
			outcome: RecommendationLayak,
		},
	}
}

// Synthesize runs the full decision sequence. It is a total function:
// absent or zero fields weaken the narrative but never fail.
func (s *Synthesizer) Synthesize(in Input) Outcome {
	band := BandFor(in.AverageScore)
	signals := s.extractor.Extract(in.Survey.Fields())

	st := decisionState{
		band:           band,
		signals:        signals,
		recommendation: RecommendationPertimbangan,
	}

	if in.SubAnalysis != nil && in.Planned != nil && in.Planned.Installment > 0 {
		if ratio, err := AffordabilityRatio(in.Planned.Installment, in.SubAnalysis.NetIncome); err == nil {
			st.ratio = ratio
			st.ratioDefined = true
		}
	}

	for _, rule := range decisionRules() {
		if rule.applies(st) {
			st.recommendation = rule.outcome
		}
	}

	return Outcome{
		Band:           band,
		Recommendation: st.recommendation,
		Narrative:      buildNarrative(in, st),
		Factors:        buildFactors(in, st),
		Signals:        signals,
	}
}

func buildFactors(in Input, st decisionState) []string {
	factors := []string{
		"band=" + string(st.band),
		"positiveSignals=" + strconv.Itoa(st.signals.Positive),
		"negativeSignals=" + strconv.Itoa(st.signals.Negative),
	}
	if in.SubAnalysis != nil {
		factors = append(factors,
			"pendapatanBersih="+formatAmountFactor(in.SubAnalysis.NetIncome),
			"angsuranMaksimal="+formatAmountFactor(in.SubAnalysis.MaxInstallment),
		)
	}
	return factors
}

func formatAmountFactor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func buildNarrative(in Input, st decisionState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "REKOMENDASI: %s\n", strings.ToUpper(st.recommendation))
	fmt.Fprintf(&b, "Skor rata-rata karakter: %.2f (%s)\n", in.AverageScore, st.band)
	if in.AssessmentAverage != nil {
		fmt.Fprintf(&b, "Skor rata-rata penilaian tambahan: %.2f\n", *in.AssessmentAverage)
	}

	if len(in.SurveyRatings) > 0 {
		dist := ratingDistribution(in.SurveyRatings)
		fmt.Fprintf(&b, "Sebaran penilaian surveyor: Baik=%d, Cukup=%d, Kurang=%d, Jelek=%d\n",
			dist["baik"], dist["cukup"], dist["kurang"], dist["jelek"])
	}

	writeCharacterLines(&b, in.Survey)

	if in.SubAnalysis != nil {
		sub := in.SubAnalysis
		b.WriteString("Analisis kapasitas:\n")
		fmt.Fprintf(&b, "- Pendapatan bersih: %s\n", FormatRupiah(sub.NetIncome))
		fmt.Fprintf(&b, "- Angsuran maksimal: %s\n", FormatRupiah(sub.MaxInstallment))
		fmt.Fprintf(&b, "- Plafon maksimal: %s\n", FormatRupiah(sub.MaxLoanPrincipal))
		fmt.Fprintf(&b, "- Jangka pembiayaan: %d bulan\n", sub.TermMonths)
		if sub.NetIncome > 0 {
			fmt.Fprintf(&b, "- Rasio angsuran maksimal terhadap pendapatan: %.1f%%\n",
				sub.MaxInstallment/sub.NetIncome*100)
		}
	}

	if in.Planned != nil {
		b.WriteString("Rencana pembiayaan:\n")
		fmt.Fprintf(&b, "- Jumlah pengajuan: %s\n", FormatRupiah(in.Planned.Amount))
		fmt.Fprintf(&b, "- Jangka waktu: %d bulan\n", in.Planned.TermMonths)
		fmt.Fprintf(&b, "- Estimasi angsuran: %s\n", FormatRupiah(in.Planned.Installment))
		if st.ratioDefined {
			fmt.Fprintf(&b, "- Rasio angsuran: %.1f%% (%s)\n", st.ratio*100, ratioTier(st.ratio))
		} else {
			b.WriteString("- Rasio angsuran: tidak terdefinisi\n")
		}
	}

	b.WriteString(actionLine(st.recommendation))
	return b.String()
}

func writeCharacterLines(b *strings.Builder, survey CharacterSurvey) {
	lines := []struct {
		label string
		value string
	}{
		{"Keagamaan", survey.Religious},
		{"Pengalaman", survey.Experience},
		{"Hubungan masyarakat", survey.CommunityRelations},
		{"Karakter pinjaman", survey.LoanCharacter},
		{"Catatan", survey.Notes},
	}

	wroteHeader := false
	writeHeader := func() {
		if !wroteHeader {
			b.WriteString("Catatan karakter:\n")
			wroteHeader = true
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line.value) == "" {
			continue
		}
		writeHeader()
		fmt.Fprintf(b, "- %s: %s\n", line.label, strings.TrimSpace(line.value))
	}
	for i, extra := range survey.Additional {
		if strings.TrimSpace(extra) == "" {
			continue
		}
		writeHeader()
		fmt.Fprintf(b, "- Tambahan %d: %s\n", i+1, strings.TrimSpace(extra))
	}
}

func ratingDistribution(ratings []string) map[string]int {
	dist := map[string]int{"baik": 0, "cukup": 0, "kurang": 0, "jelek": 0}
	for _, r := range ratings {
		key := strings.ToLower(strings.TrimSpace(r))
		if _, ok := dist[key]; ok {
			dist[key]++
		}
	}
	return dist
}

func ratioTier(ratio float64) string {
	switch {
	case ratio <= 0.10:
		return "sangat kuat"
	case ratio <= 0.45:
		return "memadai"
	case ratio <= 0.60:
		return "mulai berat"
	default:
		return "terlalu berat"
	}
}

func actionLine(recommendation string) string {
	switch recommendation {
	case RecommendationLayak:
		return "Tindak lanjut: lanjutkan ke tahap persetujuan dengan plafon sesuai kapasitas."
	case RecommendationTidakLayak:
		return "Tindak lanjut: tolak pengajuan atau minta perbaikan persyaratan terlebih dahulu."
	default:
		return "Tindak lanjut: lakukan verifikasi lapangan tambahan sebelum keputusan."
	}
}
