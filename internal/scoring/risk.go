package scoring

import "strings"

// Risk levels, most severe first.
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// Risk-factor messages, one per character rating slot.
const (
	RiskFactorPaymentHistory     = "Riwayat pembayaran bermasalah"
	RiskFactorCommunityRelations = "Hubungan dengan masyarakat kurang baik"
	RiskFactorBusinessExperience = "Pengalaman usaha terbatas"
	RiskFactorRepaymentCapacity  = "Kapasitas pembayaran diragukan"
	RiskFactorCollateral         = "Jaminan kurang memadai"
)

// RiskInput is the employee-facing assessment record: five character
// ratings on a 1-5 scale with matching derogatory flags, plus the requested
// amount and term. Nil ratings are excluded from the average rather than
// treated as zero.
type RiskInput struct {
	PaymentHistory         *float64 `json:"karakter1"`
	CommunityRelations     *float64 `json:"karakter2"`
	BusinessExperience     *float64 `json:"karakter3"`
	RepaymentCapacity      *float64 `json:"karakter4"`
	Collateral             *float64 `json:"karakter5"`
	PaymentHistoryFlag     bool     `json:"karakter1Jelek"`
	CommunityRelationsFlag bool     `json:"karakter2Jelek"`
	BusinessExperienceFlag bool     `json:"karakter3Jelek"`
	RepaymentCapacityFlag  bool     `json:"karakter4Jelek"`
	CollateralFlag         bool     `json:"karakter5Jelek"`
	RequestedAmount        float64  `json:"pengajuan"`
	TermMonths             int      `json:"jangkaWaktu"`
}

// RiskAssessment is the engine's full output.
type RiskAssessment struct {
	CharacterScore     float64  `json:"characterScore"`
	DebtToIncomeRatio  float64  `json:"debtToIncomeRatio"`
	RiskFactors        []string `json:"riskFactors"`
	RiskLevel          string   `json:"riskLevel"`
	RiskScore          float64  `json:"riskScore"`
	Recommendations    []string `json:"recommendations"`
	KeyConcerns        []string `json:"keyConcerns"`
	ApprovalLikelihood float64  `json:"approvalLikelihood"`
}

// AnalyzeRisk derives a full risk assessment from one input record. All
// sub-computations are pure; the function is stateless and safe for
// concurrent use.
//
// Two oddities of the historical behavior are preserved on purpose and must
// not be "fixed" here: the character score stays on the 1-5 rating scale
// while the level thresholds read it as 0-100, and the debt ratio formula
// cancels the requested amount so it reduces to 100/term.
func AnalyzeRisk(in RiskInput) RiskAssessment {
	characterScore := characterScore(in)
	debtRatio := debtToIncomeRatio(in)
	factors := riskFactors(in)

	assessment := RiskAssessment{
		CharacterScore:     characterScore,
		DebtToIncomeRatio:  debtRatio,
		RiskFactors:        factors,
		RiskLevel:          riskLevel(characterScore, debtRatio, len(factors)),
		RiskScore:          clamp(characterScore-0.5*debtRatio-5*float64(len(factors)), 0, 100),
		Recommendations:    advisories(characterScore, debtRatio, factors),
		KeyConcerns:        keyConcerns(factors),
		ApprovalLikelihood: approvalLikelihood(characterScore, debtRatio),
	}
	return assessment
}

func characterScore(in RiskInput) float64 {
	var sum float64
	var present int
	for _, rating := range []*float64{
		in.PaymentHistory,
		in.CommunityRelations,
		in.BusinessExperience,
		in.RepaymentCapacity,
		in.Collateral,
	} {
		if rating == nil {
			continue
		}
		sum += *rating
		present++
	}
	if present == 0 {
		return 0
	}

	score := sum / float64(present)
	for _, flagged := range []bool{
		in.PaymentHistoryFlag,
		in.CommunityRelationsFlag,
		in.BusinessExperienceFlag,
		in.RepaymentCapacityFlag,
		in.CollateralFlag,
	} {
		if flagged {
			score -= 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func debtToIncomeRatio(in RiskInput) float64 {
	if in.RequestedAmount <= 0 {
		return 0
	}
	// (amount/term)/amount*100: the amount cancels algebraically, leaving
	// 100/term. Kept verbatim from the historical workflow.
	return in.RequestedAmount / float64(in.TermMonths) / in.RequestedAmount * 100
}

func riskFactors(in RiskInput) []string {
	factors := make([]string, 0, 5)
	checks := []struct {
		rating  *float64
		message string
	}{
		{in.PaymentHistory, RiskFactorPaymentHistory},
		{in.CommunityRelations, RiskFactorCommunityRelations},
		{in.BusinessExperience, RiskFactorBusinessExperience},
		{in.RepaymentCapacity, RiskFactorRepaymentCapacity},
		{in.Collateral, RiskFactorCollateral},
	}
	for _, check := range checks {
		if check.rating != nil && *check.rating < 3 {
			factors = append(factors, check.message)
		}
	}
	return factors
}

func riskLevel(characterScore, debtRatio float64, factorCount int) string {
	switch {
	case characterScore < 60 || debtRatio > 50 || factorCount >= 3:
		return RiskLevelCritical
	case characterScore < 70 || debtRatio > 40 || factorCount >= 2:
		return RiskLevelHigh
	case characterScore < 80 || debtRatio > 30 || factorCount >= 1:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

func advisories(characterScore, debtRatio float64, factors []string) []string {
	out := make([]string, 0, 4)
	if characterScore < 70 {
		out = append(out, "Perlu pendampingan intensif selama masa pembiayaan")
	}
	if debtRatio > 40 {
		out = append(out, "Pertimbangkan jangka waktu pembiayaan yang lebih panjang")
	}
	if containsFactor(factors, RiskFactorPaymentHistory) {
		out = append(out, "Wajibkan jaminan tambahan sebelum pencairan")
	}
	if containsFactor(factors, RiskFactorRepaymentCapacity) {
		out = append(out, "Turunkan plafon pengajuan sesuai kapasitas terverifikasi")
	}
	return out
}

func containsFactor(factors []string, want string) bool {
	for _, f := range factors {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func keyConcerns(factors []string) []string {
	if len(factors) <= 3 {
		return append([]string(nil), factors...)
	}
	return append([]string(nil), factors[:3]...)
}

func approvalLikelihood(characterScore, debtRatio float64) float64 {
	switch {
	case characterScore >= 90 && debtRatio <= 20:
		return 95
	case characterScore >= 80 && debtRatio <= 30:
		return 80
	case characterScore >= 70 && debtRatio <= 40:
		return 60
	case characterScore >= 60 && debtRatio <= 50:
		return 40
	default:
		return 20
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
