package scoring

import (
	"errors"
	"math"
)

var (
	ErrInvalidTerm    = errors.New("term must be greater than zero")
	ErrUndefinedRatio = errors.New("affordability ratio undefined for non-positive net income")
)

// IncomeExpenseRecord holds one household's itemized monthly income and
// expense figures. Unknown or unparseable upstream values are expected to
// arrive as zero.
type IncomeExpenseRecord struct {
	PrimaryIncome  float64 `json:"pendapatanUtama"`
	SpouseIncome   float64 `json:"pendapatanPasangan"`
	OtherIncome1   float64 `json:"pendapatanLain1"`
	OtherIncome2   float64 `json:"pendapatanLain2"`
	OtherIncome3   float64 `json:"pendapatanLain3"`
	PrimaryExpense float64 `json:"pengeluaranUtama"`
	SpouseExpense  float64 `json:"pengeluaranPasangan"`
	FoodExpense    float64 `json:"biayaMakan"`
	UtilityExpense float64 `json:"biayaListrikAir"`
	SocialExpense  float64 `json:"biayaSosial"`
	OtherDependent float64 `json:"tanggunganLain"`
	ChildCount     int     `json:"jumlahAnak"`
	SchoolCost     float64 `json:"biayaSekolah"`
	AllowanceCost  float64 `json:"uangSaku"`
}

// TotalIncome sums all income items.
func (r IncomeExpenseRecord) TotalIncome() float64 {
	return r.PrimaryIncome + r.SpouseIncome + r.OtherIncome1 + r.OtherIncome2 + r.OtherIncome3
}

// TotalExpense sums all expense items including child-related costs.
func (r IncomeExpenseRecord) TotalExpense() float64 {
	return r.PrimaryExpense + r.SpouseExpense + r.FoodExpense + r.UtilityExpense +
		r.SocialExpense + r.OtherDependent + r.SchoolCost + r.AllowanceCost
}

// NetIncome is total income minus total expense. It may be negative; no
// floor is applied so a deficit household propagates through the calculator.
func (r IncomeExpenseRecord) NetIncome() float64 {
	return r.TotalIncome() - r.TotalExpense()
}

// AffordabilityResult is the affordability envelope for one record and term.
type AffordabilityResult struct {
	NetIncome        float64 `json:"pendapatanBersih"`
	MaxInstallment   float64 `json:"angsuranMaksimal"`
	MaxLoanPrincipal float64 `json:"plafonMaksimal"`
	TermMonths       int     `json:"jangkaPembiayaan"`
}

// Profile name values.
const (
	ProfileStandard = "standard"
	ProfileLegacy   = "legacy"
)

// Profile names one affordability policy: the fraction of net income
// considered repayable and the monthly interest rate used for discounting.
// A zero rate selects the flat (simple multiply) principal formula.
type Profile struct {
	Name                string
	InstallmentFraction float64
	MonthlyRate         float64
}

// StandardProfile is the annuity-discounted policy used by the main
// sub-analysis workflow: 40% of net income at the given monthly rate.
func StandardProfile(monthlyRate float64) Profile {
	return Profile{Name: ProfileStandard, InstallmentFraction: 0.40, MonthlyRate: monthlyRate}
}

// LegacyProfile is the flat policy used by the older survey workflow:
// 70% of net income, principal as installment times term.
func LegacyProfile() Profile {
	return Profile{Name: ProfileLegacy, InstallmentFraction: 0.70, MonthlyRate: 0}
}

// Compute applies the profile to a record and term.
func (p Profile) Compute(rec IncomeExpenseRecord, termMonths int) (AffordabilityResult, error) {
	return ComputeAffordability(rec, termMonths, p.InstallmentFraction, p.MonthlyRate)
}

// ComputeAffordability derives net income, the maximum monthly installment
// and the maximum supportable principal. With monthlyRate == 0 the principal
// is installment*term; otherwise the declining-balance annuity present value
// installment * (1 - (1+r)^-n) / r. termMonths must be positive.
func ComputeAffordability(rec IncomeExpenseRecord, termMonths int, installmentFraction, monthlyRate float64) (AffordabilityResult, error) {
	if termMonths <= 0 {
		return AffordabilityResult{}, ErrInvalidTerm
	}

	netIncome := rec.NetIncome()
	maxInstallment := netIncome * installmentFraction

	var principal float64
	if monthlyRate == 0 {
		principal = maxInstallment * float64(termMonths)
	} else {
		principal = maxInstallment * (1 - math.Pow(1+monthlyRate, -float64(termMonths))) / monthlyRate
	}

	return AffordabilityResult{
		NetIncome:        netIncome,
		MaxInstallment:   maxInstallment,
		MaxLoanPrincipal: principal,
		TermMonths:       termMonths,
	}, nil
}

// AffordabilityRatio returns plannedInstallment / netIncome. Callers must
// branch on ErrUndefinedRatio instead of dividing by a non-positive income.
func AffordabilityRatio(plannedInstallment, netIncome float64) (float64, error) {
	if netIncome <= 0 {
		return 0, ErrUndefinedRatio
	}
	return plannedInstallment / netIncome, nil
}
