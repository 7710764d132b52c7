package scoring

import (
	"errors"
	"math"
	"testing"
)

func sampleRecord() IncomeExpenseRecord {
	return IncomeExpenseRecord{
		PrimaryIncome:  3_000_000,
		SpouseIncome:   1_500_000,
		OtherIncome1:   500_000,
		PrimaryExpense: 1_000_000,
		SpouseExpense:  500_000,
		FoodExpense:    900_000,
		UtilityExpense: 300_000,
		SocialExpense:  100_000,
		ChildCount:     2,
		SchoolCost:     400_000,
		AllowanceCost:  300_000,
	}
}

func TestNetIncomeSums(t *testing.T) {
	rec := sampleRecord()
	if got := rec.TotalIncome(); got != 5_000_000 {
		t.Fatalf("TotalIncome = %v, want 5000000", got)
	}
	if got := rec.TotalExpense(); got != 3_500_000 {
		t.Fatalf("TotalExpense = %v, want 3500000", got)
	}
	if got := rec.NetIncome(); got != 1_500_000 {
		t.Fatalf("NetIncome = %v, want 1500000", got)
	}
}

func TestNetIncomeMayBeNegative(t *testing.T) {
	rec := IncomeExpenseRecord{PrimaryIncome: 1_000_000, FoodExpense: 1_500_000}
	res, err := ComputeAffordability(rec, 12, 0.4, 0)
	if err != nil {
		t.Fatalf("ComputeAffordability: %v", err)
	}
	if res.NetIncome != -500_000 {
		t.Fatalf("NetIncome = %v, want -500000", res.NetIncome)
	}
	if res.MaxInstallment >= 0 {
		t.Fatalf("MaxInstallment = %v, want negative", res.MaxInstallment)
	}
}

func TestFlatPrincipalIsExactProduct(t *testing.T) {
	cases := []struct {
		name     string
		fraction float64
		term     int
	}{
		{"legacy_70_12", 0.7, 12},
		{"standard_40_24", 0.4, 24},
		{"full_fraction_1", 1.0, 36},
	}
	rec := sampleRecord()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ComputeAffordability(rec, tc.term, tc.fraction, 0)
			if err != nil {
				t.Fatalf("ComputeAffordability: %v", err)
			}
			want := rec.NetIncome() * tc.fraction * float64(tc.term)
			if res.MaxLoanPrincipal != want {
				t.Fatalf("MaxLoanPrincipal = %v, want %v", res.MaxLoanPrincipal, want)
			}
		})
	}
}

func TestAnnuityPrincipalBelowFlat(t *testing.T) {
	rec := sampleRecord()
	for _, rate := range []float64{0.005, 0.015, 0.025, 0.1} {
		for _, term := range []int{1, 6, 12, 60} {
			flat, err := ComputeAffordability(rec, term, 0.4, 0)
			if err != nil {
				t.Fatalf("flat: %v", err)
			}
			annuity, err := ComputeAffordability(rec, term, 0.4, rate)
			if err != nil {
				t.Fatalf("annuity: %v", err)
			}
			if annuity.MaxLoanPrincipal >= flat.MaxLoanPrincipal {
				t.Fatalf("rate=%v term=%d: annuity principal %v not below flat %v",
					rate, term, annuity.MaxLoanPrincipal, flat.MaxLoanPrincipal)
			}
		}
	}
}

func TestAnnuityFormula(t *testing.T) {
	rec := sampleRecord()
	rate := 0.02
	term := 24
	res, err := ComputeAffordability(rec, term, 0.4, rate)
	if err != nil {
		t.Fatalf("ComputeAffordability: %v", err)
	}
	installment := rec.NetIncome() * 0.4
	want := installment * (1 - math.Pow(1+rate, -float64(term))) / rate
	if math.Abs(res.MaxLoanPrincipal-want) > 1e-6 {
		t.Fatalf("MaxLoanPrincipal = %v, want %v", res.MaxLoanPrincipal, want)
	}
}

func TestInvalidTermRejected(t *testing.T) {
	for _, term := range []int{0, -1, -12} {
		if _, err := ComputeAffordability(sampleRecord(), term, 0.4, 0.02); !errors.Is(err, ErrInvalidTerm) {
			t.Fatalf("term=%d: err = %v, want ErrInvalidTerm", term, err)
		}
	}
}

func TestProfiles(t *testing.T) {
	rec := sampleRecord()

	legacy, err := LegacyProfile().Compute(rec, 10)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if legacy.MaxInstallment != rec.NetIncome()*0.7 {
		t.Fatalf("legacy MaxInstallment = %v", legacy.MaxInstallment)
	}
	if legacy.MaxLoanPrincipal != legacy.MaxInstallment*10 {
		t.Fatalf("legacy principal = %v, want flat product", legacy.MaxLoanPrincipal)
	}

	standard, err := StandardProfile(0.02).Compute(rec, 10)
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	if standard.MaxInstallment != rec.NetIncome()*0.4 {
		t.Fatalf("standard MaxInstallment = %v", standard.MaxInstallment)
	}
	if standard.MaxLoanPrincipal >= standard.MaxInstallment*10 {
		t.Fatalf("standard principal %v should be discounted below flat", standard.MaxLoanPrincipal)
	}
}

func TestAffordabilityRatio(t *testing.T) {
	ratio, err := AffordabilityRatio(650_000, 1_000_000)
	if err != nil {
		t.Fatalf("AffordabilityRatio: %v", err)
	}
	if ratio != 0.65 {
		t.Fatalf("ratio = %v, want 0.65", ratio)
	}

	for _, net := range []float64{0, -100} {
		if _, err := AffordabilityRatio(500_000, net); !errors.Is(err, ErrUndefinedRatio) {
			t.Fatalf("net=%v: err = %v, want ErrUndefinedRatio", net, err)
		}
	}
}
