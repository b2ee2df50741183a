package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
)

// approx mirrors a "close to N decimal places" check: |got-want| < 10^-digits / 2.
func approx(t *testing.T, name string, got, want float64, digits int) {
	t.Helper()
	tol := math.Pow(10, -float64(digits)) / 2
	if math.Abs(got-want) >= tol {
		t.Errorf("%s: expected %.4f (±%g), got %.6f", name, want, tol, got)
	}
}

func monthlyScenario() domain.CalculatorInputs {
	return domain.CalculatorInputs{
		Property: domain.PropertyInputs{PurchasePrice: 200_000, Currency: "USD", InitialCapex: 20_000},
		Rental:   domain.RentalInputs{Model: domain.RentalMonthly, MonthlyRent: 4_000, NightlyRent: 200, Occupancy: 80},
		Expenses: domain.ExpenseInputs{
			Fixed:    domain.FixedExpenses{Utilities: 300, Staff: 400, Insurance: 100, Other: 100},
			Variable: domain.VariableExpenses{RevenueShare: 10},
		},
		Taxes:     domain.TaxInputs{IncomeTaxRate: 10},
		Financing: domain.FinancingInputs{Equity: 120_000, LoanAmount: 100_000, InterestRate: 5, LoanTermYears: 20},
	}
}

func dailyScenario() domain.CalculatorInputs {
	return domain.CalculatorInputs{
		Property: domain.PropertyInputs{PurchasePrice: 300_000, Currency: "USD", InitialCapex: 50_000},
		Rental:   domain.RentalInputs{Model: domain.RentalDaily, MonthlyRent: 4_000, NightlyRent: 250, Occupancy: 60},
		Expenses: domain.ExpenseInputs{
			Fixed:    domain.FixedExpenses{Utilities: 400, Staff: 600, Insurance: 120, Other: 200},
			Variable: domain.VariableExpenses{RevenueShare: 18},
		},
		Taxes:     domain.TaxInputs{IncomeTaxRate: 12},
		Financing: domain.FinancingInputs{Equity: 180_000, LoanAmount: 150_000, InterestRate: 7, LoanTermYears: 15},
	}
}

func TestCompute_MonthlyScenario(t *testing.T) {
	r := Compute(monthlyScenario())

	approx(t, "monthly gross", r.GrossIncome.Monthly, 3_200, 2)
	approx(t, "annual gross", r.GrossIncome.Annual, 38_400, 2)
	approx(t, "opex monthly total", r.OperatingExpenses.MonthlyTotal, 1_220, 2)
	approx(t, "opex annual total", r.OperatingExpenses.AnnualTotal, 14_640, 2)
	approx(t, "noi", r.NOI, 23_760, 2)
	approx(t, "loan monthly", r.LoanPayments.Monthly, 659.96, 2)
	approx(t, "loan annual", r.LoanPayments.Annual, 7_919.47, 2)
	approx(t, "cash flow after debt before tax", r.CashFlow.AnnualAfterDebtBeforeTax, 15_840.53, 2)
	approx(t, "taxes", r.Taxes, 1_584.05, 2)
	approx(t, "cash flow after debt and tax", r.CashFlow.AnnualAfterDebtAndTax, 14_256.48, 2)
	approx(t, "cash on cash", r.ReturnMetrics.CashOnCash, 10.18, 2)
	approx(t, "cap rate", r.ReturnMetrics.CapRate, 11.88, 2)

	payback, ok := r.ReturnMetrics.PaybackPeriodYears.Get()
	if !ok {
		t.Fatalf("expected payback period")
	}
	approx(t, "payback", payback, 9.82, 2)

	breakEven, ok := r.ReturnMetrics.BreakEvenOccupancy.Get()
	if !ok {
		t.Fatalf("expected break-even occupancy")
	}
	approx(t, "break-even", breakEven, 43.33, 2)

	if r.CashFlow.AnnualBeforeDebt != r.NOI {
		t.Errorf("cash flow before debt should equal NOI")
	}
}

func TestCompute_DailyScenario(t *testing.T) {
	r := Compute(dailyScenario())

	approx(t, "monthly gross", r.GrossIncome.Monthly, 4_562.5, 2)
	approx(t, "annual gross", r.GrossIncome.Annual, 54_750, 2)
	approx(t, "opex monthly total", r.OperatingExpenses.MonthlyTotal, 2_141.25, 2)
	approx(t, "opex annual total", r.OperatingExpenses.AnnualTotal, 25_695, 2)
	approx(t, "noi", r.NOI, 29_055, 2)
	approx(t, "loan monthly", r.LoanPayments.Monthly, 1_348.24, 2)
	approx(t, "loan annual", r.LoanPayments.Annual, 16_178.91, 2)
	approx(t, "cash flow after debt before tax", r.CashFlow.AnnualAfterDebtBeforeTax, 12_876.09, 2)
	approx(t, "taxes", r.Taxes, 1_545.13, 2)
	approx(t, "cash flow after debt and tax", r.CashFlow.AnnualAfterDebtAndTax, 11_330.96, 2)
	approx(t, "cash on cash", r.ReturnMetrics.CashOnCash, 4.93, 2)
	approx(t, "cap rate", r.ReturnMetrics.CapRate, 9.685, 2)

	payback, ok := r.ReturnMetrics.PaybackPeriodYears.Get()
	if !ok {
		t.Fatalf("expected payback period")
	}
	approx(t, "payback", payback, 20.3, 1)

	breakEven, ok := r.ReturnMetrics.BreakEvenOccupancy.Get()
	if !ok {
		t.Fatalf("expected break-even occupancy")
	}
	approx(t, "break-even", breakEven, 42.79, 2)
}

func TestCompute_Deterministic(t *testing.T) {
	for _, in := range []domain.CalculatorInputs{monthlyScenario(), dailyScenario()} {
		if Compute(in) != Compute(in) {
			t.Errorf("repeated Compute calls differ for %+v", in)
		}
	}
}

func TestCompute_ClampsPercentages(t *testing.T) {
	fields := map[string]func(*domain.CalculatorInputs, float64){
		"occupancy":     func(in *domain.CalculatorInputs, v float64) { in.Rental.Occupancy = v },
		"revenue share": func(in *domain.CalculatorInputs, v float64) { in.Expenses.Variable.RevenueShare = v },
		"tax rate":      func(in *domain.CalculatorInputs, v float64) { in.Taxes.IncomeTaxRate = v },
	}

	for name, set := range fields {
		for _, base := range []domain.CalculatorInputs{monthlyScenario(), dailyScenario()} {
			low, zero := base, base
			set(&low, -5)
			set(&zero, 0)
			if Compute(low) != Compute(zero) {
				t.Errorf("%s: -5 should behave like 0", name)
			}

			high, hundred := base, base
			set(&high, 150)
			set(&hundred, 100)
			if Compute(high) != Compute(hundred) {
				t.Errorf("%s: 150 should behave like 100", name)
			}
		}
	}
}

func TestCompute_NonFiniteInputsBehaveLikeZero(t *testing.T) {
	fields := map[string]func(*domain.CalculatorInputs, float64){
		"purchase price": func(in *domain.CalculatorInputs, v float64) { in.Property.PurchasePrice = v },
		"initial capex":  func(in *domain.CalculatorInputs, v float64) { in.Property.InitialCapex = v },
		"monthly rent":   func(in *domain.CalculatorInputs, v float64) { in.Rental.MonthlyRent = v },
		"nightly rent":   func(in *domain.CalculatorInputs, v float64) { in.Rental.NightlyRent = v },
		"occupancy":      func(in *domain.CalculatorInputs, v float64) { in.Rental.Occupancy = v },
		"utilities":      func(in *domain.CalculatorInputs, v float64) { in.Expenses.Fixed.Utilities = v },
		"staff":          func(in *domain.CalculatorInputs, v float64) { in.Expenses.Fixed.Staff = v },
		"insurance":      func(in *domain.CalculatorInputs, v float64) { in.Expenses.Fixed.Insurance = v },
		"other":          func(in *domain.CalculatorInputs, v float64) { in.Expenses.Fixed.Other = v },
		"revenue share":  func(in *domain.CalculatorInputs, v float64) { in.Expenses.Variable.RevenueShare = v },
		"tax rate":       func(in *domain.CalculatorInputs, v float64) { in.Taxes.IncomeTaxRate = v },
		"equity":         func(in *domain.CalculatorInputs, v float64) { in.Financing.Equity = v },
		"loan amount":    func(in *domain.CalculatorInputs, v float64) { in.Financing.LoanAmount = v },
		"interest rate":  func(in *domain.CalculatorInputs, v float64) { in.Financing.InterestRate = v },
		"loan term":      func(in *domain.CalculatorInputs, v float64) { in.Financing.LoanTermYears = v },
	}

	for name, set := range fields {
		for _, base := range []domain.CalculatorInputs{monthlyScenario(), dailyScenario()} {
			zero := base
			set(&zero, 0)
			want := Compute(zero)

			for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				in := base
				set(&in, bad)
				if got := Compute(in); got != want {
					t.Errorf("%s=%v: expected results equal to %s=0", name, bad, name)
				}
			}
		}
	}
}

func TestCompute_OccupancyMonotonic(t *testing.T) {
	for _, base := range []domain.CalculatorInputs{monthlyScenario(), dailyScenario()} {
		prev := Compute(withOccupancy(base, 0))
		for occ := 5.0; occ <= 100; occ += 5 {
			cur := Compute(withOccupancy(base, occ))
			if cur.GrossIncome.Annual < prev.GrossIncome.Annual {
				t.Errorf("gross income decreased at occupancy %.0f", occ)
			}
			if cur.NOI < prev.NOI {
				t.Errorf("NOI decreased at occupancy %.0f", occ)
			}
			prev = cur
		}
	}
}

func withOccupancy(in domain.CalculatorInputs, occ float64) domain.CalculatorInputs {
	in.Rental.Occupancy = occ
	return in
}

func TestCompute_ZeroInterestLoan(t *testing.T) {
	in := monthlyScenario()
	in.Financing.InterestRate = 0
	in.Financing.LoanAmount = 100_000
	in.Financing.LoanTermYears = 20

	r := Compute(in)

	expected := 100_000 / (20.0 * 12)
	if r.LoanPayments.Monthly != expected {
		t.Errorf("expected %v, got %v", expected, r.LoanPayments.Monthly)
	}
	if r.LoanPayments.Annual != expected*12 {
		t.Errorf("expected annual %v, got %v", expected*12, r.LoanPayments.Annual)
	}
}

func TestCompute_NoLoanWithoutPrincipalOrTerm(t *testing.T) {
	cases := map[string]domain.FinancingInputs{
		"zero principal":     {Equity: 100_000, LoanAmount: 0, InterestRate: 5, LoanTermYears: 20},
		"negative principal": {Equity: 100_000, LoanAmount: -5_000, InterestRate: 5, LoanTermYears: 20},
		"zero term":          {Equity: 100_000, LoanAmount: 50_000, InterestRate: 5, LoanTermYears: 0},
		"negative term":      {Equity: 100_000, LoanAmount: 50_000, InterestRate: 5, LoanTermYears: -3},
	}

	for name, financing := range cases {
		t.Run(name, func(t *testing.T) {
			in := monthlyScenario()
			in.Financing = financing
			r := Compute(in)
			if r.LoanPayments != (domain.LoanPaymentResult{}) {
				t.Errorf("expected no loan payment, got %+v", r.LoanPayments)
			}
			if r.CashFlow.AnnualAfterDebtBeforeTax != r.NOI {
				t.Errorf("without debt, cash flow after debt should equal NOI")
			}
		})
	}
}

func TestCompute_NegativeCashFlowIsNotTaxed(t *testing.T) {
	in := monthlyScenario()
	in.Rental.MonthlyRent = 1_000

	r := Compute(in)

	if r.CashFlow.AnnualAfterDebtBeforeTax >= 0 {
		t.Fatalf("scenario should run at a loss, got %.2f", r.CashFlow.AnnualAfterDebtBeforeTax)
	}
	if r.Taxes != 0 {
		t.Errorf("expected no taxes on a loss, got %.2f", r.Taxes)
	}
	if r.CashFlow.AnnualAfterDebtAndTax != r.CashFlow.AnnualAfterDebtBeforeTax {
		t.Errorf("tax-free loss should pass through unchanged")
	}
	if _, ok := r.ReturnMetrics.PaybackPeriodYears.Get(); ok {
		t.Errorf("expected no payback period when cash flow is negative")
	}
	if r.ReturnMetrics.CashOnCash >= 0 {
		t.Errorf("expected negative cash-on-cash, got %.2f", r.ReturnMetrics.CashOnCash)
	}
}

func TestCompute_NoEquityInvested(t *testing.T) {
	in := monthlyScenario()
	in.Financing.Equity = -50_000
	in.Property.InitialCapex = 10_000

	r := Compute(in)

	if r.ReturnMetrics.CashOnCash != 0 {
		t.Errorf("expected cash-on-cash 0, got %v", r.ReturnMetrics.CashOnCash)
	}
	if _, ok := r.ReturnMetrics.PaybackPeriodYears.Get(); ok {
		t.Errorf("expected no payback period without equity")
	}
}

func TestCompute_CapRateNeedsPurchasePrice(t *testing.T) {
	in := monthlyScenario()
	in.Property.PurchasePrice = 0

	if got := Compute(in).ReturnMetrics.CapRate; got != 0 {
		t.Errorf("expected cap rate 0, got %v", got)
	}
}

func TestCompute_BreakEvenUndefined(t *testing.T) {
	zeroRent := monthlyScenario()
	zeroRent.Rental.MonthlyRent = 0

	allVariable := dailyScenario()
	allVariable.Expenses.Variable.RevenueShare = 100

	negativeRent := monthlyScenario()
	negativeRent.Rental.MonthlyRent = -100

	for name, in := range map[string]domain.CalculatorInputs{
		"zero rent":           zeroRent,
		"100% variable costs": allVariable,
		"negative rent":       negativeRent,
	} {
		if _, ok := Compute(in).ReturnMetrics.BreakEvenOccupancy.Get(); ok {
			t.Errorf("%s: expected undefined break-even occupancy", name)
		}
	}
}

func TestCompute_BreakEvenIgnoresCurrentOccupancy(t *testing.T) {
	low := withOccupancy(monthlyScenario(), 10)
	high := withOccupancy(monthlyScenario(), 95)

	if Compute(low).ReturnMetrics.BreakEvenOccupancy != Compute(high).ReturnMetrics.BreakEvenOccupancy {
		t.Errorf("break-even occupancy should not depend on the occupancy input")
	}
}

func TestCompute_BreakEvenBounds(t *testing.T) {
	t.Run("negative costs clamp to zero", func(t *testing.T) {
		in := monthlyScenario()
		in.Expenses.Fixed = domain.FixedExpenses{Other: -10_000}
		in.Financing.LoanAmount = 0

		be, ok := Compute(in).ReturnMetrics.BreakEvenOccupancy.Get()
		if !ok || be != 0 {
			t.Errorf("expected break-even 0, got %v (present=%v)", be, ok)
		}
	})

	t.Run("unreachable break-even is above 100", func(t *testing.T) {
		in := monthlyScenario()
		in.Rental.MonthlyRent = 1_000

		be, ok := Compute(in).ReturnMetrics.BreakEvenOccupancy.Get()
		if !ok || be <= 100 {
			t.Errorf("expected break-even above 100, got %v (present=%v)", be, ok)
		}
	})
}

func TestCompute_DailyModelUsesFixedYear(t *testing.T) {
	in := dailyScenario()
	in.Rental.Occupancy = 100
	in.Rental.NightlyRent = 120

	r := Compute(in)
	approx(t, "annual gross", r.GrossIncome.Annual, 120*365, 6)
}

func TestCompute_ExtremeInputsStayFinite(t *testing.T) {
	in := monthlyScenario()
	in.Rental.MonthlyRent = math.MaxFloat64
	in.Rental.Occupancy = 100
	in.Financing.Equity = math.MaxFloat64
	in.Property.InitialCapex = math.MaxFloat64
	in.Financing.LoanAmount = math.MaxFloat64

	r := Compute(in)

	if _, err := json.Marshal(r); err != nil {
		t.Fatalf("results should hold only finite numbers: %v", err)
	}
}

func TestSanitize_IsIdempotentForCompute(t *testing.T) {
	in := dailyScenario()
	in.Rental.Occupancy = 180
	in.Expenses.Fixed.Staff = math.NaN()

	sanitized := Sanitize(in)
	if sanitized.Rental.Occupancy != 100 {
		t.Errorf("expected occupancy 100, got %v", sanitized.Rental.Occupancy)
	}
	if sanitized.Expenses.Fixed.Staff != 0 {
		t.Errorf("expected staff 0, got %v", sanitized.Expenses.Fixed.Staff)
	}
	if Compute(in) != Compute(sanitized) {
		t.Errorf("Compute should not change after sanitizing")
	}
}
