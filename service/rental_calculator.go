package service

import (
	"math"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
)

// clampNumber replaces NaN and ±Inf with 0.
func clampNumber(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// clampPercentage treats non-finite input like any other non-number (0) before
// clamping to [0,100].
func clampPercentage(value float64) float64 {
	value = clampNumber(value)
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func toFraction(value float64) float64 {
	return clampPercentage(value) / 100
}

// Sanitize returns the snapshot Compute actually works on: every numeric field
// finite and every share percentage within [0,100]. Compute(in) and
// Compute(Sanitize(in)) are identical.
func Sanitize(in domain.CalculatorInputs) domain.CalculatorInputs {
	out := in
	out.Property.PurchasePrice = clampNumber(in.Property.PurchasePrice)
	out.Property.InitialCapex = clampNumber(in.Property.InitialCapex)

	out.Rental.MonthlyRent = clampNumber(in.Rental.MonthlyRent)
	out.Rental.NightlyRent = clampNumber(in.Rental.NightlyRent)
	out.Rental.Occupancy = clampPercentage(in.Rental.Occupancy)

	out.Expenses.Fixed.Utilities = clampNumber(in.Expenses.Fixed.Utilities)
	out.Expenses.Fixed.Staff = clampNumber(in.Expenses.Fixed.Staff)
	out.Expenses.Fixed.Insurance = clampNumber(in.Expenses.Fixed.Insurance)
	out.Expenses.Fixed.Other = clampNumber(in.Expenses.Fixed.Other)
	out.Expenses.Variable.RevenueShare = clampPercentage(in.Expenses.Variable.RevenueShare)

	out.Taxes.IncomeTaxRate = clampPercentage(in.Taxes.IncomeTaxRate)

	out.Financing.Equity = clampNumber(in.Financing.Equity)
	out.Financing.LoanAmount = clampNumber(in.Financing.LoanAmount)
	out.Financing.InterestRate = clampNumber(in.Financing.InterestRate)
	out.Financing.LoanTermYears = clampNumber(in.Financing.LoanTermYears)
	return out
}

// fullOccupancyMonthlyGross is the monthly income the property would earn at
// 100% occupancy. Daily rates are annualized over a fixed 365-day year and then
// spread evenly across 12 months.
func fullOccupancyMonthlyGross(rental domain.RentalInputs) float64 {
	switch rental.Model {
	case domain.RentalDaily:
		return rental.NightlyRent * DaysInYear / MonthsInYear
	default:
		return rental.MonthlyRent
	}
}

func calculateOperatingExpenses(
	expenses domain.ExpenseInputs,
	monthlyGross float64,
) domain.OperatingExpensesResult {
	fixed := expenses.Fixed.Utilities +
		expenses.Fixed.Staff +
		expenses.Fixed.Insurance +
		expenses.Fixed.Other
	variable := monthlyGross * toFraction(expenses.Variable.RevenueShare)
	total := fixed + variable

	return domain.OperatingExpensesResult{
		MonthlyFixed:    fixed,
		MonthlyVariable: variable,
		MonthlyTotal:    total,
		AnnualTotal:     total * MonthsInYear,
	}
}

// calculateLoanPayment returns the level monthly payment of a fully amortizing
// loan. A missing principal or term means there is no debt to service.
func calculateLoanPayment(financing domain.FinancingInputs) domain.LoanPaymentResult {
	principal := financing.LoanAmount
	if principal <= 0 || financing.LoanTermYears <= 0 {
		return domain.LoanPaymentResult{}
	}

	totalMonths := financing.LoanTermYears * MonthsInYear
	monthlyRate := 0.0
	if financing.InterestRate > 0 {
		monthlyRate = financing.InterestRate / 100 / MonthsInYear
	}

	var payment float64
	if monthlyRate == 0 {
		payment = principal / totalMonths
	} else {
		payment = principal * monthlyRate /
			(1 - math.Pow(1+monthlyRate, -totalMonths))
	}

	return domain.LoanPaymentResult{
		Monthly: payment,
		Annual:  payment * MonthsInYear,
	}
}

// calculateTaxes taxes positive income only; losses are not carried forward.
func calculateTaxes(incomeBeforeTax, taxRatePercentage float64) float64 {
	if incomeBeforeTax <= 0 || taxRatePercentage <= 0 {
		return 0
	}
	return incomeBeforeTax * toFraction(taxRatePercentage)
}

// calculateBreakEvenOccupancy returns the occupancy percentage at which income
// net of variable costs covers fixed costs plus debt service.
//
// The base is gross income at full occupancy, not at the current occupancy:
// the metric answers "what occupancy is needed", so swapping in the actual
// gross income would make it depend on itself.
func calculateBreakEvenOccupancy(
	fullOccupancyGross float64,
	revenueShare float64,
	fixedMonthly float64,
	loanMonthly float64,
) domain.OptionalFloat {
	denominator := fullOccupancyGross * (1 - toFraction(revenueShare))
	if denominator <= 0 {
		return domain.None()
	}

	occupancy := (fixedMonthly + loanMonthly) / denominator
	if math.IsNaN(occupancy) || math.IsInf(occupancy, 0) {
		return domain.None()
	}
	if occupancy < 0 {
		return domain.Some(0)
	}
	// Values above 100 mean break-even is out of reach and are returned as is.
	return domain.Some(occupancy * 100)
}

// Compute derives every return metric from one input snapshot. It never fails:
// degenerate inputs resolve to 0 or an absent optional, and the result holds no
// NaN or Inf.
func Compute(raw domain.CalculatorInputs) domain.CalculatorResults {
	in := Sanitize(raw)

	fullGross := fullOccupancyMonthlyGross(in.Rental)
	monthlyGross := fullGross * toFraction(in.Rental.Occupancy)
	annualGross := monthlyGross * MonthsInYear

	opex := calculateOperatingExpenses(in.Expenses, monthlyGross)
	noi := annualGross - opex.AnnualTotal

	loan := calculateLoanPayment(in.Financing)

	cashFlowAfterDebtBeforeTax := noi - loan.Annual
	taxableIncome := math.Max(cashFlowAfterDebtBeforeTax, 0)
	taxes := calculateTaxes(taxableIncome, in.Taxes.IncomeTaxRate)
	cashFlowAfterDebtAndTax := cashFlowAfterDebtBeforeTax - taxes

	equityInvested := math.Max(in.Financing.Equity+in.Property.InitialCapex, 0)

	cashOnCash := 0.0
	if equityInvested > 0 {
		cashOnCash = cashFlowAfterDebtAndTax / equityInvested * 100
	}

	capRate := 0.0
	if in.Property.PurchasePrice > 0 {
		capRate = noi / in.Property.PurchasePrice * 100
	}

	payback := domain.None()
	if cashFlowAfterDebtAndTax > 0 && equityInvested > 0 {
		payback = domain.Some(equityInvested / cashFlowAfterDebtAndTax)
	}

	breakEven := calculateBreakEvenOccupancy(
		fullGross,
		in.Expenses.Variable.RevenueShare,
		opex.MonthlyFixed,
		loan.Monthly,
	)

	return finiteResults(domain.CalculatorResults{
		GrossIncome: domain.GrossIncomeResult{
			Monthly: monthlyGross,
			Annual:  annualGross,
		},
		OperatingExpenses: opex,
		NOI:               noi,
		LoanPayments:      loan,
		CashFlow: domain.CashFlowResult{
			AnnualBeforeDebt:         noi,
			AnnualAfterDebtBeforeTax: cashFlowAfterDebtBeforeTax,
			AnnualAfterDebtAndTax:    cashFlowAfterDebtAndTax,
		},
		Taxes: taxes,
		ReturnMetrics: domain.ReturnMetricsResult{
			CashOnCash:         cashOnCash,
			CapRate:            capRate,
			PaybackPeriodYears: payback,
			BreakEvenOccupancy: breakEven,
		},
	})
}

// finiteResults zeroes anything that overflowed while computing from extreme
// but finite inputs.
func finiteResults(r domain.CalculatorResults) domain.CalculatorResults {
	for _, v := range []*float64{
		&r.GrossIncome.Monthly,
		&r.GrossIncome.Annual,
		&r.OperatingExpenses.MonthlyFixed,
		&r.OperatingExpenses.MonthlyVariable,
		&r.OperatingExpenses.MonthlyTotal,
		&r.OperatingExpenses.AnnualTotal,
		&r.NOI,
		&r.LoanPayments.Monthly,
		&r.LoanPayments.Annual,
		&r.CashFlow.AnnualBeforeDebt,
		&r.CashFlow.AnnualAfterDebtBeforeTax,
		&r.CashFlow.AnnualAfterDebtAndTax,
		&r.Taxes,
		&r.ReturnMetrics.CashOnCash,
		&r.ReturnMetrics.CapRate,
	} {
		*v = clampNumber(*v)
	}
	for _, o := range []*domain.OptionalFloat{
		&r.ReturnMetrics.PaybackPeriodYears,
		&r.ReturnMetrics.BreakEvenOccupancy,
	} {
		if o.Valid && clampNumber(o.Value) != o.Value {
			*o = domain.None()
		}
	}
	return r
}
