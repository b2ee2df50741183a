package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RentalModel selects how gross income is derived from the rental inputs.
type RentalModel string

const (
	RentalMonthly RentalModel = "monthly"
	RentalDaily   RentalModel = "daily"
)

// ParseRentalModel accepts "monthly" or "daily" in any case.
func ParseRentalModel(s string) (RentalModel, error) {
	switch RentalModel(strings.ToLower(strings.TrimSpace(s))) {
	case RentalMonthly:
		return RentalMonthly, nil
	case RentalDaily:
		return RentalDaily, nil
	}
	return "", fmt.Errorf("unknown rental model %q", s)
}

// UnmarshalJSON leaves the model untouched for null, so an absent model falls
// back to monthly.
func (m *RentalModel) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("rental model: %w", err)
	}
	parsed, err := ParseRentalModel(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *RentalModel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseRentalModel(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type PropertyInputs struct {
	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price"`
	Currency      string  `json:"currency" yaml:"currency"`
	InitialCapex  float64 `json:"initial_capex" yaml:"initial_capex"`
}

type RentalInputs struct {
	Model       RentalModel `json:"model" yaml:"model"`
	MonthlyRent float64     `json:"monthly_rent" yaml:"monthly_rent"`
	NightlyRent float64     `json:"nightly_rent" yaml:"nightly_rent"`
	Occupancy   float64     `json:"occupancy" yaml:"occupancy"` // percentage 0-100
}

type FixedExpenses struct {
	Utilities float64 `json:"utilities" yaml:"utilities"`
	Staff     float64 `json:"staff" yaml:"staff"`
	Insurance float64 `json:"insurance" yaml:"insurance"`
	Other     float64 `json:"other" yaml:"other"`
}

type VariableExpenses struct {
	RevenueShare float64 `json:"revenue_share" yaml:"revenue_share"` // percentage 0-100
}

type ExpenseInputs struct {
	Fixed    FixedExpenses    `json:"fixed" yaml:"fixed"`
	Variable VariableExpenses `json:"variable" yaml:"variable"`
}

type TaxInputs struct {
	IncomeTaxRate float64 `json:"income_tax_rate" yaml:"income_tax_rate"` // percentage 0-100
}

type FinancingInputs struct {
	Equity        float64 `json:"equity" yaml:"equity"`
	LoanAmount    float64 `json:"loan_amount" yaml:"loan_amount"`
	InterestRate  float64 `json:"interest_rate" yaml:"interest_rate"` // annual nominal, percentage
	LoanTermYears float64 `json:"loan_term_years" yaml:"loan_term_years"`
}

// CalculatorInputs is one immutable snapshot of everything the calculator reads.
type CalculatorInputs struct {
	Property  PropertyInputs  `json:"property" yaml:"property"`
	Rental    RentalInputs    `json:"rental" yaml:"rental"`
	Expenses  ExpenseInputs   `json:"expenses" yaml:"expenses"`
	Taxes     TaxInputs       `json:"taxes" yaml:"taxes"`
	Financing FinancingInputs `json:"financing" yaml:"financing"`
}

type GrossIncomeResult struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

type OperatingExpensesResult struct {
	MonthlyFixed    float64 `json:"monthly_fixed"`
	MonthlyVariable float64 `json:"monthly_variable"`
	MonthlyTotal    float64 `json:"monthly_total"`
	AnnualTotal     float64 `json:"annual_total"`
}

type LoanPaymentResult struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

type CashFlowResult struct {
	AnnualBeforeDebt         float64 `json:"annual_before_debt"`
	AnnualAfterDebtBeforeTax float64 `json:"annual_after_debt_before_tax"`
	AnnualAfterDebtAndTax    float64 `json:"annual_after_debt_and_tax"`
}

type ReturnMetricsResult struct {
	CashOnCash         float64       `json:"cash_on_cash"`
	CapRate            float64       `json:"cap_rate"`
	PaybackPeriodYears OptionalFloat `json:"payback_period_years"`
	BreakEvenOccupancy OptionalFloat `json:"break_even_occupancy"`
}

// CalculatorResults is derived wholesale from a CalculatorInputs snapshot.
type CalculatorResults struct {
	GrossIncome       GrossIncomeResult       `json:"gross_income"`
	OperatingExpenses OperatingExpensesResult `json:"operating_expenses"`
	NOI               float64                 `json:"noi"`
	LoanPayments      LoanPaymentResult       `json:"loan_payments"`
	CashFlow          CashFlowResult          `json:"cash_flow"`
	Taxes             float64                 `json:"taxes"`
	ReturnMetrics     ReturnMetricsResult     `json:"return_metrics"`
}

// CalculationResponse pairs an input snapshot with the results computed from it.
type CalculationResponse struct {
	Inputs  CalculatorInputs  `json:"inputs"`
	Results CalculatorResults `json:"results"`
}
