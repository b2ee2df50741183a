package domain

import "strings"

// Changes types carry a partial update for one input section. Nil fields are
// left untouched by Apply.

type PropertyChanges struct {
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	InitialCapex  *float64 `json:"initial_capex,omitempty"`
}

type RentalChanges struct {
	Model       *RentalModel `json:"model,omitempty"`
	MonthlyRent *float64     `json:"monthly_rent,omitempty"`
	NightlyRent *float64     `json:"nightly_rent,omitempty"`
	Occupancy   *float64     `json:"occupancy,omitempty"`
}

type FixedExpenseChanges struct {
	Utilities *float64 `json:"utilities,omitempty"`
	Staff     *float64 `json:"staff,omitempty"`
	Insurance *float64 `json:"insurance,omitempty"`
	Other     *float64 `json:"other,omitempty"`
}

type VariableExpenseChanges struct {
	RevenueShare *float64 `json:"revenue_share,omitempty"`
}

type ExpenseChanges struct {
	Fixed    *FixedExpenseChanges    `json:"fixed,omitempty"`
	Variable *VariableExpenseChanges `json:"variable,omitempty"`
}

type TaxChanges struct {
	IncomeTaxRate *float64 `json:"income_tax_rate,omitempty"`
}

type FinancingChanges struct {
	Equity        *float64 `json:"equity,omitempty"`
	LoanAmount    *float64 `json:"loan_amount,omitempty"`
	InterestRate  *float64 `json:"interest_rate,omitempty"`
	LoanTermYears *float64 `json:"loan_term_years,omitempty"`
}

type InputChanges struct {
	Property  *PropertyChanges  `json:"property,omitempty"`
	Rental    *RentalChanges    `json:"rental,omitempty"`
	Expenses  *ExpenseChanges   `json:"expenses,omitempty"`
	Taxes     *TaxChanges       `json:"taxes,omitempty"`
	Financing *FinancingChanges `json:"financing,omitempty"`
}

// ApplyRequest is the body of a partial update call. A nil Inputs means the
// changes are applied on top of the defaults.
type ApplyRequest struct {
	Inputs  *CalculatorInputs `json:"inputs,omitempty"`
	Changes InputChanges      `json:"changes"`
}

// Apply returns a new snapshot with the given changes merged in. The receiver
// is not modified.
func (in CalculatorInputs) Apply(c InputChanges) CalculatorInputs {
	out := in
	if p := c.Property; p != nil {
		setFloat(&out.Property.PurchasePrice, p.PurchasePrice)
		setFloat(&out.Property.InitialCapex, p.InitialCapex)
		if p.Currency != nil {
			out.Property.Currency = NormalizeCurrency(*p.Currency)
		}
	}
	if r := c.Rental; r != nil {
		if r.Model != nil {
			out.Rental.Model = *r.Model
		}
		setFloat(&out.Rental.MonthlyRent, r.MonthlyRent)
		setFloat(&out.Rental.NightlyRent, r.NightlyRent)
		setFloat(&out.Rental.Occupancy, r.Occupancy)
	}
	if e := c.Expenses; e != nil {
		if f := e.Fixed; f != nil {
			setFloat(&out.Expenses.Fixed.Utilities, f.Utilities)
			setFloat(&out.Expenses.Fixed.Staff, f.Staff)
			setFloat(&out.Expenses.Fixed.Insurance, f.Insurance)
			setFloat(&out.Expenses.Fixed.Other, f.Other)
		}
		if v := e.Variable; v != nil {
			setFloat(&out.Expenses.Variable.RevenueShare, v.RevenueShare)
		}
	}
	if t := c.Taxes; t != nil {
		setFloat(&out.Taxes.IncomeTaxRate, t.IncomeTaxRate)
	}
	if f := c.Financing; f != nil {
		setFloat(&out.Financing.Equity, f.Equity)
		setFloat(&out.Financing.LoanAmount, f.LoanAmount)
		setFloat(&out.Financing.InterestRate, f.InterestRate)
		setFloat(&out.Financing.LoanTermYears, f.LoanTermYears)
	}
	return out
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
