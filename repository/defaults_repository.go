package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
)

// DefaultsRepository supplies the input snapshot used on first load and reset.
type DefaultsRepository interface {
	Defaults() domain.CalculatorInputs
}

// StaticDefaults always returns the same snapshot. Values are illustrative.
type StaticDefaults struct {
	inputs domain.CalculatorInputs
}

func NewStaticDefaults(inputs domain.CalculatorInputs) *StaticDefaults {
	return &StaticDefaults{inputs: inputs}
}

// Defaults returns a copy; callers cannot alter the stored snapshot.
func (s *StaticDefaults) Defaults() domain.CalculatorInputs {
	return s.inputs
}

func BuiltinDefaults() domain.CalculatorInputs {
	return domain.CalculatorInputs{
		Property: domain.PropertyInputs{
			PurchasePrice: 250_000,
			Currency:      "USD",
			InitialCapex:  25_000,
		},
		Rental: domain.RentalInputs{
			Model:       domain.RentalMonthly,
			MonthlyRent: 3_500,
			NightlyRent: 180,
			Occupancy:   75,
		},
		Expenses: domain.ExpenseInputs{
			Fixed: domain.FixedExpenses{
				Utilities: 250,
				Staff:     500,
				Insurance: 100,
				Other:     150,
			},
			Variable: domain.VariableExpenses{RevenueShare: 15},
		},
		Taxes: domain.TaxInputs{IncomeTaxRate: 10},
		Financing: domain.FinancingInputs{
			Equity:        150_000,
			LoanAmount:    125_000,
			InterestRate:  6.5,
			LoanTermYears: 15,
		},
	}
}

// LoadDefaultsFromFile reads a YAML snapshot. Sections missing from the file
// keep the built-in values.
func LoadDefaultsFromFile(path string) (domain.CalculatorInputs, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.CalculatorInputs{}, fmt.Errorf("read defaults file: %w", err)
	}

	inputs := BuiltinDefaults()
	if err := yaml.Unmarshal(b, &inputs); err != nil {
		return domain.CalculatorInputs{}, fmt.Errorf("unmarshal defaults: %w", err)
	}
	inputs.Property.Currency = domain.NormalizeCurrency(inputs.Property.Currency)
	return inputs, nil
}
