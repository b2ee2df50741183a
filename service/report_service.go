package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
	"github.com/inexabali-blip/calculator-nedvizhimosti/format"
)

type ReportLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ReportSection struct {
	Title string       `json:"title"`
	Lines []ReportLine `json:"lines"`
}

// Report is the display form of one calculation.
type Report struct {
	Locale   string                   `json:"locale"`
	Currency string                   `json:"currency"`
	Sections []ReportSection          `json:"sections"`
	Summary  string                   `json:"summary"`
	Results  domain.CalculatorResults `json:"results"`
}

type ReportService struct {
	calculator    *CalculatorService
	insights      *InsightService
	defaultLocale string
	log           *logrus.Logger
}

func NewReportService(
	calculator *CalculatorService,
	insights *InsightService,
	defaultLocale string,
	log *logrus.Logger,
) *ReportService {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return &ReportService{
		calculator:    calculator,
		insights:      insights,
		defaultLocale: defaultLocale,
		log:           log,
	}
}

// BuildReport computes inputs and renders every result for display.
func (s *ReportService) BuildReport(
	ctx context.Context,
	inputs domain.CalculatorInputs,
	locale string,
) Report {
	if locale == "" {
		locale = s.defaultLocale
	}
	f := format.New(locale)
	results := s.calculator.Calculate(ctx, inputs)

	cur := domain.NormalizeCurrency(inputs.Property.Currency)
	if cur == "" {
		cur = DefaultCurrency
	}
	money := func(v float64) string { return f.Currency(v, cur) }
	rm := results.ReturnMetrics

	report := Report{
		Locale:   f.Locale(),
		Currency: cur,
		Results:  results,
		Sections: []ReportSection{
			{Title: "Revenue", Lines: []ReportLine{
				{"Monthly", money(results.GrossIncome.Monthly)},
				{"Annual", money(results.GrossIncome.Annual)},
			}},
			{Title: "Operating expenses", Lines: []ReportLine{
				{"Monthly fixed", money(results.OperatingExpenses.MonthlyFixed)},
				{"Monthly variable", money(results.OperatingExpenses.MonthlyVariable)},
				{"Monthly total", money(results.OperatingExpenses.MonthlyTotal)},
				{"Annual total", money(results.OperatingExpenses.AnnualTotal)},
			}},
			{Title: "NOI and taxes", Lines: []ReportLine{
				{"Net operating income", money(results.NOI)},
				{"Income tax", money(results.Taxes)},
			}},
			{Title: "Loan", Lines: []ReportLine{
				{"Monthly payment", money(results.LoanPayments.Monthly)},
				{"Annual payment", money(results.LoanPayments.Annual)},
			}},
			{Title: "Cash flow", Lines: []ReportLine{
				{"Before debt service", money(results.CashFlow.AnnualBeforeDebt)},
				{"After debt service, before tax", money(results.CashFlow.AnnualAfterDebtBeforeTax)},
				{"After debt service and tax", money(results.CashFlow.AnnualAfterDebtAndTax)},
			}},
			{Title: "Return metrics", Lines: []ReportLine{
				{"Cash-on-cash", f.Percent(rm.CashOnCash, 1)},
				{"Cap rate", f.Percent(rm.CapRate, 1)},
				{"Payback period", f.Years(rm.PaybackPeriodYears)},
				{"Break-even occupancy", f.OptionalPercent(rm.BreakEvenOccupancy, 1)},
			}},
		},
	}

	inputsForSummary := inputs
	inputsForSummary.Property.Currency = cur
	report.Summary = s.insights.Summarize(ctx, inputsForSummary, results, f)

	s.log.Debugf("Report built for locale %s", report.Locale)
	return report
}
