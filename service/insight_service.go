package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
	"github.com/inexabali-blip/calculator-nedvizhimosti/format"
)

// InsightConfig points the service at an OpenAI-compatible chat endpoint. An
// empty APIKey keeps everything local.
type InsightConfig struct {
	APIKey string
	APIURL string
	Model  string
}

type InsightService struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
	log        *logrus.Logger
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewInsightService(cfg InsightConfig, log *logrus.Logger) *InsightService {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAIEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultAIModel
	}
	return &InsightService{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.APIURL,
		model:   cfg.Model,
		enabled: cfg.APIKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Summarize explains the investment case in a few sentences. When no model is
// configured, or the call fails, a locally generated summary is returned.
// Inputs are quoted as the calculator saw them, after sanitizing.
func (s *InsightService) Summarize(
	ctx context.Context,
	inputs domain.CalculatorInputs,
	results domain.CalculatorResults,
	f *format.Formatter,
) string {
	inputs = Sanitize(inputs)
	fallback := s.localSummary(inputs, results, f)
	if !s.enabled {
		return fallback
	}

	prompt := fmt.Sprintf(`Review this rental property investment and explain it to a private investor.

INPUTS:
- Purchase price: %s, initial capex: %s
- Rental model: %s, occupancy: %s
- Equity: %s, loan: %s at %s for %s years

RESULTS:
- Net operating income: %s per year
- Annual debt service: %s
- Cash flow after debt and tax: %s per year
- Cash-on-cash return: %s, cap rate: %s
- Payback period: %s
- Break-even occupancy: %s

Write 3-4 plain sentences: whether the property covers its debt, how the returns compare with the risk, and what the break-even occupancy means for this property.`,
		f.Currency(inputs.Property.PurchasePrice, inputs.Property.Currency),
		f.Currency(inputs.Property.InitialCapex, inputs.Property.Currency),
		modelLabel(inputs.Rental.Model),
		f.Percent(inputs.Rental.Occupancy, 0),
		f.Currency(inputs.Financing.Equity, inputs.Property.Currency),
		f.Currency(inputs.Financing.LoanAmount, inputs.Property.Currency),
		f.Percent(inputs.Financing.InterestRate, 2),
		f.Number(inputs.Financing.LoanTermYears, 0),
		f.Currency(results.NOI, inputs.Property.Currency),
		f.Currency(results.LoanPayments.Annual, inputs.Property.Currency),
		f.Currency(results.CashFlow.AnnualAfterDebtAndTax, inputs.Property.Currency),
		f.Percent(results.ReturnMetrics.CashOnCash, 1),
		f.Percent(results.ReturnMetrics.CapRate, 1),
		f.Years(results.ReturnMetrics.PaybackPeriodYears),
		f.OptionalPercent(results.ReturnMetrics.BreakEvenOccupancy, 1),
	)

	summary, err := s.callLLM(ctx, prompt)
	if err != nil {
		s.log.Warnf("Error calling AI service for investment summary: %v", err)
		return fallback
	}
	return summary
}

func (s *InsightService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a real-estate investment analyst. You explain rental property returns clearly and precisely, quoting the figures you are given and never inventing new ones.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: summaryMaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from AI")
	}
	return content, nil
}

func (s *InsightService) localSummary(
	inputs domain.CalculatorInputs,
	results domain.CalculatorResults,
	f *format.Formatter,
) string {
	cur := inputs.Property.Currency
	cashFlow := results.CashFlow.AnnualAfterDebtAndTax

	var b strings.Builder
	if cashFlow > 0 {
		fmt.Fprintf(&b, "After debt service and tax the property generates %s per year, a cash-on-cash return of %s.",
			f.Currency(cashFlow, cur), f.Percent(results.ReturnMetrics.CashOnCash, 1))
	} else {
		fmt.Fprintf(&b, "The property does not cover its costs: cash flow after debt service and tax is %s per year.",
			f.Currency(cashFlow, cur))
	}

	fmt.Fprintf(&b, " The cap rate is %s.", f.Percent(results.ReturnMetrics.CapRate, 1))

	if _, ok := results.ReturnMetrics.PaybackPeriodYears.Get(); ok {
		fmt.Fprintf(&b, " The invested equity is recovered in %s.", f.Years(results.ReturnMetrics.PaybackPeriodYears))
	}

	if be, ok := results.ReturnMetrics.BreakEvenOccupancy.Get(); ok {
		switch {
		case be > 100:
			fmt.Fprintf(&b, " Break-even needs %s occupancy, which is out of reach.", f.Percent(be, 1))
		default:
			fmt.Fprintf(&b, " Fixed costs and debt service are covered from %s occupancy.", f.Percent(be, 1))
		}
	} else {
		b.WriteString(" Break-even occupancy is undefined because the property earns nothing net of variable costs.")
	}
	return b.String()
}

func modelLabel(m domain.RentalModel) string {
	if m == domain.RentalDaily {
		return "daily"
	}
	return "monthly"
}
