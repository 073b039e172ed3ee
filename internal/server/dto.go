package server

import (
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/internal/jobs"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/shopspring/decimal"
)

// scheduleRequest accepts amounts as JSON numbers or strings.
type scheduleRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
	TermYears         decimal.Decimal `json:"termYears"`
	Currency          string          `json:"currency,omitempty"`
	StartDate         string          `json:"startDate,omitempty"`
	Arithmetic        string          `json:"arithmetic,omitempty"`
}

func (r scheduleRequest) terms() amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:         r.Principal,
		AnnualRatePercent: r.AnnualRatePercent,
		TermYears:         r.TermYears,
		StartDate:         strings.TrimSpace(r.StartDate),
	}
}

func (r scheduleRequest) currency() string {
	code := strings.ToUpper(strings.TrimSpace(r.Currency))
	if code == "" {
		return constants.DefaultCurrency
	}
	return code
}

func (r scheduleRequest) warnings() []string {
	termYears, _ := r.TermYears.Float64()
	inputs := validation.LoanInputs{
		Principal:         r.Principal.InexactFloat64(),
		AnnualRatePercent: r.AnnualRatePercent.InexactFloat64(),
		TermYears:         termYears,
		Currency:          r.Currency,
		StartDate:         r.StartDate,
	}
	return inputs.ValidateAll()
}

type scheduleResponse struct {
	PeriodicPayment    string        `json:"periodicPayment"`
	TotalPayment       string        `json:"totalPayment"`
	ActualTotalPayment string        `json:"actualTotalPayment"`
	TotalInterest      string        `json:"totalInterest"`
	PeriodCount        int           `json:"periodCount"`
	Arithmetic         string        `json:"arithmetic"`
	Currency           string        `json:"currency"`
	MaturityDate       string        `json:"maturityDate,omitempty"`
	Display            displayTotals `json:"display"`
	Rows               []scheduleRow `json:"rows"`
	CSV                string        `json:"csv,omitempty"`
	Warnings           []string      `json:"warnings,omitempty"`
}

type displayTotals struct {
	PeriodicPayment string `json:"periodicPayment"`
	TotalPayment    string `json:"totalPayment"`
	TotalInterest   string `json:"totalInterest"`
}

type scheduleRow struct {
	Period              int    `json:"period"`
	DueDate             string `json:"dueDate,omitempty"`
	InterestRatePercent string `json:"interestRatePercent"`
	Payment             string `json:"payment"`
	Interest            string `json:"interest"`
	Principal           string `json:"principal"`
	RemainingBalance    string `json:"remainingBalance"`
}

func newScheduleResponse(result *amortization.Result, currency string, warnings []string) scheduleResponse {
	rows := result.Rows()
	response := scheduleResponse{
		PeriodicPayment:    fixed(result.PeriodicPayment()),
		TotalPayment:       fixed(result.TotalPayment()),
		ActualTotalPayment: fixed(result.ActualTotalPayment()),
		TotalInterest:      fixed(result.TotalInterest()),
		PeriodCount:        len(rows),
		Arithmetic:         string(result.Arithmetic()),
		Currency:           currency,
		Display: displayTotals{
			PeriodicPayment: format.Currency(result.PeriodicPayment(), currency),
			TotalPayment:    format.Currency(result.TotalPayment(), currency),
			TotalInterest:   format.Currency(result.TotalInterest(), currency),
		},
		Rows:     make([]scheduleRow, 0, len(rows)),
		Warnings: warnings,
	}
	if len(rows) > 0 {
		response.MaturityDate = rows[len(rows)-1].DueDate
	}

	for _, row := range rows {
		response.Rows = append(response.Rows, scheduleRow{
			Period:              row.Period,
			DueDate:             row.DueDate,
			InterestRatePercent: row.InterestRatePercent.String(),
			Payment:             fixed(row.Payment),
			Interest:            fixed(row.Interest),
			Principal:           fixed(row.Principal),
			RemainingBalance:    fixed(row.RemainingBalance),
		})
	}
	return response
}

type jobResponse struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`
	Error       string            `json:"error,omitempty"`
	Result      *scheduleResponse `json:"result,omitempty"`
}

func newJobResponse(job jobs.Job) jobResponse {
	response := jobResponse{
		ID:          job.ID.String(),
		Status:      string(job.State),
		SubmittedAt: job.SubmittedAt,
	}
	if !job.FinishedAt.IsZero() {
		finished := job.FinishedAt
		response.FinishedAt = &finished
	}
	if job.Err != nil {
		response.Error = job.Err.Error()
	}
	if job.Result != nil {
		currency := job.Currency
		if currency == "" {
			currency = constants.DefaultCurrency
		}
		result := newScheduleResponse(job.Result, currency, nil)
		response.Result = &result
	}
	return response
}

func fixed(value decimal.Decimal) string {
	return value.StringFixed(constants.CurrencyPlaces)
}
