package ledger

import (
	"time"

	"kopilka/pkg/db"

	"github.com/shopspring/decimal"
)

// barSegments is the length of the budget utilization bar.
const barSegments = 10

var hundred = decimal.NewFromInt(100)

// Summary is a month of ledger data in the home currency.
type Summary struct {
	Month         time.Time
	Operations    []db.Operation
	TotalExpenses decimal.Decimal
	Budget        *decimal.Decimal
}

// ReportLine is a single operation converted to the display currency.
type ReportLine struct {
	Date   time.Time
	Type   string
	Amount decimal.Decimal
}

// Report is a Summary converted to a display currency, ready for rendering.
type Report struct {
	Month         time.Time
	Currency      string
	Lines         []ReportLine
	TotalExpenses decimal.Decimal

	HasBudget bool
	Budget    decimal.Decimal
	Remaining decimal.Decimal
	// Percent is budget utilization, rounded to two decimals and capped
	// at 100.00.
	Percent decimal.Decimal
	// Filled is the number of filled bar segments, in [0, barSegments].
	Filled int
}

// Convert divides every monetary figure by rate, rounding half-up to two
// decimal places. The rate must be positive; utilization of a zero budget
// is reported as 0%.
func (s *Summary) Convert(currency string, rate decimal.Decimal) Report {
	r := Report{
		Month:         s.Month,
		Currency:      currency,
		Lines:         make([]ReportLine, len(s.Operations)),
		TotalExpenses: convert(s.TotalExpenses, rate),
	}

	for i, op := range s.Operations {
		r.Lines[i] = ReportLine{
			Date:   op.Date,
			Type:   op.TypeOperation,
			Amount: convert(op.Sum, rate),
		}
	}

	if s.Budget == nil {
		return r
	}

	budget := *s.Budget
	r.HasBudget = true
	r.Budget = convert(budget, rate)
	r.Remaining = convert(budget.Sub(s.TotalExpenses), rate)

	if budget.IsZero() {
		return r
	}

	percent := s.TotalExpenses.Div(budget).Mul(hundred).Round(2)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	r.Percent = percent

	filled := int(percent.IntPart()) / 10
	if filled > barSegments {
		filled = barSegments
	}
	r.Filled = filled

	return r
}

func convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Div(rate).Round(2)
}
