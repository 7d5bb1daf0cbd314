package ledger

import (
	"testing"
	"time"

	"kopilka/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestConvertHomeCurrencyIdentity(t *testing.T) {
	s := &Summary{
		Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Operations: []db.Operation{
			{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Sum: dec("150.00"), TypeOperation: db.OperationExpense},
		},
		TotalExpenses: dec("150.00"),
		Budget:        decPtr("1000"),
	}

	r := s.Convert("RUB", decimal.NewFromInt(1))

	require.Len(t, r.Lines, 1)
	assert.Equal(t, "150.00", r.Lines[0].Amount.StringFixed(2))
	assert.Equal(t, "150.00", r.TotalExpenses.StringFixed(2))
	require.True(t, r.HasBudget)
	assert.Equal(t, "1000.00", r.Budget.StringFixed(2))
	assert.Equal(t, "850.00", r.Remaining.StringFixed(2))
	assert.Equal(t, "15.00", r.Percent.StringFixed(2))
	assert.Equal(t, 1, r.Filled)
}

func TestConvertForeignCurrencyRounding(t *testing.T) {
	s := &Summary{
		Operations: []db.Operation{
			{Sum: dec("150.00"), TypeOperation: db.OperationExpense},
		},
		TotalExpenses: dec("150.00"),
		Budget:        decPtr("1000"),
	}

	r := s.Convert("USD", dec("75.50"))

	// 150 / 75.50 = 1.98675..., rounds half-up to 1.99
	assert.Equal(t, "1.99", r.Lines[0].Amount.StringFixed(2))
	assert.Equal(t, "1.99", r.TotalExpenses.StringFixed(2))
	// 1000 / 75.50 = 13.245...
	assert.Equal(t, "13.25", r.Budget.StringFixed(2))
	// 850 / 75.50 = 11.258...
	assert.Equal(t, "11.26", r.Remaining.StringFixed(2))
	// utilization is computed before conversion and stays the same
	assert.Equal(t, "15.00", r.Percent.StringFixed(2))
}

func TestConvertPercentClamped(t *testing.T) {
	s := &Summary{
		TotalExpenses: dec("2500"),
		Budget:        decPtr("1000"),
	}

	r := s.Convert("RUB", decimal.NewFromInt(1))

	assert.Equal(t, "100.00", r.Percent.StringFixed(2))
	assert.Equal(t, 10, r.Filled)
	assert.Equal(t, "-1500.00", r.Remaining.StringFixed(2))
}

func TestConvertZeroBudgetGuarded(t *testing.T) {
	s := &Summary{
		TotalExpenses: dec("100"),
		Budget:        decPtr("0"),
	}

	r := s.Convert("RUB", decimal.NewFromInt(1))

	require.True(t, r.HasBudget)
	assert.Equal(t, "0.00", r.Percent.StringFixed(2))
	assert.Equal(t, 0, r.Filled)
}

func TestConvertNoBudget(t *testing.T) {
	s := &Summary{
		TotalExpenses: dec("100"),
	}

	r := s.Convert("RUB", decimal.NewFromInt(1))

	assert.False(t, r.HasBudget)
	assert.Equal(t, "0.00", r.Percent.StringFixed(2))
}

func TestConvertFilledSegmentsBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		expenses string
		filled   int
	}{
		{"empty", "0", 0},
		{"just under one segment", "99", 0},
		{"exactly one segment", "100", 1},
		{"rounds into next segment", "99.996", 1},
		{"nine and a half", "950", 9},
		{"full", "1000", 10},
		{"over budget", "1001", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Summary{
				TotalExpenses: dec(tt.expenses),
				Budget:        decPtr("1000"),
			}

			r := s.Convert("RUB", decimal.NewFromInt(1))
			assert.Equal(t, tt.filled, r.Filled)
		})
	}
}
