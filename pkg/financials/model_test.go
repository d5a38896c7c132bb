package financials

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

func TestPeriod_Validate(t *testing.T) {
	day := dates.New(2024, 1, 31)

	ok := Period{PeriodDate: &day, Revenue: decimal.NewFromInt(5000), CashBalance: decimal.NewFromInt(-999_999)}
	require.NoError(t, ok.Validate())

	bad := Period{
		Revenue:     decimal.NewFromInt(-1),
		Costs:       decimal.NewFromInt(-1),
		CashBalance: decimal.NewFromInt(-1_000_001),
		MonthlyBurn: decimal.NewFromInt(-1),
	}
	fields, isFields := validation.As(bad.Validate())
	require.True(t, isFields)
	require.Equal(t, validation.MsgRequired, fields["period_date"])
	require.Equal(t, "Revenue cannot be negative", fields["revenue"])
	require.Equal(t, "Costs cannot be negative", fields["costs"])
	require.Contains(t, fields, "cash_balance")
	require.Equal(t, "Monthly burn rate cannot be negative", fields["monthly_burn"])
}

func TestNetCashFlow(t *testing.T) {
	got := NetCashFlow(decimal.RequireFromString("5000.50"), decimal.RequireFromString("8000.25"))
	require.Equal(t, "-2999.75", got.String())
}
