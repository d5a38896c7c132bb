package financials

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var minCashBalance = decimal.NewFromInt(-1_000_000)

type FinancialInput struct {
	ID          int64           `json:"id"`
	StartupID   int64           `json:"-"`
	PeriodDate  dates.Date      `json:"period_date"`
	Revenue     decimal.Decimal `json:"revenue"`
	Costs       decimal.Decimal `json:"costs"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	MonthlyBurn decimal.Decimal `json:"monthly_burn"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
	Notes       *string         `json:"notes"`
	CreatedAt   time.Time       `json:"created"`
}

// Period is one submitted financial period. Amounts default to zero.
type Period struct {
	PeriodDate  *dates.Date     `json:"period_date"`
	Revenue     decimal.Decimal `json:"revenue"`
	Costs       decimal.Decimal `json:"costs"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	MonthlyBurn decimal.Decimal `json:"monthly_burn"`
	Notes       *string         `json:"notes"`
}

// NetCashFlow is revenue minus costs.
func NetCashFlow(revenue, costs decimal.Decimal) decimal.Decimal {
	return revenue.Sub(costs)
}

func (p Period) Validate() error {
	fields := validation.Errors{}
	if p.PeriodDate == nil || p.PeriodDate.IsZero() {
		fields.Add("period_date", validation.MsgRequired)
	}
	if p.Revenue.IsNegative() {
		fields.Add("revenue", "Revenue cannot be negative")
	}
	if p.Costs.IsNegative() {
		fields.Add("costs", "Costs cannot be negative")
	}
	if p.CashBalance.LessThan(minCashBalance) {
		fields.Add("cash_balance", "Cash balance seems unrealistically negative. Please verify.")
	}
	if p.MonthlyBurn.IsNegative() {
		fields.Add("monthly_burn", "Monthly burn rate cannot be negative")
	}
	return fields.Err()
}
