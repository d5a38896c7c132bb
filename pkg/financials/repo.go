package financials

import (
	"context"
	"errors"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var ErrDuplicatePeriod = errors.New("financial data for this period already exists")

type FinancialRepository interface {
	ListByStartup(ctx context.Context, startupID int64) ([]FinancialInput, error)
	Create(ctx context.Context, startupID int64, p Period) (FinancialInput, error)
	DeleteByStartup(ctx context.Context, startupID int64) (int64, error)
}

type postgresFinancialRepository struct {
	db db.DBTX
}

func NewPostgresFinancialRepository(conn db.DBTX) FinancialRepository {
	return &postgresFinancialRepository{db: conn}
}

const financialColumns = `id, startup_id, period_date, revenue, costs, cash_balance, monthly_burn, notes, created_at`

func (r *postgresFinancialRepository) ListByStartup(ctx context.Context, startupID int64) ([]FinancialInput, error) {
	rows, err := r.db.Query(ctx, `SELECT `+financialColumns+` FROM financial_inputs
		WHERE startup_id = $1 ORDER BY period_date DESC`, startupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []FinancialInput{}
	for rows.Next() {
		var f FinancialInput
		if err := rows.Scan(&f.ID, &f.StartupID, &f.PeriodDate, &f.Revenue, &f.Costs,
			&f.CashBalance, &f.MonthlyBurn, &f.Notes, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.NetCashFlow = NetCashFlow(f.Revenue, f.Costs)
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *postgresFinancialRepository) Create(ctx context.Context, startupID int64, p Period) (FinancialInput, error) {
	query := `INSERT INTO financial_inputs (startup_id, period_date, revenue, costs, cash_balance, monthly_burn, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING ` + financialColumns

	var f FinancialInput
	err := r.db.QueryRow(ctx, query, startupID, p.PeriodDate, p.Revenue, p.Costs, p.CashBalance, p.MonthlyBurn, p.Notes).
		Scan(&f.ID, &f.StartupID, &f.PeriodDate, &f.Revenue, &f.Costs, &f.CashBalance, &f.MonthlyBurn, &f.Notes, &f.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return FinancialInput{}, ErrDuplicatePeriod
		}
		return FinancialInput{}, err
	}
	f.NetCashFlow = NetCashFlow(f.Revenue, f.Costs)
	return f, nil
}

func (r *postgresFinancialRepository) DeleteByStartup(ctx context.Context, startupID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM financial_inputs WHERE startup_id = $1`, startupID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
