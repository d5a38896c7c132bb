package campaigns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const investmentSelect = `
	SELECT v.id, v.round_id, ir.name, s.id, s.company_name, s.logo_url, s.user_id,
	       v.amount, v.status, v.created_at, v.updated_at
	FROM investors v
	JOIN investment_rounds ir ON ir.id = v.round_id
	JOIN campaigns c ON c.id = ir.campaign_id
	JOIN startups s ON s.id = c.startup_id`

func scanInvestment(row pgx.Row) (Investment, error) {
	var inv Investment
	err := row.Scan(&inv.ID, &inv.RoundID, &inv.RoundName, &inv.StartupID, &inv.StartupName, &inv.LogoURL,
		&inv.StartupUserID, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *postgresCampaignRepository) ListInvestments(ctx context.Context, incubatorID int64) ([]Investment, error) {
	rows, err := r.db.Query(ctx, investmentSelect+` WHERE v.incubator_id = $1 ORDER BY v.created_at DESC, v.id DESC`, incubatorID)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Investment, error) {
		return scanInvestment(row)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Investment{}
	}
	return list, nil
}

func (r *postgresCampaignRepository) GetInvestment(ctx context.Context, incubatorID, id int64) (Investment, error) {
	inv, err := scanInvestment(r.db.QueryRow(ctx, investmentSelect+` WHERE v.id = $1 AND v.incubator_id = $2`, id, incubatorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Investment{}, ErrInvestmentNotFound
	}
	return inv, err
}

func (r *postgresCampaignRepository) UpdateInvestmentStatus(ctx context.Context, incubatorID, id int64, status string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE investors SET status = $3, updated_at = NOW()
		WHERE id = $1 AND incubator_id = $2`, id, incubatorID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvestmentNotFound
	}
	return nil
}
