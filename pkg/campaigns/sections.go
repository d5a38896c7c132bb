package campaigns

import (
	"context"
)

// loadSections fills the nested sections of every campaign in list and
// computes the committed totals.
func (r *postgresCampaignRepository) loadSections(ctx context.Context, list []Campaign) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	index := make(map[int64]*Campaign, len(list))
	for i := range list {
		ids[i] = list[i].ID
		list[i].TeamMembers = []TeamMember{}
		list[i].Tractions = []Traction{}
		list[i].Rounds = []InvestmentRound{}
		index[list[i].ID] = &list[i]
	}

	if err := r.loadTeam(ctx, ids, index); err != nil {
		return err
	}
	if err := r.loadFinancials(ctx, ids, index); err != nil {
		return err
	}
	if err := r.loadTractions(ctx, ids, index); err != nil {
		return err
	}
	if err := r.loadLegal(ctx, ids, index); err != nil {
		return err
	}
	if err := r.loadRounds(ctx, ids, index); err != nil {
		return err
	}

	for i := range list {
		list[i].computeTotals()
	}
	return nil
}

func (r *postgresCampaignRepository) loadTeam(ctx context.Context, ids []int64, index map[int64]*Campaign) error {
	rows, err := r.db.Query(ctx, `
		SELECT campaign_id, id, name, role, linkedin, avatar_url
		FROM campaign_team_members WHERE campaign_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var m TeamMember
		if err := rows.Scan(&campaignID, &m.ID, &m.Name, &m.Role, &m.LinkedIn, &m.AvatarURL); err != nil {
			return err
		}
		c := index[campaignID]
		c.TeamMembers = append(c.TeamMembers, m)
	}
	return rows.Err()
}

func (r *postgresCampaignRepository) loadFinancials(ctx context.Context, ids []int64, index map[int64]*Campaign) error {
	rows, err := r.db.Query(ctx, `
		SELECT campaign_id, id, funding_goal, valuation, usage_of_funds, revenue_history,
		       pre_money_valuation, current_cash_balance, monthly_burn_rate, financial_projections
		FROM campaign_financials WHERE campaign_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var f Financials
		if err := rows.Scan(&campaignID, &f.ID, &f.FundingGoal, &f.Valuation, &f.UsageOfFunds, &f.RevenueHistory,
			&f.PreMoneyValuation, &f.CurrentCashBalance, &f.MonthlyBurnRate, &f.FinancialProjections); err != nil {
			return err
		}
		index[campaignID].Financials = &f
	}
	return rows.Err()
}

func (r *postgresCampaignRepository) loadTractions(ctx context.Context, ids []int64, index map[int64]*Campaign) error {
	rows, err := r.db.Query(ctx, `
		SELECT campaign_id, id, metrics, proof_doc_url
		FROM campaign_tractions WHERE campaign_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var t Traction
		if err := rows.Scan(&campaignID, &t.ID, &t.Metrics, &t.ProofDocURL); err != nil {
			return err
		}
		c := index[campaignID]
		c.Tractions = append(c.Tractions, t)
	}
	return rows.Err()
}

func (r *postgresCampaignRepository) loadLegal(ctx context.Context, ids []int64, index map[int64]*Campaign) error {
	rows, err := r.db.Query(ctx, `
		SELECT campaign_id, id, constitution_url, whitepaper_url, cap_table_url
		FROM campaign_legal WHERE campaign_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var campaignID int64
		var l Legal
		if err := rows.Scan(&campaignID, &l.ID, &l.ConstitutionURL, &l.WhitepaperURL, &l.CapTableURL); err != nil {
			return err
		}
		index[campaignID].Legal = &l
	}
	return rows.Err()
}

// loadRounds reads rounds and their investors. Investor rows are attached
// through a round index since pointers into Rounds move as it grows.
func (r *postgresCampaignRepository) loadRounds(ctx context.Context, ids []int64, index map[int64]*Campaign) error {
	rows, err := r.db.Query(ctx, `
		SELECT campaign_id, id, name, target_amount, pre_money_valuation, status, is_current,
		       launch_date, target_close_date, actual_close_date, created_at
		FROM investment_rounds WHERE campaign_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	type position struct {
		campaignID int64
		i          int
	}
	rounds := make(map[int64]position)
	for rows.Next() {
		var campaignID int64
		var ir InvestmentRound
		if err := rows.Scan(&campaignID, &ir.ID, &ir.Name, &ir.TargetAmount, &ir.PreMoneyValuation, &ir.Status,
			&ir.IsCurrent, &ir.LaunchDate, &ir.TargetCloseDate, &ir.ActualCloseDate, &ir.CreatedAt); err != nil {
			return err
		}
		ir.Investors = []Investor{}
		c := index[campaignID]
		rounds[ir.ID] = position{campaignID: campaignID, i: len(c.Rounds)}
		c.Rounds = append(c.Rounds, ir)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	if len(rounds) == 0 {
		return nil
	}

	invRows, err := r.db.Query(ctx, `
		SELECT v.id, v.round_id, v.incubator_id, i.name, v.status, v.amount, v.created_at
		FROM investors v
		JOIN investment_rounds ir ON ir.id = v.round_id
		JOIN incubators i ON i.id = v.incubator_id
		WHERE ir.campaign_id = ANY($1)
		ORDER BY v.id`, ids)
	if err != nil {
		return err
	}
	defer invRows.Close()

	for invRows.Next() {
		var inv Investor
		if err := invRows.Scan(&inv.ID, &inv.RoundID, &inv.IncubatorID, &inv.IncubatorName, &inv.Status,
			&inv.Amount, &inv.CreatedAt); err != nil {
			return err
		}
		pos, ok := rounds[inv.RoundID]
		if !ok {
			continue
		}
		round := &index[pos.campaignID].Rounds[pos.i]
		round.Investors = append(round.Investors, inv)
	}
	return invRows.Err()
}
