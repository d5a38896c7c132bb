package campaigns

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrCampaignExists     = errors.New("campaign already exists")
	ErrInvestmentNotFound = errors.New("investment not found")
	ErrUnknownIncubator   = errors.New("unknown incubator")
	ErrUnknownRound       = errors.New("unknown round")
	ErrUnknownInvestor    = errors.New("unknown investor")
)

type CampaignRepository interface {
	GetByStartup(ctx context.Context, startupID int64) (Campaign, error)
	GetForStartup(ctx context.Context, startupID, id int64) (Campaign, error)
	MapByStartupIDs(ctx context.Context, startupIDs []int64) (map[int64]Campaign, error)
	Create(ctx context.Context, startupID int64, in CampaignInput) (Campaign, error)
	GetOrCreate(ctx context.Context, startupID int64) (Campaign, bool, error)
	UpdateBasics(ctx context.Context, id int64, in CampaignInput) error
	Delete(ctx context.Context, startupID, id int64) error
	SetStatus(ctx context.Context, id int64, from, to string) (bool, error)

	ReplaceTeam(ctx context.Context, campaignID int64, members []TeamMemberInput) error
	UpsertFinancials(ctx context.Context, campaignID int64, in FinancialsInput) error
	ReplaceTractions(ctx context.Context, campaignID int64, tractions []TractionInput) error
	UpsertLegal(ctx context.Context, campaignID int64, in LegalInput) error
	ReplaceRounds(ctx context.Context, campaignID int64, rounds []RoundInput) error

	GetOrCreateSheet(ctx context.Context, campaignID int64) (FinancialSheet, error)
	UpdateSheet(ctx context.Context, campaignID int64, data []byte) (FinancialSheet, error)

	ListInvestments(ctx context.Context, incubatorID int64) ([]Investment, error)
	GetInvestment(ctx context.Context, incubatorID, id int64) (Investment, error)
	UpdateInvestmentStatus(ctx context.Context, incubatorID, id int64, status string) error
}

type postgresCampaignRepository struct {
	db db.DBTX
}

func NewPostgresCampaignRepository(conn db.DBTX) CampaignRepository {
	return &postgresCampaignRepository{db: conn}
}

const campaignColumns = `id, startup_id, problem, solution, business_model, status, created_at, updated_at`

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.StartupID, &c.Problem, &c.Solution, &c.BusinessModel, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *postgresCampaignRepository) one(ctx context.Context, query string, args ...any) (Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, ErrCampaignNotFound
		}
		return Campaign{}, err
	}
	list := []Campaign{c}
	if err := r.loadSections(ctx, list); err != nil {
		return Campaign{}, err
	}
	return list[0], nil
}

func (r *postgresCampaignRepository) GetByStartup(ctx context.Context, startupID int64) (Campaign, error) {
	return r.one(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE startup_id = $1`, startupID)
}

func (r *postgresCampaignRepository) GetForStartup(ctx context.Context, startupID, id int64) (Campaign, error) {
	return r.one(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 AND startup_id = $2`, id, startupID)
}

func (r *postgresCampaignRepository) MapByStartupIDs(ctx context.Context, startupIDs []int64) (map[int64]Campaign, error) {
	rows, err := r.db.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE startup_id = ANY($1) ORDER BY id`, startupIDs)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Campaign, error) {
		return scanCampaign(row)
	})
	if err != nil {
		return nil, err
	}
	if err := r.loadSections(ctx, list); err != nil {
		return nil, err
	}

	out := make(map[int64]Campaign, len(list))
	for _, c := range list {
		out[c.StartupID] = c
	}
	return out, nil
}

func (r *postgresCampaignRepository) Create(ctx context.Context, startupID int64, in CampaignInput) (Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx, `
		INSERT INTO campaigns (startup_id, problem, solution, business_model)
		VALUES ($1, $2, $3, $4)
		RETURNING `+campaignColumns, startupID, in.Problem, in.Solution, in.BusinessModel))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Campaign{}, ErrCampaignExists
		}
		return Campaign{}, err
	}
	return c, nil
}

// GetOrCreate returns the startup's campaign, creating a DRAFT one when none
// exists. created reports whether a row was inserted.
func (r *postgresCampaignRepository) GetOrCreate(ctx context.Context, startupID int64) (Campaign, bool, error) {
	_, err := scanCampaign(r.db.QueryRow(ctx, `
		INSERT INTO campaigns (startup_id) VALUES ($1)
		ON CONFLICT (startup_id) DO NOTHING
		RETURNING `+campaignColumns, startupID))
	created := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, false, err
	}
	c, err := r.GetByStartup(ctx, startupID)
	return c, created, err
}

// UpdateBasics overwrites the free-text fields that are present in in.
func (r *postgresCampaignRepository) UpdateBasics(ctx context.Context, id int64, in CampaignInput) error {
	_, err := r.db.Exec(ctx, `
		UPDATE campaigns
		SET problem = COALESCE($2, problem),
		    solution = COALESCE($3, solution),
		    business_model = COALESCE($4, business_model),
		    updated_at = NOW()
		WHERE id = $1`, id, in.Problem, in.Solution, in.BusinessModel)
	return err
}

func (r *postgresCampaignRepository) Delete(ctx context.Context, startupID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND startup_id = $2`, id, startupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// SetStatus moves the campaign from one status to another and reports
// whether it was in the from status.
func (r *postgresCampaignRepository) SetStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE campaigns SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresCampaignRepository) ReplaceTeam(ctx context.Context, campaignID int64, members []TeamMemberInput) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM campaign_team_members WHERE campaign_id = $1`, campaignID); err != nil {
		return err
	}
	for _, m := range members {
		_, err := r.db.Exec(ctx, `
			INSERT INTO campaign_team_members (campaign_id, name, role, linkedin, avatar_url)
			VALUES ($1, $2, $3, $4, $5)`, campaignID, m.Name, m.Role, m.LinkedIn, m.AvatarURL)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCampaignRepository) UpsertFinancials(ctx context.Context, campaignID int64, in FinancialsInput) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO campaign_financials (campaign_id, funding_goal, valuation, usage_of_funds, revenue_history,
			pre_money_valuation, current_cash_balance, monthly_burn_rate, financial_projections)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (campaign_id) DO UPDATE
		SET funding_goal = EXCLUDED.funding_goal,
		    valuation = EXCLUDED.valuation,
		    usage_of_funds = EXCLUDED.usage_of_funds,
		    revenue_history = EXCLUDED.revenue_history,
		    pre_money_valuation = EXCLUDED.pre_money_valuation,
		    current_cash_balance = EXCLUDED.current_cash_balance,
		    monthly_burn_rate = EXCLUDED.monthly_burn_rate,
		    financial_projections = EXCLUDED.financial_projections,
		    updated_at = NOW()`,
		campaignID, in.FundingGoal, in.Valuation, jsonObject(in.UsageOfFunds), jsonObject(in.RevenueHistory),
		in.PreMoneyValuation, in.CurrentCashBalance, in.MonthlyBurnRate, jsonObject(in.FinancialProjections))
	return err
}

func (r *postgresCampaignRepository) ReplaceTractions(ctx context.Context, campaignID int64, tractions []TractionInput) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM campaign_tractions WHERE campaign_id = $1`, campaignID); err != nil {
		return err
	}
	for _, t := range tractions {
		_, err := r.db.Exec(ctx, `
			INSERT INTO campaign_tractions (campaign_id, metrics, proof_doc_url) VALUES ($1, $2, $3)`,
			campaignID, jsonObject(t.Metrics), t.ProofDocURL)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCampaignRepository) UpsertLegal(ctx context.Context, campaignID int64, in LegalInput) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO campaign_legal (campaign_id, constitution_url, whitepaper_url, cap_table_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (campaign_id) DO UPDATE
		SET constitution_url = EXCLUDED.constitution_url,
		    whitepaper_url = EXCLUDED.whitepaper_url,
		    cap_table_url = EXCLUDED.cap_table_url,
		    updated_at = NOW()`,
		campaignID, in.ConstitutionURL, in.WhitepaperURL, in.CapTableURL)
	return err
}

// ReplaceRounds makes the campaign's rounds, and their investors, match
// rounds. Entries carrying an id are updated in place and keep their id;
// entries without one are inserted; stored rows left out are deleted. At most
// one of rounds may be current.
func (r *postgresCampaignRepository) ReplaceRounds(ctx context.Context, campaignID int64, rounds []RoundInput) error {
	keep := make([]int64, 0, len(rounds))
	for _, in := range rounds {
		if in.ID != nil {
			keep = append(keep, *in.ID)
		}
	}
	if _, err := r.db.Exec(ctx, `
		DELETE FROM investment_rounds WHERE campaign_id = $1 AND NOT (id = ANY($2))`, campaignID, keep); err != nil {
		return err
	}
	// Cleared first so the one-current index holds while rows are rewritten.
	if _, err := r.db.Exec(ctx, `
		UPDATE investment_rounds SET is_current = false WHERE campaign_id = $1 AND is_current`, campaignID); err != nil {
		return err
	}

	for _, in := range rounds {
		roundID, err := r.saveRound(ctx, campaignID, in)
		if err != nil {
			return err
		}
		if err := r.syncInvestors(ctx, roundID, in.Investors); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCampaignRepository) saveRound(ctx context.Context, campaignID int64, in RoundInput) (int64, error) {
	var roundID int64
	if in.ID == nil {
		err := r.db.QueryRow(ctx, `
			INSERT INTO investment_rounds (campaign_id, name, target_amount, pre_money_valuation, status,
				is_current, launch_date, target_close_date, actual_close_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			campaignID, in.Name, in.TargetAmount, in.PreMoneyValuation, in.Status,
			in.IsCurrent, in.LaunchDate, in.TargetCloseDate, in.ActualCloseDate).Scan(&roundID)
		return roundID, err
	}

	err := r.db.QueryRow(ctx, `
		UPDATE investment_rounds
		SET name = $3, target_amount = $4, pre_money_valuation = $5, status = $6, is_current = $7,
		    launch_date = $8, target_close_date = $9, actual_close_date = $10, updated_at = NOW()
		WHERE id = $1 AND campaign_id = $2
		RETURNING id`,
		*in.ID, campaignID, in.Name, in.TargetAmount, in.PreMoneyValuation, in.Status,
		in.IsCurrent, in.LaunchDate, in.TargetCloseDate, in.ActualCloseDate).Scan(&roundID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnknownRound
	}
	return roundID, err
}

func (r *postgresCampaignRepository) syncInvestors(ctx context.Context, roundID int64, investors []InvestorInput) error {
	keep := make([]int64, 0, len(investors))
	for _, inv := range investors {
		if inv.ID != nil {
			keep = append(keep, *inv.ID)
		}
	}
	if _, err := r.db.Exec(ctx, `
		DELETE FROM investors WHERE round_id = $1 AND NOT (id = ANY($2))`, roundID, keep); err != nil {
		return err
	}

	for _, inv := range investors {
		var err error
		if inv.ID == nil {
			_, err = r.db.Exec(ctx, `
				INSERT INTO investors (round_id, incubator_id, status, amount) VALUES ($1, $2, $3, $4)`,
				roundID, inv.IncubatorID, inv.Status, inv.Amount)
		} else {
			var tag pgconn.CommandTag
			tag, err = r.db.Exec(ctx, `
				UPDATE investors SET incubator_id = $3, status = $4, amount = $5, updated_at = NOW()
				WHERE id = $1 AND round_id = $2`,
				*inv.ID, roundID, inv.IncubatorID, inv.Status, inv.Amount)
			if err == nil && tag.RowsAffected() == 0 {
				return ErrUnknownInvestor
			}
		}
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrUnknownIncubator
			}
			return err
		}
	}
	return nil
}

func (r *postgresCampaignRepository) GetOrCreateSheet(ctx context.Context, campaignID int64) (FinancialSheet, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO financial_sheets (campaign_id) VALUES ($1) ON CONFLICT (campaign_id) DO NOTHING`, campaignID); err != nil {
		return FinancialSheet{}, err
	}
	return r.sheet(ctx, `SELECT id, campaign_id, sheet_data, created_at, updated_at
		FROM financial_sheets WHERE campaign_id = $1`, campaignID)
}

func (r *postgresCampaignRepository) UpdateSheet(ctx context.Context, campaignID int64, data []byte) (FinancialSheet, error) {
	return r.sheet(ctx, `
		INSERT INTO financial_sheets (campaign_id, sheet_data) VALUES ($1, $2)
		ON CONFLICT (campaign_id) DO UPDATE SET sheet_data = EXCLUDED.sheet_data, updated_at = NOW()
		RETURNING id, campaign_id, sheet_data, created_at, updated_at`, campaignID, json.RawMessage(data))
}

func (r *postgresCampaignRepository) sheet(ctx context.Context, query string, args ...any) (FinancialSheet, error) {
	var s FinancialSheet
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CampaignID, &s.SheetData, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
