package campaigns

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

const (
	RoundPlanned = "PLANNED"
	RoundOpen    = "OPEN"
	RoundClosed  = "CLOSED"
)

const (
	InvestorContacted        = "CONTACTED"
	InvestorPitchSent        = "PITCH_SENT"
	InvestorMeetingScheduled = "MEETING_SCHEDULED"
	InvestorDueDiligence     = "DUE_DILIGENCE"
	InvestorTermSheet        = "TERM_SHEET"
	InvestorCommitted        = "COMMITTED"
)

var (
	roundStatuses    = []string{RoundPlanned, RoundOpen, RoundClosed}
	investorStatuses = []string{
		InvestorContacted, InvestorPitchSent, InvestorMeetingScheduled,
		InvestorDueDiligence, InvestorTermSheet, InvestorCommitted,
	}
)

func oneOf(v string, choices []string) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// ValidInvestorStatus reports whether s is a known investor status.
func ValidInvestorStatus(s string) bool {
	return oneOf(s, investorStatuses)
}

var emptyObject = json.RawMessage(`{}`)

type Campaign struct {
	ID             int64             `json:"id"`
	StartupID      int64             `json:"startup"`
	Problem        *string           `json:"problem"`
	Solution       *string           `json:"solution"`
	BusinessModel  *string           `json:"business_model"`
	Status         string            `json:"status"`
	TeamMembers    []TeamMember      `json:"team_members"`
	Financials     *Financials       `json:"financials"`
	Tractions      []Traction        `json:"tractions"`
	Legal          *Legal            `json:"legal"`
	Rounds         []InvestmentRound `json:"rounds"`
	TotalCommitted decimal.Decimal   `json:"total_committed"`
	CreatedAt      time.Time         `json:"created"`
	UpdatedAt      time.Time         `json:"updated"`
}

type TeamMember struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	LinkedIn  *string `json:"linkedin"`
	AvatarURL *string `json:"avatar_url"`
}

type Financials struct {
	ID                   int64            `json:"id"`
	FundingGoal          *decimal.Decimal `json:"funding_goal"`
	Valuation            *decimal.Decimal `json:"valuation"`
	UsageOfFunds         json.RawMessage  `json:"usage_of_funds" swaggertype:"object"`
	RevenueHistory       json.RawMessage  `json:"revenue_history" swaggertype:"object"`
	PreMoneyValuation    *decimal.Decimal `json:"pre_money_valuation"`
	CurrentCashBalance   *decimal.Decimal `json:"current_cash_balance"`
	MonthlyBurnRate      *decimal.Decimal `json:"monthly_burn_rate"`
	FinancialProjections json.RawMessage  `json:"financial_projections" swaggertype:"object"`
}

type Traction struct {
	ID          int64           `json:"id"`
	Metrics     json.RawMessage `json:"metrics" swaggertype:"object"`
	ProofDocURL *string         `json:"proof_doc_url"`
}

type Legal struct {
	ID              int64   `json:"id"`
	ConstitutionURL *string `json:"constitution_url"`
	WhitepaperURL   *string `json:"whitepaper_url"`
	CapTableURL     *string `json:"cap_table_url"`
}

type InvestmentRound struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	TargetAmount      decimal.Decimal  `json:"target_amount"`
	PreMoneyValuation *decimal.Decimal `json:"pre_money_valuation"`
	Status            string           `json:"status"`
	IsCurrent         bool             `json:"is_current"`
	LaunchDate        *dates.Date      `json:"launch_date"`
	TargetCloseDate   *dates.Date      `json:"target_close_date"`
	ActualCloseDate   *dates.Date      `json:"actual_close_date"`
	Investors         []Investor       `json:"investors"`
	CommittedAmount   decimal.Decimal  `json:"committed_amount"`
	CreatedAt         time.Time        `json:"created"`
}

type Investor struct {
	ID            int64           `json:"id"`
	RoundID       int64           `json:"round"`
	IncubatorID   int64           `json:"incubator_id"`
	IncubatorName string          `json:"incubator_name"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created"`
}

// Committed sums the amounts of COMMITTED investors.
func Committed(investors []Investor) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investors {
		if inv.Status == InvestorCommitted {
			total = total.Add(inv.Amount)
		}
	}
	return total
}

// computeTotals fills committed_amount on each round and total_committed on
// the campaign.
func (c *Campaign) computeTotals() {
	total := decimal.Zero
	for i := range c.Rounds {
		c.Rounds[i].CommittedAmount = Committed(c.Rounds[i].Investors)
		total = total.Add(c.Rounds[i].CommittedAmount)
	}
	c.TotalCommitted = total
}

type FinancialSheet struct {
	ID         int64           `json:"id"`
	CampaignID int64           `json:"campaign"`
	SheetData  json.RawMessage `json:"sheet_data" swaggertype:"object"`
	CreatedAt  time.Time       `json:"created"`
	UpdatedAt  time.Time       `json:"updated"`
}

type SheetInput struct {
	SheetData json.RawMessage `json:"sheet_data" binding:"required" swaggertype:"object"`
}

// Investment is an investor row as the committing incubator sees it.
type Investment struct {
	ID            int64           `json:"id"`
	RoundID       int64           `json:"round"`
	RoundName     string          `json:"round_name"`
	StartupID     int64           `json:"startup_id"`
	StartupName   *string         `json:"startup_name"`
	LogoURL       *string         `json:"logo_url"`
	StartupUserID int64           `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created"`
	UpdatedAt     time.Time       `json:"updated"`
}

type InvestmentStatusInput struct {
	Status string `json:"status" binding:"required,oneof=CONTACTED PITCH_SENT MEETING_SCHEDULED DUE_DILIGENCE TERM_SHEET COMMITTED"`
}

// PortfolioCampaign is one associated startup with its campaign, if any.
type PortfolioCampaign struct {
	StartupID   int64     `json:"startup_id"`
	StartupName *string   `json:"startup_name"`
	StartupLogo *string   `json:"startup_logo"`
	Industry    *string   `json:"industry"`
	TRLLevel    int       `json:"trl_level"`
	CRLLevel    int       `json:"crl_level"`
	Campaign    *Campaign `json:"campaign"`
}

// CampaignInput is a nested campaign write. A nil collection or section is
// left untouched; a present collection replaces the stored one.
type CampaignInput struct {
	Problem       *string            `json:"problem"`
	Solution      *string            `json:"solution"`
	BusinessModel *string            `json:"business_model"`
	TeamMembers   *[]TeamMemberInput `json:"team_members"`
	Financials    *FinancialsInput   `json:"financials"`
	Tractions     *[]TractionInput   `json:"tractions"`
	Legal         *LegalInput        `json:"legal"`
	Rounds        *[]RoundInput      `json:"rounds"`
}

type TeamMemberInput struct {
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	LinkedIn  *string `json:"linkedin"`
	AvatarURL *string `json:"avatar_url"`
}

type FinancialsInput struct {
	FundingGoal          *decimal.Decimal `json:"funding_goal"`
	Valuation            *decimal.Decimal `json:"valuation"`
	UsageOfFunds         json.RawMessage  `json:"usage_of_funds" swaggertype:"object"`
	RevenueHistory       json.RawMessage  `json:"revenue_history" swaggertype:"object"`
	PreMoneyValuation    *decimal.Decimal `json:"pre_money_valuation"`
	CurrentCashBalance   *decimal.Decimal `json:"current_cash_balance"`
	MonthlyBurnRate      *decimal.Decimal `json:"monthly_burn_rate"`
	FinancialProjections json.RawMessage  `json:"financial_projections" swaggertype:"object"`
}

type TractionInput struct {
	Metrics     json.RawMessage `json:"metrics" swaggertype:"object"`
	ProofDocURL *string         `json:"proof_doc_url"`
}

type LegalInput struct {
	ConstitutionURL *string `json:"constitution_url"`
	WhitepaperURL   *string `json:"whitepaper_url"`
	CapTableURL     *string `json:"cap_table_url"`
}

// RoundInput updates the round with ID in place when ID is set and creates
// a new round otherwise. The same holds for its investors.
type RoundInput struct {
	ID                *int64           `json:"id"`
	Name              string           `json:"name"`
	TargetAmount      *decimal.Decimal `json:"target_amount"`
	PreMoneyValuation *decimal.Decimal `json:"pre_money_valuation"`
	Status            string           `json:"status"`
	IsCurrent         bool             `json:"is_current"`
	LaunchDate        *dates.Date      `json:"launch_date"`
	TargetCloseDate   *dates.Date      `json:"target_close_date"`
	ActualCloseDate   *dates.Date      `json:"actual_close_date"`
	Investors         []InvestorInput  `json:"investors"`
}

type InvestorInput struct {
	ID          *int64           `json:"id"`
	IncubatorID int64            `json:"incubator_id"`
	Status      string           `json:"status"`
	Amount      *decimal.Decimal `json:"amount"`
}

// jsonObject returns raw, or {} when nothing was sent.
func jsonObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return emptyObject
	}
	return raw
}

// Normalize applies defaults and keeps only the last current round.
func (in CampaignInput) Normalize() CampaignInput {
	if in.Rounds != nil {
		rounds := make([]RoundInput, len(*in.Rounds))
		copy(rounds, *in.Rounds)
		last := -1
		for i := range rounds {
			rounds[i].Name = strings.TrimSpace(rounds[i].Name)
			if rounds[i].Status == "" {
				rounds[i].Status = RoundOpen
			}
			if rounds[i].IsCurrent {
				last = i
			}
			investors := make([]InvestorInput, len(rounds[i].Investors))
			for j, inv := range rounds[i].Investors {
				if inv.Status == "" {
					inv.Status = InvestorContacted
				}
				investors[j] = inv
			}
			rounds[i].Investors = investors
		}
		for i := range rounds {
			rounds[i].IsCurrent = i == last
		}
		in.Rounds = &rounds
	}
	if in.TeamMembers != nil {
		members := make([]TeamMemberInput, len(*in.TeamMembers))
		for i, m := range *in.TeamMembers {
			m.Name = strings.TrimSpace(m.Name)
			m.Role = strings.TrimSpace(m.Role)
			members[i] = m
		}
		in.TeamMembers = &members
	}
	return in
}

// Validate expects a normalized input.
func (in CampaignInput) Validate() error {
	fields := validation.Errors{}

	if in.TeamMembers != nil {
		for i, m := range *in.TeamMembers {
			prefix := fmt.Sprintf("team_members[%d]", i)
			if m.Name == "" {
				fields.Add(prefix+".name", validation.MsgBlank)
			}
			if m.Role == "" {
				fields.Add(prefix+".role", validation.MsgBlank)
			}
		}
	}

	if in.Tractions != nil {
		for i, t := range *in.Tractions {
			if len(t.Metrics) > 0 && !json.Valid(t.Metrics) {
				fields.Add(fmt.Sprintf("tractions[%d].metrics", i), "Value must be valid JSON.")
			}
		}
	}

	if in.Rounds != nil {
		for i, r := range *in.Rounds {
			prefix := fmt.Sprintf("rounds[%d]", i)
			if r.Name == "" {
				fields.Add(prefix+".name", validation.MsgBlank)
			}
			if r.TargetAmount == nil {
				fields.Add(prefix+".target_amount", validation.MsgRequired)
			}
			if !oneOf(r.Status, roundStatuses) {
				fields.Add(prefix+".status", fmt.Sprintf("%q is not a valid choice.", r.Status))
			}
			for j, inv := range r.Investors {
				ip := fmt.Sprintf("%s.investors[%d]", prefix, j)
				if inv.IncubatorID <= 0 {
					fields.Add(ip+".incubator_id", validation.MsgRequired)
				}
				if inv.Amount == nil {
					fields.Add(ip+".amount", validation.MsgRequired)
				}
				if !ValidInvestorStatus(inv.Status) {
					fields.Add(ip+".status", fmt.Sprintf("%q is not a valid choice.", inv.Status))
				}
			}
		}
	}

	return fields.Err()
}
