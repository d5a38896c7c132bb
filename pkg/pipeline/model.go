package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

const (
	StageContacted        = "CONTACTED"
	StagePitchSent        = "PITCH_SENT"
	StageMeetingScheduled = "MEETING_SCHEDULED"
	StageDueDiligence     = "DUE_DILIGENCE"
	StageTermSheet        = "TERM_SHEET"
	StageCommitted        = "COMMITTED"
	StageDeclined         = "DECLINED"
)

var Stages = []string{
	StageContacted, StagePitchSent, StageMeetingScheduled, StageDueDiligence,
	StageTermSheet, StageCommitted, StageDeclined,
}

func ValidStage(s string) bool {
	for _, v := range Stages {
		if v == s {
			return true
		}
	}
	return false
}

type Entry struct {
	ID             int64            `json:"id"`
	StartupID      int64            `json:"-"`
	RoundID        *int64           `json:"round"`
	InvestorName   string           `json:"investor_name"`
	InvestorEmail  *string          `json:"investor_email"`
	Stage          string           `json:"stage"`
	TicketSize     *decimal.Decimal `json:"ticket_size"`
	Notes          *string          `json:"notes"`
	NextActionDate *dates.Date      `json:"next_action_date"`
	CreatedAt      time.Time        `json:"created"`
}

type EntryInput struct {
	InvestorName   string           `json:"investor_name"`
	InvestorEmail  *string          `json:"investor_email"`
	Stage          string           `json:"stage"`
	TicketSize     *decimal.Decimal `json:"ticket_size"`
	Notes          *string          `json:"notes"`
	NextActionDate *dates.Date      `json:"next_action_date"`
}

// Normalize trims the investor name and applies the default stage.
func (in EntryInput) Normalize() EntryInput {
	in.InvestorName = strings.TrimSpace(in.InvestorName)
	if in.Stage == "" {
		in.Stage = StageContacted
	}
	if in.InvestorEmail != nil && strings.TrimSpace(*in.InvestorEmail) == "" {
		in.InvestorEmail = nil
	}
	return in
}

// Validate expects a normalized input.
func (in EntryInput) Validate() error {
	fields := validation.Errors{}
	if in.InvestorName == "" {
		fields.Add("investor_name", "Investor name cannot be empty")
	}
	if in.InvestorEmail != nil && !validation.IsEmail(*in.InvestorEmail) {
		fields.Add("investor_email", "Enter a valid email address.")
	}
	if !ValidStage(in.Stage) {
		fields.Add("stage", fmt.Sprintf("%q is not a valid choice.", in.Stage))
	}
	if in.TicketSize != nil && !in.TicketSize.IsPositive() {
		fields.Add("ticket_size", "Ticket size must be greater than 0")
	}
	return fields.Err()
}

type Round struct {
	ID           int64            `json:"id"`
	StartupID    int64            `json:"-"`
	Name         string           `json:"name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	RaisedAmount decimal.Decimal  `json:"raised_amount"`
	IsOpen       bool             `json:"is_open"`
	StartDate    *dates.Date      `json:"start_date"`
	EndDate      *dates.Date      `json:"end_date"`
	Notes        *string          `json:"notes"`
	Investors    []Entry          `json:"investors"`
	CreatedAt    time.Time        `json:"created"`
}

type RoundInput struct {
	Name         string           `json:"name" binding:"required,max=100"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	RaisedAmount *decimal.Decimal `json:"raised_amount"`
	IsOpen       *bool            `json:"is_open"`
	StartDate    *dates.Date      `json:"start_date"`
	EndDate      *dates.Date      `json:"end_date"`
	Notes        *string          `json:"notes"`
}

// IncubatorCommit is an incubator's pledge made while creating a round.
// Commits missing the incubator or carrying a non-positive amount are ignored.
type IncubatorCommit struct {
	IncubatorID   *int64           `json:"incubator_id"`
	Amount        *decimal.Decimal `json:"amount"`
	IncubatorName *string          `json:"incubator_name"`
	Email         *string          `json:"email"`
}

func (c IncubatorCommit) usable() bool {
	return c.IncubatorID != nil && *c.IncubatorID != 0 && c.Amount != nil && c.Amount.IsPositive()
}

type CreateRoundRequest struct {
	Round            RoundInput        `json:"round" binding:"required"`
	IncubatorCommits []IncubatorCommit `json:"incubator_commits"`
}
