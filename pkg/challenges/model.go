package challenges

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquilesbailo123/Raven-backend/pkg/dates"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

const (
	StatusOpen      = "OPEN"
	StatusConcluded = "CONCLUDED"
)

type Challenge struct {
	ID                   int64            `json:"id"`
	IncubatorID          int64            `json:"incubator"`
	Title                string           `json:"title"`
	Subtitle             *string          `json:"subtitle"`
	Description          string           `json:"description"`
	Budget               *decimal.Decimal `json:"budget"`
	Deadline             *dates.Date      `json:"deadline"`
	RequiredTechnologies string           `json:"required_technologies"`
	Status               string           `json:"status"`
	ApplicantCount       int              `json:"applicant_count"`
	CreatedAt            time.Time        `json:"created"`
	UpdatedAt            time.Time        `json:"updated"`
}

type ChallengeInput struct {
	Title                string           `json:"title" binding:"required,max=255"`
	Subtitle             *string          `json:"subtitle" binding:"omitempty,max=255"`
	Description          string           `json:"description" binding:"required"`
	Budget               *decimal.Decimal `json:"budget"`
	Deadline             *dates.Date      `json:"deadline"`
	RequiredTechnologies string           `json:"required_technologies" binding:"required"`
	Status               string           `json:"status" binding:"omitempty,oneof=OPEN CONCLUDED"`
}

func (in ChallengeInput) normalize() ChallengeInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.RequiredTechnologies = strings.TrimSpace(in.RequiredTechnologies)
	if in.Status == "" {
		in.Status = StatusOpen
	}
	return in
}

func (in ChallengeInput) validate() error {
	fields := validation.Errors{}
	if in.Title == "" {
		fields.Add("title", validation.MsgBlank)
	}
	if in.Description == "" {
		fields.Add("description", validation.MsgBlank)
	}
	if in.RequiredTechnologies == "" {
		fields.Add("required_technologies", validation.MsgBlank)
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		fields.Add("budget", "Ensure this value is greater than or equal to 0.")
	}
	return fields.Err()
}

type Application struct {
	ID           int64     `json:"id"`
	ChallengeID  int64     `json:"challenge"`
	StartupID    int64     `json:"startup"`
	StartupName  *string   `json:"startup_name"`
	TextSolution string    `json:"text_solution"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

type ApplicationInput struct {
	ChallengeID  int64  `json:"challenge" binding:"required"`
	TextSolution string `json:"text_solution" binding:"required"`
}

// Scope narrows challenge and application queries to what one caller may
// see. Zero fields do not filter.
type Scope struct {
	IncubatorID int64
	StartupID   int64
	OpenOnly    bool
}
