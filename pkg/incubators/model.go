package incubators

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleInvestor = "INVESTOR"
	RoleMentor   = "MENTOR"
	RoleBoth     = "BOTH"
)

type Incubator struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"-"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	LogoURL         *string   `json:"logo_url"`
	ProfileComplete bool      `json:"profile_complete"`
	CreatedAt       time.Time `json:"created"`
	UpdatedAt       time.Time `json:"updated"`
}

type Member struct {
	ID          int64     `json:"id"`
	IncubatorID int64     `json:"incubator"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"updated"`
}

type MemberInput struct {
	FullName string  `json:"full_name" binding:"required,max=255"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Role     string  `json:"role" binding:"omitempty,oneof=INVESTOR MENTOR BOTH"`
}

type ProfileInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
}

type AssociatedStartup struct {
	ID          int64   `json:"id"`
	CompanyName *string `json:"company_name"`
	LogoURL     *string `json:"logo_url"`
	Industry    *string `json:"industry"`
}

type PortfolioSummary struct {
	TotalPortfolioTarget    decimal.Decimal `json:"total_portfolio_target"`
	TotalPortfolioCommitted decimal.Decimal `json:"total_portfolio_committed"`
	AverageTRL              float64         `json:"average_trl"`
}

// Detail is an incubator with its members, portfolio and aggregates.
type Detail struct {
	Incubator
	Members           []Member            `json:"members"`
	Startups          []AssociatedStartup `json:"startups"`
	PortfolioStartups []AssociatedStartup `json:"portfolio_startups"`
	PortfolioSummary  PortfolioSummary    `json:"portfolio_summary"`
}
