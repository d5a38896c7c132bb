package onboarding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aquilesbailo123/Raven-backend/pkg/financials"
	"github.com/aquilesbailo123/Raven-backend/pkg/pipeline"
	"github.com/aquilesbailo123/Raven-backend/pkg/readiness"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

// EvidenceInput is one wizard evidence. trl_level is accepted as an alias
// for level.
type EvidenceInput struct {
	Type        string  `json:"type"`
	Level       int     `json:"level"`
	TRLLevel    int     `json:"trl_level"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url"`
}

func (e EvidenceInput) kind() string {
	if e.Type == "" {
		return readiness.TypeTRL
	}
	return e.Type
}

func (e EvidenceInput) level() int {
	if e.Level != 0 {
		return e.Level
	}
	return e.TRLLevel
}

func (e EvidenceInput) toNew() readiness.NewEvidence {
	return readiness.NewEvidence{
		Type:        e.kind(),
		Level:       e.level(),
		Description: e.Description,
		FileURL:     e.FileURL,
	}
}

// WizardRequest is the whole onboarding wizard submitted at once.
type WizardRequest struct {
	CompanyName         string                `json:"company_name"`
	Industry            string                `json:"industry"`
	CurrentTRL          int                   `json:"current_trl"`
	TargetFundingAmount *decimal.Decimal      `json:"target_funding_amount"`
	Evidences           []EvidenceInput       `json:"evidences"`
	FinancialData       []financials.Period   `json:"financial_data"`
	Investors           []pipeline.EntryInput `json:"investors"`
}

// Normalize trims names and fills defaults without validating.
func (r WizardRequest) Normalize() WizardRequest {
	investors := make([]pipeline.EntryInput, len(r.Investors))
	for i, in := range r.Investors {
		investors[i] = in.Normalize()
	}
	if r.Investors != nil {
		r.Investors = investors
	}
	return r
}

// Validate collects every field error of a normalized request, nested ones
// included (e.g. "financial_data[1].revenue").
func (r WizardRequest) Validate() error {
	fields := validation.Errors{}

	if _, err := startups.ValidateProfile(r.CompanyName, r.Industry); err != nil {
		if fe, ok := validation.As(err); ok {
			for k, v := range fe {
				fields.Add(k, v)
			}
		}
	}

	switch {
	case r.CurrentTRL == 0:
		fields.Add("current_trl", validation.MsgRequired)
	case r.CurrentTRL < readiness.MinLevel:
		fields.Add("current_trl", "Ensure this value is greater than or equal to 1.")
	case r.CurrentTRL > readiness.MaxLevel:
		fields.Add("current_trl", "Ensure this value is less than or equal to 9.")
	}

	switch {
	case r.TargetFundingAmount == nil:
		fields.Add("target_funding_amount", validation.MsgRequired)
	case r.TargetFundingAmount.IsNegative():
		fields.Add("target_funding_amount", "Ensure this value is greater than or equal to 0.")
	}

	r.validateEvidences(fields)
	r.validateFinancials(fields)
	r.validateInvestors(fields)

	return fields.Err()
}

func (r WizardRequest) validateEvidences(fields validation.Errors) {
	if r.Evidences == nil {
		fields.Add("evidences", validation.MsgRequired)
		return
	}
	if len(r.Evidences) == 0 {
		fields.Add("evidences", "At least one evidence document must be provided")
		return
	}

	matched := false
	for i, e := range r.Evidences {
		prefix := fmt.Sprintf("evidences[%d]", i)
		kind := e.kind()
		if kind != readiness.TypeTRL && kind != readiness.TypeCRL {
			fields.Add(prefix+".type", fmt.Sprintf("%q is not a valid choice.", kind))
		}
		if l := e.level(); l < readiness.MinLevel || l > readiness.MaxLevel {
			fields.Add(prefix+".level", "TRL level must be between 1 and 9")
		}
		if e.FileURL == nil || *e.FileURL == "" {
			fields.Add(prefix+".file_url", "file_url must be provided")
		}
		if kind == readiness.TypeTRL && e.level() == r.CurrentTRL {
			matched = true
		}
	}
	if !matched {
		fields.Add("evidences", fmt.Sprintf("At least one evidence must be provided for your current TRL level (%d)", r.CurrentTRL))
	}
}

func (r WizardRequest) validateFinancials(fields validation.Errors) {
	if r.FinancialData == nil {
		fields.Add("financial_data", validation.MsgRequired)
		return
	}
	if len(r.FinancialData) == 0 {
		fields.Add("financial_data", "At least one financial period must be provided")
		return
	}

	seen := make(map[string]bool, len(r.FinancialData))
	for i, p := range r.FinancialData {
		if err := p.Validate(); err != nil {
			if fe, ok := validation.As(err); ok {
				fields.Merge(fmt.Sprintf("financial_data[%d]", i), fe)
			}
		}
		if p.PeriodDate == nil {
			continue
		}
		key := p.PeriodDate.String()
		if seen[key] {
			fields.Add("financial_data", "Duplicate period dates found in financial data")
		}
		seen[key] = true
	}
}

func (r WizardRequest) validateInvestors(fields validation.Errors) {
	if r.Investors == nil {
		fields.Add("investors", validation.MsgRequired)
		return
	}
	if len(r.Investors) == 0 {
		fields.Add("investors", "At least one investor must be provided")
		return
	}
	for i, in := range r.Investors {
		if err := in.Validate(); err != nil {
			if fe, ok := validation.As(err); ok {
				fields.Merge(fmt.Sprintf("investors[%d]", i), fe)
			}
		}
	}
}

type Result struct {
	Detail                string `json:"detail"`
	StartupID             int64  `json:"startup_id"`
	IsMockData            bool   `json:"is_mock_data"`
	CurrentTRL            int    `json:"current_trl"`
	TargetFundingAmount   string `json:"target_funding_amount"`
	EvidencesCount        int    `json:"evidences_count"`
	FinancialPeriodsCount int    `json:"financial_periods_count"`
	InvestorsCount        int    `json:"investors_count"`
}
