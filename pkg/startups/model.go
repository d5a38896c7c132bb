package startups

import "time"

var Industries = []string{
	"technology", "fintech", "healthtech", "edtech", "ecommerce",
	"saas", "ai_ml", "blockchain", "Marketplace", "other",
}

func ValidIndustry(v string) bool {
	for _, i := range Industries {
		if i == v {
			return true
		}
	}
	return false
}

type Startup struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	CompanyName         *string   `json:"company_name"`
	Industry            *string   `json:"industry"`
	LogoURL             *string   `json:"logo_url"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	IsMockData          bool      `json:"is_mock_data"`
	TRLLevel            int       `json:"trl_level"`
	CRLLevel            int       `json:"crl_level"`
	CreatedAt           time.Time `json:"created"`
	UpdatedAt           time.Time `json:"updated"`
}

// Name is the display name, empty when the company has none yet.
func (s Startup) Name() string {
	if s.CompanyName == nil {
		return ""
	}
	return *s.CompanyName
}

type OnboardingStatus struct {
	Startup              Startup `json:"startup"`
	IsOnboardingComplete bool    `json:"is_onboarding_complete"`
}
