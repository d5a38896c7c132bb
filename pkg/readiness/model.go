package readiness

import "time"

const (
	TypeTRL = "TRL"
	TypeCRL = "CRL"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"

	MinLevel = 1
	MaxLevel = 9
)

type Level struct {
	ID        int64     `json:"id"`
	StartupID int64     `json:"startup"`
	Type      string    `json:"type"`
	Level     int       `json:"level"`
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

type LevelInput struct {
	Type     string  `json:"type" binding:"omitempty,oneof=TRL CRL"`
	Level    int     `json:"level" binding:"required,min=1,max=9"`
	Title    string  `json:"title" binding:"required,max=255"`
	Subtitle *string `json:"subtitle" binding:"omitempty,max=255"`
}

type Evidence struct {
	ID               int64     `json:"id"`
	StartupID        int64     `json:"startup_id"`
	ReadinessLevelID *int64    `json:"readiness_level"`
	Type             string    `json:"type"`
	Level            int       `json:"level"`
	Description      *string   `json:"description"`
	FileURL          *string   `json:"file_url"`
	Status           string    `json:"status"`
	ReviewerNotes    *string   `json:"reviewer_notes"`
	CreatedAt        time.Time `json:"created"`
	UpdatedAt        time.Time `json:"updated"`
}

// NewEvidence is the writable part of an evidence. New evidence is always
// PENDING.
type NewEvidence struct {
	Type             string
	Level            int
	Description      *string
	FileURL          *string
	ReadinessLevelID *int64
}

// PortfolioEvidence is an evidence as an incubator sees it.
type PortfolioEvidence struct {
	Evidence
	StartupName *string `json:"startup_name"`
	StartupLogo *string `json:"startup_logo"`
}

type PortfolioLevel struct {
	Level
	StartupID   int64               `json:"startup_id"`
	StartupName *string             `json:"startup_name"`
	Evidences   []PortfolioEvidence `json:"evidences"`
}

type ReviewInput struct {
	Status        string  `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
	ReviewerNotes *string `json:"reviewer_notes"`
}

// CurrentLevel returns the highest level i such that every level 1..i is in
// approved, or 0 when level 1 is not.
func CurrentLevel(approved []int) int {
	set := make(map[int]bool, len(approved))
	for _, l := range approved {
		set[l] = true
	}
	current := 0
	for l := MinLevel; l <= MaxLevel && set[l]; l++ {
		current = l
	}
	return current
}
