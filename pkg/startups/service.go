package startups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var ErrNotStartupUser = errors.New("caller is not a startup")

type StartupService interface {
	// GetOrCreate returns the caller's startup, creating it on first use.
	GetOrCreate(ctx context.Context, p auth.Principal) (Startup, error)
	GetMine(ctx context.Context, p auth.Principal) (Startup, error)
	SubmitProfile(ctx context.Context, p auth.Principal, companyName, industry string, logoURL *string) (Startup, error)
}

type startupService struct {
	repo StartupRepository
	log  *zap.Logger
}

func NewStartupService(repo StartupRepository, log *zap.Logger) StartupService {
	return &startupService{repo: repo, log: log}
}

func (s *startupService) GetOrCreate(ctx context.Context, p auth.Principal) (Startup, error) {
	if !p.IsStartup() {
		return Startup{}, ErrNotStartupUser
	}
	st, created, err := s.repo.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Startup{}, fmt.Errorf("get or create startup: %w", err)
	}
	if created {
		s.log.Info("startup created", zap.Int64("user_id", p.UserID), zap.Int64("startup_id", st.ID))
	}
	return st, nil
}

func (s *startupService) GetMine(ctx context.Context, p auth.Principal) (Startup, error) {
	if !p.IsStartup() {
		return Startup{}, ErrNotStartupUser
	}
	return s.repo.GetStartupByUserID(ctx, p.UserID)
}

// ValidateProfile checks company name and industry and returns the trimmed
// company name.
func ValidateProfile(companyName, industry string) (string, error) {
	fields := validation.Errors{}
	name := strings.TrimSpace(companyName)
	if name == "" {
		fields.Add("company_name", "Company name cannot be empty")
	}
	switch {
	case industry == "":
		fields.Add("industry", "Industry must be selected")
	case !ValidIndustry(industry):
		fields.Add("industry", fmt.Sprintf("%q is not a valid choice.", industry))
	}
	return name, fields.Err()
}

func (s *startupService) SubmitProfile(ctx context.Context, p auth.Principal, companyName, industry string, logoURL *string) (Startup, error) {
	if !p.IsStartup() {
		return Startup{}, ErrNotStartupUser
	}
	name, err := ValidateProfile(companyName, industry)
	if err != nil {
		return Startup{}, err
	}

	st, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return Startup{}, err
	}

	updated, err := s.repo.UpdateProfile(ctx, st.ID, name, industry, logoURL)
	if err != nil {
		return Startup{}, fmt.Errorf("update startup profile: %w", err)
	}
	s.log.Info("startup profile submitted", zap.Int64("user_id", p.UserID), zap.Int64("startup_id", st.ID))
	return updated, nil
}
