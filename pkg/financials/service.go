package financials

import (
	"context"
	"errors"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

type StartupLookup interface {
	GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error)
}

type FinancialService interface {
	List(ctx context.Context, p auth.Principal) ([]FinancialInput, error)
}

type financialService struct {
	repo     FinancialRepository
	startups StartupLookup
}

func NewFinancialService(repo FinancialRepository, startupLookup StartupLookup) FinancialService {
	return &financialService{repo: repo, startups: startupLookup}
}

// List returns the caller's periods, newest first. Callers without a startup
// get an empty list.
func (s *financialService) List(ctx context.Context, p auth.Principal) ([]FinancialInput, error) {
	if !p.IsStartup() {
		return nil, startups.ErrNotStartupUser
	}
	st, err := s.startups.GetStartupByUserID(ctx, p.UserID)
	if errors.Is(err, startups.ErrStartupNotFound) {
		return []FinancialInput{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStartup(ctx, st.ID)
}
