package campaigns

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
)

var ErrNotIncubatorUser = errors.New("caller is not an incubator")

const KindInvestmentCommitted = "investment_committed"

// InvestmentService is the incubator side: commitments made in the
// incubator's name and the campaigns of its portfolio.
type InvestmentService interface {
	List(ctx context.Context, p auth.Principal) ([]Investment, error)
	Get(ctx context.Context, p auth.Principal, id int64) (Investment, error)
	UpdateStatus(ctx context.Context, p auth.Principal, id int64, status string) (Investment, error)
	Commit(ctx context.Context, p auth.Principal, id int64) (Investment, error)
	Portfolio(ctx context.Context, p auth.Principal) ([]PortfolioCampaign, error)
}

type investmentService struct {
	repo       CampaignRepository
	startups   StartupLookup
	incubators IncubatorLookup
	notifier   Notifier
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewInvestmentService(repo CampaignRepository, startupLookup StartupLookup, incubatorLookup IncubatorLookup,
	notifier Notifier, m *metrics.Metrics, log *zap.Logger) InvestmentService {
	return &investmentService{
		repo:       repo,
		startups:   startupLookup,
		incubators: incubatorLookup,
		notifier:   notifier,
		metrics:    m,
		log:        log,
	}
}

// incubatorID resolves the caller's incubator; found is false for startups
// and incubator users without a row.
func (s *investmentService) incubatorID(ctx context.Context, p auth.Principal) (int64, bool, error) {
	if !p.IsIncubator() {
		return 0, false, nil
	}
	inc, err := s.incubators.GetIncubatorByUserID(ctx, p.UserID)
	if errors.Is(err, incubators.ErrIncubatorNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return inc.ID, true, nil
}

func (s *investmentService) List(ctx context.Context, p auth.Principal) ([]Investment, error) {
	incID, found, err := s.incubatorID(ctx, p)
	if err != nil || !found {
		return []Investment{}, err
	}
	return s.repo.ListInvestments(ctx, incID)
}

func (s *investmentService) Get(ctx context.Context, p auth.Principal, id int64) (Investment, error) {
	incID, found, err := s.incubatorID(ctx, p)
	if err != nil {
		return Investment{}, err
	}
	if !found {
		return Investment{}, ErrInvestmentNotFound
	}
	return s.repo.GetInvestment(ctx, incID, id)
}

func (s *investmentService) UpdateStatus(ctx context.Context, p auth.Principal, id int64, status string) (Investment, error) {
	incID, found, err := s.incubatorID(ctx, p)
	if err != nil {
		return Investment{}, err
	}
	if !found {
		return Investment{}, ErrInvestmentNotFound
	}
	if err := s.repo.UpdateInvestmentStatus(ctx, incID, id, status); err != nil {
		return Investment{}, err
	}
	s.log.Info("investment status changed",
		zap.Int64("user_id", p.UserID), zap.Int64("investment_id", id), zap.String("status", status))
	return s.repo.GetInvestment(ctx, incID, id)
}

// Commit marks the investment COMMITTED and tells the startup owner.
func (s *investmentService) Commit(ctx context.Context, p auth.Principal, id int64) (Investment, error) {
	inv, err := s.UpdateStatus(ctx, p, id, InvestorCommitted)
	if err != nil {
		return Investment{}, err
	}
	s.metrics.IncInvestmentCommitted()
	s.notifier.Publish(ctx, inv.StartupUserID, KindInvestmentCommitted, "Investment committed",
		"An incubator committed to your round "+inv.RoundName+".",
		map[string]any{"investment_id": inv.ID, "round_id": inv.RoundID, "amount": inv.Amount})
	return inv, nil
}

// Portfolio lists every associated startup with its campaign, or nil when
// the startup has none.
func (s *investmentService) Portfolio(ctx context.Context, p auth.Principal) ([]PortfolioCampaign, error) {
	if !p.IsIncubator() {
		return nil, ErrNotIncubatorUser
	}
	incID, found, err := s.incubatorID(ctx, p)
	if err != nil || !found {
		return []PortfolioCampaign{}, err
	}

	list, err := s.startups.ListByIncubator(ctx, incID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(list))
	for i, st := range list {
		ids[i] = st.ID
	}
	byStartup, err := s.repo.MapByStartupIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PortfolioCampaign, 0, len(list))
	for _, st := range list {
		pc := PortfolioCampaign{
			StartupID:   st.ID,
			StartupName: st.CompanyName,
			StartupLogo: st.LogoURL,
			Industry:    st.Industry,
			TRLLevel:    st.TRLLevel,
			CRLLevel:    st.CRLLevel,
		}
		if c, ok := byStartup[st.ID]; ok {
			pc.Campaign = &c
		}
		out = append(out, pc)
	}
	return out, nil
}
