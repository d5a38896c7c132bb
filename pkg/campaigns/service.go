package campaigns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var ErrAlreadySubmitted = errors.New("campaign already submitted")

const KindCampaignSubmitted = "campaign_submitted"

type StartupLookup interface {
	GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error)
	ListByIncubator(ctx context.Context, incubatorID int64) ([]startups.Startup, error)
}

type IncubatorLookup interface {
	GetIncubatorByUserID(ctx context.Context, userID int64) (incubators.Incubator, error)
	OwnerUserIDsForStartup(ctx context.Context, startupID int64) ([]int64, error)
}

type Notifier interface {
	Publish(ctx context.Context, userID int64, kind, title, body string, payload any)
}

type CampaignService interface {
	List(ctx context.Context, p auth.Principal) ([]Campaign, error)
	Create(ctx context.Context, p auth.Principal, in CampaignInput) (Campaign, error)
	Get(ctx context.Context, p auth.Principal, id int64) (Campaign, error)
	Update(ctx context.Context, p auth.Principal, id int64, in CampaignInput) (Campaign, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
	Mine(ctx context.Context, p auth.Principal) (Campaign, error)
	Submit(ctx context.Context, p auth.Principal, id int64) (Campaign, error)
	GetSheet(ctx context.Context, p auth.Principal, id int64) (FinancialSheet, error)
	UpdateSheet(ctx context.Context, p auth.Principal, id int64, in SheetInput) (FinancialSheet, error)
}

type campaignService struct {
	repo       CampaignRepository
	tx         StoreTx
	startups   StartupLookup
	incubators IncubatorLookup
	notifier   Notifier
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewCampaignService(repo CampaignRepository, tx StoreTx, startupLookup StartupLookup, incubatorLookup IncubatorLookup,
	notifier Notifier, m *metrics.Metrics, log *zap.Logger) CampaignService {
	return &campaignService{
		repo:       repo,
		tx:         tx,
		startups:   startupLookup,
		incubators: incubatorLookup,
		notifier:   notifier,
		metrics:    m,
		log:        log,
	}
}

// startupID resolves the caller's startup. Non-startup callers and startup
// users without a startup row have found == false.
func (s *campaignService) startupID(ctx context.Context, p auth.Principal) (int64, bool, error) {
	if !p.IsStartup() {
		return 0, false, nil
	}
	st, err := s.startups.GetStartupByUserID(ctx, p.UserID)
	if errors.Is(err, startups.ErrStartupNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return st.ID, true, nil
}

func (s *campaignService) List(ctx context.Context, p auth.Principal) ([]Campaign, error) {
	startupID, found, err := s.startupID(ctx, p)
	if err != nil || !found {
		return []Campaign{}, err
	}
	c, err := s.repo.GetByStartup(ctx, startupID)
	if errors.Is(err, ErrCampaignNotFound) {
		return []Campaign{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []Campaign{c}, nil
}

func (s *campaignService) Get(ctx context.Context, p auth.Principal, id int64) (Campaign, error) {
	startupID, found, err := s.startupID(ctx, p)
	if err != nil {
		return Campaign{}, err
	}
	if !found {
		return Campaign{}, ErrCampaignNotFound
	}
	return s.repo.GetForStartup(ctx, startupID, id)
}

func (s *campaignService) Create(ctx context.Context, p auth.Principal, in CampaignInput) (Campaign, error) {
	if !p.IsStartup() {
		return Campaign{}, startups.ErrNotStartupUser
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Campaign{}, err
	}
	st, _, err := s.startups.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Campaign{}, fmt.Errorf("get startup: %w", err)
	}

	var id int64
	err = s.tx.RunInTx(ctx, func(repo CampaignRepository) error {
		c, err := repo.Create(ctx, st.ID, in)
		if err != nil {
			return err
		}
		id = c.ID
		return writeSections(ctx, repo, id, in)
	})
	if err != nil {
		return Campaign{}, err
	}
	s.log.Info("campaign created", zap.Int64("user_id", p.UserID), zap.Int64("campaign_id", id))
	return s.repo.GetForStartup(ctx, st.ID, id)
}

func (s *campaignService) Update(ctx context.Context, p auth.Principal, id int64, in CampaignInput) (Campaign, error) {
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return Campaign{}, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Campaign{}, err
	}

	err = s.tx.RunInTx(ctx, func(repo CampaignRepository) error {
		if err := repo.UpdateBasics(ctx, current.ID, in); err != nil {
			return err
		}
		return writeSections(ctx, repo, current.ID, in)
	})
	if err != nil {
		return Campaign{}, err
	}
	return s.repo.GetForStartup(ctx, current.StartupID, current.ID)
}

// writeSections applies the nested parts of in that are present.
func writeSections(ctx context.Context, repo CampaignRepository, campaignID int64, in CampaignInput) error {
	if in.TeamMembers != nil {
		if err := repo.ReplaceTeam(ctx, campaignID, *in.TeamMembers); err != nil {
			return fmt.Errorf("replace team: %w", err)
		}
	}
	if in.Financials != nil {
		if err := repo.UpsertFinancials(ctx, campaignID, *in.Financials); err != nil {
			return fmt.Errorf("save financials: %w", err)
		}
	}
	if in.Tractions != nil {
		if err := repo.ReplaceTractions(ctx, campaignID, *in.Tractions); err != nil {
			return fmt.Errorf("replace tractions: %w", err)
		}
	}
	if in.Legal != nil {
		if err := repo.UpsertLegal(ctx, campaignID, *in.Legal); err != nil {
			return fmt.Errorf("save legal: %w", err)
		}
	}
	if in.Rounds != nil {
		if err := repo.ReplaceRounds(ctx, campaignID, *in.Rounds); err != nil {
			return fmt.Errorf("replace rounds: %w", err)
		}
	}
	return nil
}

func (s *campaignService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	startupID, found, err := s.startupID(ctx, p)
	if err != nil {
		return err
	}
	if !found {
		return ErrCampaignNotFound
	}
	return s.repo.Delete(ctx, startupID, id)
}

// Mine returns the caller's campaign, creating the startup and a DRAFT
// campaign when they do not exist yet.
func (s *campaignService) Mine(ctx context.Context, p auth.Principal) (Campaign, error) {
	if !p.IsStartup() {
		return Campaign{}, startups.ErrNotStartupUser
	}
	st, _, err := s.startups.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Campaign{}, fmt.Errorf("get startup: %w", err)
	}
	c, created, err := s.repo.GetOrCreate(ctx, st.ID)
	if err != nil {
		return Campaign{}, err
	}
	if created {
		s.log.Info("draft campaign created", zap.Int64("user_id", p.UserID), zap.Int64("campaign_id", c.ID))
	}
	return c, nil
}

// Submit moves a DRAFT campaign to SUBMITTED and tells the startup's
// incubators.
func (s *campaignService) Submit(ctx context.Context, p auth.Principal, id int64) (Campaign, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return Campaign{}, err
	}
	ok, err := s.repo.SetStatus(ctx, c.ID, StatusDraft, StatusSubmitted)
	if err != nil {
		return Campaign{}, err
	}
	if !ok {
		return Campaign{}, ErrAlreadySubmitted
	}
	c.Status = StatusSubmitted
	s.metrics.IncCampaignSubmitted()
	s.log.Info("campaign submitted", zap.Int64("user_id", p.UserID), zap.Int64("campaign_id", c.ID))

	owners, err := s.incubators.OwnerUserIDsForStartup(ctx, c.StartupID)
	if err != nil {
		s.log.Warn("could not resolve incubators to notify", zap.Int64("campaign_id", c.ID), zap.Error(err))
		return c, nil
	}
	payload := map[string]int64{"campaign_id": c.ID, "startup_id": c.StartupID}
	for _, userID := range owners {
		s.notifier.Publish(ctx, userID, KindCampaignSubmitted, "Campaign submitted",
			"A startup in your portfolio submitted its campaign.", payload)
	}
	return c, nil
}

func (s *campaignService) GetSheet(ctx context.Context, p auth.Principal, id int64) (FinancialSheet, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return FinancialSheet{}, err
	}
	return s.repo.GetOrCreateSheet(ctx, c.ID)
}

func (s *campaignService) UpdateSheet(ctx context.Context, p auth.Principal, id int64, in SheetInput) (FinancialSheet, error) {
	if !json.Valid(in.SheetData) {
		return FinancialSheet{}, validation.Errors{"sheet_data": "Value must be valid JSON."}
	}
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return FinancialSheet{}, err
	}
	return s.repo.UpdateSheet(ctx, c.ID, in.SheetData)
}
