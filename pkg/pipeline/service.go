package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

type StartupStore interface {
	GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error)
}

type IncubatorStore interface {
	OwnerEmails(ctx context.Context, ids []int64) (map[int64]string, error)
	AddAssociations(ctx context.Context, startupID int64, incubatorIDs []int64) error
}

type PipelineService interface {
	ListEntries(ctx context.Context, p auth.Principal) ([]Entry, error)
	ListRounds(ctx context.Context, p auth.Principal) ([]Round, error)
	CreateRound(ctx context.Context, p auth.Principal, req CreateRoundRequest) (Round, error)
}

type pipelineService struct {
	repo     PipelineRepository
	startups StartupStore
	tx       StoreTx
	log      *zap.Logger
}

func NewPipelineService(repo PipelineRepository, startupStore StartupStore, tx StoreTx, log *zap.Logger) PipelineService {
	return &pipelineService{repo: repo, startups: startupStore, tx: tx, log: log}
}

func (s *pipelineService) mine(ctx context.Context, p auth.Principal) (startups.Startup, bool, error) {
	if !p.IsStartup() {
		return startups.Startup{}, false, startups.ErrNotStartupUser
	}
	st, err := s.startups.GetStartupByUserID(ctx, p.UserID)
	if errors.Is(err, startups.ErrStartupNotFound) {
		return startups.Startup{}, false, nil
	}
	if err != nil {
		return startups.Startup{}, false, err
	}
	return st, true, nil
}

func (s *pipelineService) ListEntries(ctx context.Context, p auth.Principal) ([]Entry, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil || !found {
		return []Entry{}, err
	}
	return s.repo.ListEntries(ctx, st.ID)
}

func (s *pipelineService) ListRounds(ctx context.Context, p auth.Principal) ([]Round, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil || !found {
		return []Round{}, err
	}
	return s.repo.ListRounds(ctx, st.ID)
}

// CreateRound stores the round and turns every usable incubator commit into a
// COMMITTED pipeline entry, then links the startup to those incubators.
func (s *pipelineService) CreateRound(ctx context.Context, p auth.Principal, req CreateRoundRequest) (Round, error) {
	if !p.IsStartup() {
		return Round{}, startups.ErrNotStartupUser
	}
	st, _, err := s.startups.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Round{}, fmt.Errorf("get startup: %w", err)
	}

	var commits []IncubatorCommit
	ids := []int64{}
	for _, c := range req.IncubatorCommits {
		if !c.usable() {
			continue
		}
		commits = append(commits, c)
		ids = append(ids, *c.IncubatorID)
	}

	var round Round
	err = s.tx.RunInTx(ctx, func(stores TxStores) error {
		var err error
		round, err = stores.Pipeline.CreateRound(ctx, st.ID, req.Round)
		if err != nil {
			return fmt.Errorf("create round: %w", err)
		}
		if len(commits) == 0 {
			return nil
		}

		emails, err := stores.Incubators.OwnerEmails(ctx, ids)
		if err != nil {
			return fmt.Errorf("incubator emails: %w", err)
		}
		for _, c := range commits {
			entry, err := stores.Pipeline.CreateEntry(ctx, st.ID, &round.ID, commitEntry(c, round.Name, emails))
			if err != nil {
				return fmt.Errorf("create commitment: %w", err)
			}
			round.Investors = append(round.Investors, entry)
		}
		return stores.Incubators.AddAssociations(ctx, st.ID, ids)
	})
	if err != nil {
		return Round{}, err
	}

	s.log.Info("round created",
		zap.Int64("user_id", p.UserID),
		zap.Int64("startup_id", st.ID),
		zap.Int64("round_id", round.ID),
		zap.Int("commitments", len(commits)))
	return round, nil
}

func commitEntry(c IncubatorCommit, roundName string, emails map[int64]string) EntryInput {
	id := *c.IncubatorID
	name := fmt.Sprintf("Incubator %d", id)
	if c.IncubatorName != nil && *c.IncubatorName != "" {
		name = *c.IncubatorName
	}

	var email string
	switch {
	case c.Email != nil && *c.Email != "":
		email = *c.Email
	case emails[id] != "":
		email = emails[id]
	default:
		email = fmt.Sprintf("contact@incubator%d.com", id)
	}

	notes := "Auto-generated from Incubator commitment for round " + roundName
	return EntryInput{
		InvestorName:  name,
		InvestorEmail: &email,
		Stage:         StageCommitted,
		TicketSize:    c.Amount,
		Notes:         &notes,
	}
}
