package readiness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

var (
	ErrNotIncubatorUser = errors.New("caller is not an incubator")
	ErrNotInPortfolio   = errors.New("startup not in incubator portfolio")
)

const KindEvidenceReviewed = "evidence_reviewed"

type StartupStore interface {
	GetStartupByID(ctx context.Context, id int64) (startups.Startup, error)
	GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error)
}

type IncubatorLookup interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (incubators.Incubator, bool, error)
	IsAssociated(ctx context.Context, startupID, incubatorID int64) (bool, error)
}

// Notifier delivers a notification to a user. Delivery problems are handled
// by the implementation.
type Notifier interface {
	Publish(ctx context.Context, userID int64, kind, title, body string, payload any)
}

type ReadinessService interface {
	ListEvidences(ctx context.Context, p auth.Principal) ([]Evidence, error)

	ListLevels(ctx context.Context, p auth.Principal) ([]Level, error)
	GetLevel(ctx context.Context, p auth.Principal, id int64) (Level, error)
	CreateLevel(ctx context.Context, p auth.Principal, in LevelInput) (Level, error)
	UpdateLevel(ctx context.Context, p auth.Principal, id int64, in LevelInput) (Level, error)
	DeleteLevel(ctx context.Context, p auth.Principal, id int64) error

	ListPortfolioEvidences(ctx context.Context, p auth.Principal) ([]PortfolioEvidence, error)
	GetPortfolioEvidence(ctx context.Context, p auth.Principal, id int64) (PortfolioEvidence, error)
	Review(ctx context.Context, p auth.Principal, id int64, in ReviewInput) (PortfolioEvidence, error)
	ListPortfolioLevels(ctx context.Context, p auth.Principal) ([]PortfolioLevel, error)

	UpdateMaturityLevels(ctx context.Context, startupID int64) (int, int, error)
}

type readinessService struct {
	repo       ReadinessRepository
	startups   StartupStore
	incubators IncubatorLookup
	tx         StoreTx
	notifier   Notifier
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewReadinessService(repo ReadinessRepository, startupStore StartupStore, incubatorLookup IncubatorLookup,
	tx StoreTx, notifier Notifier, m *metrics.Metrics, log *zap.Logger) ReadinessService {
	return &readinessService{
		repo:       repo,
		startups:   startupStore,
		incubators: incubatorLookup,
		tx:         tx,
		notifier:   notifier,
		metrics:    m,
		log:        log,
	}
}

// mine returns the caller's startup. found is false when none exists yet.
func (s *readinessService) mine(ctx context.Context, p auth.Principal) (startups.Startup, bool, error) {
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

func (s *readinessService) ListEvidences(ctx context.Context, p auth.Principal) ([]Evidence, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil || !found {
		return []Evidence{}, err
	}
	return s.repo.ListEvidences(ctx, st.ID)
}

func (s *readinessService) ListLevels(ctx context.Context, p auth.Principal) ([]Level, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil || !found {
		return []Level{}, err
	}
	return s.repo.ListLevels(ctx, st.ID)
}

func (s *readinessService) GetLevel(ctx context.Context, p auth.Principal, id int64) (Level, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil {
		return Level{}, err
	}
	if !found {
		return Level{}, ErrLevelNotFound
	}
	return s.repo.GetLevel(ctx, st.ID, id)
}

func normalizeLevel(in LevelInput) LevelInput {
	if in.Type == "" {
		in.Type = TypeTRL
	}
	return in
}

func (s *readinessService) CreateLevel(ctx context.Context, p auth.Principal, in LevelInput) (Level, error) {
	if !p.IsStartup() {
		return Level{}, startups.ErrNotStartupUser
	}
	st, _, err := s.startups.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Level{}, fmt.Errorf("get or create startup: %w", err)
	}
	return s.repo.CreateLevel(ctx, st.ID, normalizeLevel(in))
}

func (s *readinessService) UpdateLevel(ctx context.Context, p auth.Principal, id int64, in LevelInput) (Level, error) {
	st, found, err := s.mine(ctx, p)
	if err != nil {
		return Level{}, err
	}
	if !found {
		return Level{}, ErrLevelNotFound
	}
	return s.repo.UpdateLevel(ctx, st.ID, id, normalizeLevel(in))
}

func (s *readinessService) DeleteLevel(ctx context.Context, p auth.Principal, id int64) error {
	st, found, err := s.mine(ctx, p)
	if err != nil {
		return err
	}
	if !found {
		return ErrLevelNotFound
	}
	return s.repo.DeleteLevel(ctx, st.ID, id)
}

func (s *readinessService) incubatorID(ctx context.Context, p auth.Principal) (int64, error) {
	inc, _, err := s.incubators.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("get or create incubator: %w", err)
	}
	return inc.ID, nil
}

func (s *readinessService) ListPortfolioEvidences(ctx context.Context, p auth.Principal) ([]PortfolioEvidence, error) {
	if !p.IsIncubator() {
		return []PortfolioEvidence{}, nil
	}
	incID, err := s.incubatorID(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPortfolioEvidences(ctx, incID)
}

func (s *readinessService) GetPortfolioEvidence(ctx context.Context, p auth.Principal, id int64) (PortfolioEvidence, error) {
	if !p.IsIncubator() {
		return PortfolioEvidence{}, ErrEvidenceNotFound
	}
	incID, err := s.incubatorID(ctx, p)
	if err != nil {
		return PortfolioEvidence{}, err
	}
	return s.repo.GetPortfolioEvidence(ctx, incID, id)
}

func (s *readinessService) Review(ctx context.Context, p auth.Principal, id int64, in ReviewInput) (PortfolioEvidence, error) {
	if !p.IsIncubator() {
		return PortfolioEvidence{}, ErrNotIncubatorUser
	}
	incID, err := s.incubatorID(ctx, p)
	if err != nil {
		return PortfolioEvidence{}, err
	}

	ev, err := s.repo.GetPortfolioEvidenceByID(ctx, id)
	if err != nil {
		return PortfolioEvidence{}, err
	}
	ok, err := s.incubators.IsAssociated(ctx, ev.StartupID, incID)
	if err != nil {
		return PortfolioEvidence{}, err
	}
	if !ok {
		return PortfolioEvidence{}, ErrNotInPortfolio
	}

	// The startup row lock serializes reviews of one startup, so each
	// recompute sees every review committed before it.
	var trl, crl int
	err = s.tx.RunInTx(ctx, func(stores TxStores) error {
		if err := stores.Startups.LockForUpdate(ctx, ev.StartupID); err != nil {
			return fmt.Errorf("lock startup: %w", err)
		}
		if err := stores.Readiness.UpdateReview(ctx, id, in.Status, in.ReviewerNotes); err != nil {
			return fmt.Errorf("update evidence review: %w", err)
		}
		var recomputeErr error
		trl, crl, recomputeErr = recomputeLevels(ctx, stores, ev.StartupID)
		return recomputeErr
	})
	if err != nil {
		return PortfolioEvidence{}, err
	}
	s.metrics.ObserveEvidenceReview(in.Status)
	s.log.Info("evidence reviewed",
		zap.Int64("user_id", p.UserID),
		zap.Int64("evidence_id", id),
		zap.String("status", in.Status),
		zap.Int("trl_level", trl),
		zap.Int("crl_level", crl),
	)

	reviewed, err := s.repo.GetPortfolioEvidenceByID(ctx, id)
	if err != nil {
		return PortfolioEvidence{}, err
	}
	s.notifyOwner(ctx, reviewed)
	return reviewed, nil
}

func (s *readinessService) notifyOwner(ctx context.Context, ev PortfolioEvidence) {
	st, err := s.startups.GetStartupByID(ctx, ev.StartupID)
	if err != nil {
		s.log.Warn("evidence owner lookup failed", zap.Int64("startup_id", ev.StartupID), zap.Error(err))
		return
	}
	s.notifier.Publish(ctx, st.UserID, KindEvidenceReviewed,
		fmt.Sprintf("%s level %d evidence %s", ev.Type, ev.Level, ev.Status),
		fmt.Sprintf("Your %s level %d evidence was marked %s.", ev.Type, ev.Level, ev.Status),
		map[string]any{"evidence_id": ev.ID, "status": ev.Status, "type": ev.Type, "level": ev.Level},
	)
}

func (s *readinessService) ListPortfolioLevels(ctx context.Context, p auth.Principal) ([]PortfolioLevel, error) {
	if !p.IsIncubator() {
		return []PortfolioLevel{}, nil
	}
	incID, err := s.incubatorID(ctx, p)
	if err != nil {
		return nil, err
	}
	levels, err := s.repo.ListPortfolioLevels(ctx, incID)
	if err != nil {
		return nil, err
	}
	evidences, err := s.repo.ListPortfolioEvidences(ctx, incID)
	if err != nil {
		return nil, err
	}
	return attachEvidences(levels, evidences), nil
}

type levelKey struct {
	startupID int64
	kind      string
	level     int
}

// attachEvidences gives each level the evidences with the same startup, type
// and level.
func attachEvidences(levels []PortfolioLevel, evidences []PortfolioEvidence) []PortfolioLevel {
	byKey := make(map[levelKey][]PortfolioEvidence)
	for _, e := range evidences {
		k := levelKey{e.StartupID, e.Type, e.Level}
		byKey[k] = append(byKey[k], e)
	}
	for i := range levels {
		l := levels[i]
		if matched, ok := byKey[levelKey{l.StartupID, l.Type, l.Level.Level}]; ok {
			levels[i].Evidences = matched
		}
	}
	return levels
}

// UpdateMaturityLevels recomputes a startup's TRL and CRL from its approved
// evidence. Both stay at least 1.
func (s *readinessService) UpdateMaturityLevels(ctx context.Context, startupID int64) (int, int, error) {
	var trl, crl int
	err := s.tx.RunInTx(ctx, func(stores TxStores) error {
		if err := stores.Startups.LockForUpdate(ctx, startupID); err != nil {
			return fmt.Errorf("lock startup: %w", err)
		}
		var err error
		trl, crl, err = recomputeLevels(ctx, stores, startupID)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return trl, crl, nil
}

// recomputeLevels expects the startup row to be locked by the caller.
func recomputeLevels(ctx context.Context, stores TxStores, startupID int64) (int, int, error) {
	trl, err := levelFor(ctx, stores.Readiness, startupID, TypeTRL)
	if err != nil {
		return 0, 0, err
	}
	crl, err := levelFor(ctx, stores.Readiness, startupID, TypeCRL)
	if err != nil {
		return 0, 0, err
	}
	if err := stores.Startups.UpdateLevels(ctx, startupID, trl, crl); err != nil {
		return 0, 0, fmt.Errorf("update maturity levels: %w", err)
	}
	return trl, crl, nil
}

func levelFor(ctx context.Context, repo ReadinessRepository, startupID int64, kind string) (int, error) {
	approved, err := repo.ApprovedLevels(ctx, startupID, kind)
	if err != nil {
		return 0, fmt.Errorf("approved %s levels: %w", kind, err)
	}
	return max(CurrentLevel(approved), MinLevel), nil
}
