package challenges

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var (
	ErrIncubatorsOnly = errors.New("caller is not an incubator")
	ErrStartupsOnly   = errors.New("caller is not a startup")
	ErrNotOwner       = errors.New("caller does not own this challenge")
	ErrConcluded      = errors.New("challenge concluded")
)

const KindChallengeApplication = "challenge_application"

type StartupLookup interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error)
}

type IncubatorLookup interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (incubators.Incubator, bool, error)
	GetIncubatorByID(ctx context.Context, id int64) (incubators.Incubator, error)
}

type Notifier interface {
	Publish(ctx context.Context, userID int64, kind, title, body string, payload any)
}

type ChallengeService interface {
	List(ctx context.Context, p auth.Principal) ([]Challenge, error)
	Get(ctx context.Context, p auth.Principal, id int64) (Challenge, error)
	Create(ctx context.Context, p auth.Principal, in ChallengeInput) (Challenge, error)
	Update(ctx context.Context, p auth.Principal, id int64, in ChallengeInput) (Challenge, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
	Close(ctx context.Context, p auth.Principal, id int64) error

	ListApplications(ctx context.Context, p auth.Principal) ([]Application, error)
	GetApplication(ctx context.Context, p auth.Principal, id int64) (Application, error)
	Apply(ctx context.Context, p auth.Principal, in ApplicationInput) (Application, error)
	DeleteApplication(ctx context.Context, p auth.Principal, id int64) error
}

type challengeService struct {
	repo       ChallengeRepository
	startups   StartupLookup
	incubators IncubatorLookup
	notifier   Notifier
	log        *zap.Logger
}

func NewChallengeService(repo ChallengeRepository, startupLookup StartupLookup, incubatorLookup IncubatorLookup,
	notifier Notifier, log *zap.Logger) ChallengeService {
	return &challengeService{
		repo:       repo,
		startups:   startupLookup,
		incubators: incubatorLookup,
		notifier:   notifier,
		log:        log,
	}
}

// viewer is the caller resolved to the records that bound what it sees.
type viewer struct {
	scope       Scope
	incubatorID int64
	startupID   int64
	visible     bool
}

func (s *challengeService) viewer(ctx context.Context, p auth.Principal) (viewer, error) {
	switch {
	case p.IsIncubator():
		inc, _, err := s.incubators.GetOrCreateByUserID(ctx, p.UserID)
		if err != nil {
			return viewer{}, fmt.Errorf("get or create incubator: %w", err)
		}
		return viewer{scope: Scope{IncubatorID: inc.ID}, incubatorID: inc.ID, visible: true}, nil
	case p.IsStartup():
		st, _, err := s.startups.GetOrCreateByUserID(ctx, p.UserID)
		if err != nil {
			return viewer{}, fmt.Errorf("get or create startup: %w", err)
		}
		return viewer{scope: Scope{OpenOnly: true}, startupID: st.ID, visible: true}, nil
	default:
		return viewer{}, nil
	}
}

// applicationScope: startups see their own applications, incubators those
// sent to their challenges.
func (v viewer) applicationScope() Scope {
	if v.startupID != 0 {
		return Scope{StartupID: v.startupID}
	}
	return Scope{IncubatorID: v.incubatorID}
}

func (s *challengeService) List(ctx context.Context, p auth.Principal) ([]Challenge, error) {
	v, err := s.viewer(ctx, p)
	if err != nil || !v.visible {
		return []Challenge{}, err
	}
	return s.repo.ListChallenges(ctx, v.scope)
}

func (s *challengeService) Get(ctx context.Context, p auth.Principal, id int64) (Challenge, error) {
	_, ch, err := s.visible(ctx, p, id)
	return ch, err
}

func (s *challengeService) visible(ctx context.Context, p auth.Principal, id int64) (viewer, Challenge, error) {
	v, err := s.viewer(ctx, p)
	if err != nil {
		return viewer{}, Challenge{}, err
	}
	if !v.visible {
		return viewer{}, Challenge{}, ErrChallengeNotFound
	}
	ch, err := s.repo.GetChallenge(ctx, v.scope, id)
	return v, ch, err
}

// owned returns the challenge when the caller can see it and owns it.
func (s *challengeService) owned(ctx context.Context, p auth.Principal, id int64) (Challenge, error) {
	v, ch, err := s.visible(ctx, p, id)
	if err != nil {
		return Challenge{}, err
	}
	if v.incubatorID == 0 || ch.IncubatorID != v.incubatorID {
		return Challenge{}, ErrNotOwner
	}
	return ch, nil
}

func (s *challengeService) Create(ctx context.Context, p auth.Principal, in ChallengeInput) (Challenge, error) {
	if !p.IsIncubator() {
		return Challenge{}, ErrIncubatorsOnly
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Challenge{}, err
	}
	v, err := s.viewer(ctx, p)
	if err != nil {
		return Challenge{}, err
	}
	ch, err := s.repo.CreateChallenge(ctx, v.incubatorID, in)
	if err != nil {
		return Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	s.log.Info("challenge launched", zap.Int64("user_id", p.UserID), zap.Int64("challenge_id", ch.ID))
	return ch, nil
}

func (s *challengeService) Update(ctx context.Context, p auth.Principal, id int64, in ChallengeInput) (Challenge, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return Challenge{}, err
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Challenge{}, err
	}
	return s.repo.UpdateChallenge(ctx, id, in)
}

func (s *challengeService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.DeleteChallenge(ctx, id); err != nil {
		return err
	}
	s.log.Info("challenge deleted", zap.Int64("user_id", p.UserID), zap.Int64("challenge_id", id))
	return nil
}

func (s *challengeService) Close(ctx context.Context, p auth.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, id, StatusConcluded); err != nil {
		return err
	}
	s.log.Info("challenge concluded", zap.Int64("user_id", p.UserID), zap.Int64("challenge_id", id))
	return nil
}

func (s *challengeService) ListApplications(ctx context.Context, p auth.Principal) ([]Application, error) {
	v, err := s.viewer(ctx, p)
	if err != nil || !v.visible {
		return []Application{}, err
	}
	return s.repo.ListApplications(ctx, v.applicationScope())
}

func (s *challengeService) GetApplication(ctx context.Context, p auth.Principal, id int64) (Application, error) {
	v, err := s.viewer(ctx, p)
	if err != nil {
		return Application{}, err
	}
	if !v.visible {
		return Application{}, ErrApplicationNotFound
	}
	return s.repo.GetApplication(ctx, v.applicationScope(), id)
}

// Apply records a startup's solution to an open challenge and tells the
// incubator that launched it.
func (s *challengeService) Apply(ctx context.Context, p auth.Principal, in ApplicationInput) (Application, error) {
	if !p.IsStartup() {
		return Application{}, ErrStartupsOnly
	}
	in.TextSolution = strings.TrimSpace(in.TextSolution)
	if in.TextSolution == "" {
		return Application{}, validation.Errors{"text_solution": validation.MsgBlank}
	}

	v, err := s.viewer(ctx, p)
	if err != nil {
		return Application{}, err
	}
	ch, err := s.repo.GetChallenge(ctx, Scope{}, in.ChallengeID)
	if errors.Is(err, ErrChallengeNotFound) {
		return Application{}, validation.Errors{
			"challenge": fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.ChallengeID),
		}
	}
	if err != nil {
		return Application{}, err
	}
	if ch.Status != StatusOpen {
		return Application{}, ErrConcluded
	}

	app, err := s.repo.CreateApplication(ctx, v.startupID, in)
	if err != nil {
		return Application{}, err
	}
	s.log.Info("challenge application submitted",
		zap.Int64("user_id", p.UserID), zap.Int64("challenge_id", ch.ID), zap.Int64("application_id", app.ID))

	inc, err := s.incubators.GetIncubatorByID(ctx, ch.IncubatorID)
	if err != nil {
		s.log.Warn("could not resolve incubator to notify", zap.Int64("challenge_id", ch.ID), zap.Error(err))
		return app, nil
	}
	name := "A startup"
	if app.StartupName != nil && *app.StartupName != "" {
		name = *app.StartupName
	}
	s.notifier.Publish(ctx, inc.UserID, KindChallengeApplication, "New challenge application",
		name+" applied to "+ch.Title+".",
		map[string]int64{"challenge_id": ch.ID, "application_id": app.ID})
	return app, nil
}

func (s *challengeService) DeleteApplication(ctx context.Context, p auth.Principal, id int64) error {
	app, err := s.GetApplication(ctx, p, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteApplication(ctx, app.ID)
}
