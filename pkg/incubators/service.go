package incubators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var (
	ErrNotIncubatorUser   = errors.New("caller is not an incubator")
	ErrNotStartupUser     = errors.New("caller is not a startup")
	ErrNotOwner           = errors.New("caller does not own this incubator")
	ErrForeignStartups    = errors.New("startups belong to another incubator")
	ErrMembersOnly        = errors.New("members can only be added by incubators")
	ErrInvalidIncubatorID = errors.New("invalid incubator id")
)

// StartupLookup is the slice of the startups repository this package reads.
type StartupLookup interface {
	GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error)
	ListByIncubator(ctx context.Context, incubatorID int64) ([]startups.Startup, error)
}

type IncubatorService interface {
	Onboard(ctx context.Context, p auth.Principal, in ProfileInput) (Detail, error)
	GetMine(ctx context.Context, p auth.Principal) (Detail, error)
	List(ctx context.Context) ([]Incubator, error)
	ListAvailable(ctx context.Context, p auth.Principal) ([]Incubator, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Update(ctx context.Context, p auth.Principal, id int64, in ProfileInput) (Detail, error)
	Startups(ctx context.Context, p auth.Principal, id int64) ([]startups.Startup, error)

	ListMembers(ctx context.Context, p auth.Principal) ([]Member, error)
	GetMember(ctx context.Context, p auth.Principal, id int64) (Member, error)
	CreateMember(ctx context.Context, p auth.Principal, in MemberInput) (Member, error)
	UpdateMember(ctx context.Context, p auth.Principal, id int64, in MemberInput) (Member, error)
	DeleteMember(ctx context.Context, p auth.Principal, id int64) error

	ListAssociated(ctx context.Context, p auth.Principal) ([]Incubator, error)
	Associate(ctx context.Context, p auth.Principal, incubatorIDs []int64) ([]Incubator, error)
}

type incubatorService struct {
	repo     IncubatorRepository
	startups StartupLookup
	log      *zap.Logger
}

func NewIncubatorService(repo IncubatorRepository, startupLookup StartupLookup, log *zap.Logger) IncubatorService {
	return &incubatorService{repo: repo, startups: startupLookup, log: log}
}

func validateProfile(in ProfileInput) (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, validation.Errors{"name": "Name cannot be empty"}
	}
	return in, nil
}

func (s *incubatorService) own(ctx context.Context, p auth.Principal) (Incubator, error) {
	if !p.IsIncubator() {
		return Incubator{}, ErrNotIncubatorUser
	}
	inc, created, err := s.repo.GetOrCreateByUserID(ctx, p.UserID)
	if err != nil {
		return Incubator{}, fmt.Errorf("get or create incubator: %w", err)
	}
	if created {
		s.log.Info("incubator created", zap.Int64("user_id", p.UserID), zap.Int64("incubator_id", inc.ID))
	}
	return inc, nil
}

func (s *incubatorService) Onboard(ctx context.Context, p auth.Principal, in ProfileInput) (Detail, error) {
	inc, err := s.own(ctx, p)
	if err != nil {
		return Detail{}, err
	}
	in, err = validateProfile(in)
	if err != nil {
		return Detail{}, err
	}
	inc, err = s.repo.UpdateProfile(ctx, inc.ID, in, true)
	if err != nil {
		return Detail{}, fmt.Errorf("update incubator profile: %w", err)
	}
	s.log.Info("incubator onboarding completed", zap.Int64("user_id", p.UserID), zap.Int64("incubator_id", inc.ID))
	return s.detail(ctx, inc)
}

func (s *incubatorService) GetMine(ctx context.Context, p auth.Principal) (Detail, error) {
	inc, err := s.own(ctx, p)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, inc)
}

func (s *incubatorService) List(ctx context.Context) ([]Incubator, error) {
	return s.repo.ListIncubators(ctx)
}

func (s *incubatorService) ListAvailable(ctx context.Context, p auth.Principal) ([]Incubator, error) {
	if !p.IsStartup() {
		return s.repo.ListIncubators(ctx)
	}
	st, err := s.startups.GetStartupByUserID(ctx, p.UserID)
	if errors.Is(err, startups.ErrStartupNotFound) {
		return s.repo.ListIncubators(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListIncubatorsExcludingStartup(ctx, st.ID)
}

func (s *incubatorService) Get(ctx context.Context, id int64) (Detail, error) {
	inc, err := s.repo.GetIncubatorByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, inc)
}

func (s *incubatorService) Update(ctx context.Context, p auth.Principal, id int64, in ProfileInput) (Detail, error) {
	inc, err := s.repo.GetIncubatorByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if inc.UserID != p.UserID {
		return Detail{}, ErrNotOwner
	}
	in, err = validateProfile(in)
	if err != nil {
		return Detail{}, err
	}
	inc, err = s.repo.UpdateProfile(ctx, id, in, false)
	if err != nil {
		return Detail{}, fmt.Errorf("update incubator: %w", err)
	}
	return s.detail(ctx, inc)
}

func (s *incubatorService) Startups(ctx context.Context, p auth.Principal, id int64) ([]startups.Startup, error) {
	inc, err := s.repo.GetIncubatorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsIncubator() && inc.UserID != p.UserID {
		return nil, ErrForeignStartups
	}
	return s.startups.ListByIncubator(ctx, inc.ID)
}

// detail loads members, portfolio and summary concurrently.
func (s *incubatorService) detail(ctx context.Context, inc Incubator) (Detail, error) {
	d := Detail{Incubator: inc}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := s.repo.ListMembers(gctx, inc.ID)
		d.Members = members
		return err
	})
	g.Go(func() error {
		list, err := s.repo.ListAssociatedStartups(gctx, inc.ID)
		d.Startups = list
		d.PortfolioStartups = list
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.PortfolioSummary(gctx, inc.ID)
		d.PortfolioSummary = sum
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, fmt.Errorf("load incubator %d: %w", inc.ID, err)
	}
	return d, nil
}

func (s *incubatorService) ListMembers(ctx context.Context, p auth.Principal) ([]Member, error) {
	if !p.IsIncubator() {
		return []Member{}, nil
	}
	inc, err := s.own(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, inc.ID)
}

func (s *incubatorService) GetMember(ctx context.Context, p auth.Principal, id int64) (Member, error) {
	if !p.IsIncubator() {
		return Member{}, ErrMemberNotFound
	}
	inc, err := s.own(ctx, p)
	if err != nil {
		return Member{}, err
	}
	return s.repo.GetMember(ctx, inc.ID, id)
}

func (s *incubatorService) CreateMember(ctx context.Context, p auth.Principal, in MemberInput) (Member, error) {
	if !p.IsIncubator() {
		return Member{}, ErrMembersOnly
	}
	inc, err := s.own(ctx, p)
	if err != nil {
		return Member{}, err
	}
	m, err := s.repo.CreateMember(ctx, inc.ID, normalizeMember(in))
	if err != nil {
		return Member{}, fmt.Errorf("create member: %w", err)
	}
	s.log.Info("incubator member added", zap.Int64("incubator_id", inc.ID), zap.Int64("member_id", m.ID))
	return m, nil
}

func (s *incubatorService) UpdateMember(ctx context.Context, p auth.Principal, id int64, in MemberInput) (Member, error) {
	if !p.IsIncubator() {
		return Member{}, ErrMemberNotFound
	}
	inc, err := s.own(ctx, p)
	if err != nil {
		return Member{}, err
	}
	return s.repo.UpdateMember(ctx, inc.ID, id, normalizeMember(in))
}

func (s *incubatorService) DeleteMember(ctx context.Context, p auth.Principal, id int64) error {
	if !p.IsIncubator() {
		return ErrMemberNotFound
	}
	inc, err := s.own(ctx, p)
	if err != nil {
		return err
	}
	return s.repo.DeleteMember(ctx, inc.ID, id)
}

func normalizeMember(in MemberInput) MemberInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (s *incubatorService) startupFor(ctx context.Context, p auth.Principal) (startups.Startup, error) {
	if !p.IsStartup() {
		return startups.Startup{}, ErrNotStartupUser
	}
	return s.startups.GetStartupByUserID(ctx, p.UserID)
}

func (s *incubatorService) ListAssociated(ctx context.Context, p auth.Principal) ([]Incubator, error) {
	st, err := s.startupFor(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForStartup(ctx, st.ID)
}

func (s *incubatorService) Associate(ctx context.Context, p auth.Principal, incubatorIDs []int64) ([]Incubator, error) {
	st, err := s.startupFor(ctx, p)
	if err != nil {
		return nil, err
	}

	ids := uniqueIDs(incubatorIDs)
	existing, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(ids) {
		return nil, ErrInvalidIncubatorID
	}

	if err := s.repo.ReplaceAssociations(ctx, st.ID, ids); err != nil {
		return nil, fmt.Errorf("replace associations: %w", err)
	}
	s.log.Info("startup incubators replaced",
		zap.Int64("user_id", p.UserID), zap.Int64("startup_id", st.ID), zap.Int64s("incubator_ids", ids))

	return s.repo.ListForStartup(ctx, st.ID)
}

// uniqueIDs returns the sorted distinct ids, never nil.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
