package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/incubators"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

type mockReadinessRepository struct {
	mock.Mock
}

func (m *mockReadinessRepository) ListEvidences(ctx context.Context, startupID int64) ([]Evidence, error) {
	args := m.Called(ctx, startupID)
	list, _ := args.Get(0).([]Evidence)
	return list, args.Error(1)
}

func (m *mockReadinessRepository) CreateEvidence(ctx context.Context, startupID int64, in NewEvidence) (Evidence, error) {
	args := m.Called(ctx, startupID, in)
	e, _ := args.Get(0).(Evidence)
	return e, args.Error(1)
}

func (m *mockReadinessRepository) DeleteEvidences(ctx context.Context, startupID int64) (int64, error) {
	args := m.Called(ctx, startupID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *mockReadinessRepository) GetPortfolioEvidenceByID(ctx context.Context, id int64) (PortfolioEvidence, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(PortfolioEvidence)
	return e, args.Error(1)
}

func (m *mockReadinessRepository) ListPortfolioEvidences(ctx context.Context, incubatorID int64) ([]PortfolioEvidence, error) {
	args := m.Called(ctx, incubatorID)
	list, _ := args.Get(0).([]PortfolioEvidence)
	return list, args.Error(1)
}

func (m *mockReadinessRepository) GetPortfolioEvidence(ctx context.Context, incubatorID, id int64) (PortfolioEvidence, error) {
	args := m.Called(ctx, incubatorID, id)
	e, _ := args.Get(0).(PortfolioEvidence)
	return e, args.Error(1)
}

func (m *mockReadinessRepository) UpdateReview(ctx context.Context, id int64, status string, notes *string) error {
	return m.Called(ctx, id, status, notes).Error(0)
}

func (m *mockReadinessRepository) ApprovedLevels(ctx context.Context, startupID int64, kind string) ([]int, error) {
	args := m.Called(ctx, startupID, kind)
	levels, _ := args.Get(0).([]int)
	return levels, args.Error(1)
}

func (m *mockReadinessRepository) ListLevels(ctx context.Context, startupID int64) ([]Level, error) {
	args := m.Called(ctx, startupID)
	list, _ := args.Get(0).([]Level)
	return list, args.Error(1)
}

func (m *mockReadinessRepository) GetLevel(ctx context.Context, startupID, id int64) (Level, error) {
	args := m.Called(ctx, startupID, id)
	l, _ := args.Get(0).(Level)
	return l, args.Error(1)
}

func (m *mockReadinessRepository) CreateLevel(ctx context.Context, startupID int64, in LevelInput) (Level, error) {
	args := m.Called(ctx, startupID, in)
	l, _ := args.Get(0).(Level)
	return l, args.Error(1)
}

func (m *mockReadinessRepository) UpdateLevel(ctx context.Context, startupID, id int64, in LevelInput) (Level, error) {
	args := m.Called(ctx, startupID, id, in)
	l, _ := args.Get(0).(Level)
	return l, args.Error(1)
}

func (m *mockReadinessRepository) DeleteLevel(ctx context.Context, startupID, id int64) error {
	return m.Called(ctx, startupID, id).Error(0)
}

func (m *mockReadinessRepository) ListPortfolioLevels(ctx context.Context, incubatorID int64) ([]PortfolioLevel, error) {
	args := m.Called(ctx, incubatorID)
	list, _ := args.Get(0).([]PortfolioLevel)
	return list, args.Error(1)
}

type mockStartupStore struct {
	mock.Mock
}

func (m *mockStartupStore) GetStartupByID(ctx context.Context, id int64) (startups.Startup, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(startups.Startup)
	return s, args.Error(1)
}

func (m *mockStartupStore) GetStartupByUserID(ctx context.Context, userID int64) (startups.Startup, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(startups.Startup)
	return s, args.Error(1)
}

func (m *mockStartupStore) GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(startups.Startup)
	return s, args.Bool(1), args.Error(2)
}

func (m *mockStartupStore) UpdateLevels(ctx context.Context, id int64, trl, crl int) error {
	return m.Called(ctx, id, trl, crl).Error(0)
}

func (m *mockStartupStore) LockForUpdate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// fakeStoreTx hands the mocks straight to fn and records whether the
// transaction would have rolled back.
type fakeStoreTx struct {
	stores     TxStores
	calls      int
	rolledBack bool
}

func (f *fakeStoreTx) RunInTx(_ context.Context, fn func(TxStores) error) error {
	f.calls++
	err := fn(f.stores)
	f.rolledBack = err != nil
	return err
}

type mockIncubatorLookup struct {
	mock.Mock
}

func (m *mockIncubatorLookup) GetOrCreateByUserID(ctx context.Context, userID int64) (incubators.Incubator, bool, error) {
	args := m.Called(ctx, userID)
	inc, _ := args.Get(0).(incubators.Incubator)
	return inc, args.Bool(1), args.Error(2)
}

func (m *mockIncubatorLookup) IsAssociated(ctx context.Context, startupID, incubatorID int64) (bool, error) {
	args := m.Called(ctx, startupID, incubatorID)
	return args.Bool(0), args.Error(1)
}

type published struct {
	userID int64
	kind   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []published
}

func (n *recordingNotifier) Publish(_ context.Context, userID int64, kind, _, _ string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, published{userID: userID, kind: kind})
}

var (
	founder  = auth.Principal{UserID: 30, UserType: auth.UserTypeStartup}
	reviewer = auth.Principal{UserID: 20, UserType: auth.UserTypeIncubator}
)

type fixture struct {
	repo       *mockReadinessRepository
	startups   *mockStartupStore
	incubators *mockIncubatorLookup
	notifier   *recordingNotifier
	tx         *fakeStoreTx
	svc        ReadinessService
}

func newFixture() fixture {
	f := fixture{
		repo:       new(mockReadinessRepository),
		startups:   new(mockStartupStore),
		incubators: new(mockIncubatorLookup),
		notifier:   &recordingNotifier{},
	}
	f.tx = &fakeStoreTx{stores: TxStores{Readiness: f.repo, Startups: f.startups}}
	f.svc = NewReadinessService(f.repo, f.startups, f.incubators, f.tx, f.notifier, metrics.New(), zap.NewNop())
	return f
}

func TestReadinessService_UpdateMaturityLevels(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.startups.On("LockForUpdate", ctx, int64(5)).Return(nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeTRL).Return([]int{1, 2, 3, 5}, nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeCRL).Return([]int{2}, nil)
	f.startups.On("UpdateLevels", ctx, int64(5), 3, 1).Return(nil)

	trl, crl, err := f.svc.UpdateMaturityLevels(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 3, trl)
	require.Equal(t, 1, crl)
	require.Equal(t, 1, f.tx.calls)
	f.startups.AssertExpectations(t)
}

func TestReadinessService_Review(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	notes := "looks good"
	ev := PortfolioEvidence{Evidence: Evidence{ID: 11, StartupID: 5, Type: TypeTRL, Level: 1, Status: StatusPending}}
	approved := ev
	approved.Status = StatusApproved

	f.incubators.On("GetOrCreateByUserID", ctx, int64(20)).Return(incubators.Incubator{ID: 2}, false, nil)
	f.repo.On("GetPortfolioEvidenceByID", ctx, int64(11)).Return(ev, nil).Once()
	f.incubators.On("IsAssociated", ctx, int64(5), int64(2)).Return(true, nil)
	f.startups.On("LockForUpdate", ctx, int64(5)).Return(nil)
	f.repo.On("UpdateReview", ctx, int64(11), StatusApproved, &notes).Return(nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeTRL).Return([]int{1}, nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeCRL).Return([]int{}, nil)
	f.startups.On("UpdateLevels", ctx, int64(5), 1, 1).Return(nil)
	f.repo.On("GetPortfolioEvidenceByID", ctx, int64(11)).Return(approved, nil).Once()
	f.startups.On("GetStartupByID", ctx, int64(5)).Return(startups.Startup{ID: 5, UserID: 30}, nil)

	got, err := f.svc.Review(ctx, reviewer, 11, ReviewInput{Status: StatusApproved, ReviewerNotes: &notes})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
	require.Equal(t, []published{{userID: 30, kind: KindEvidenceReviewed}}, f.notifier.sent)
	require.Equal(t, 1, f.tx.calls)
	require.False(t, f.tx.rolledBack)

	f.repo.AssertExpectations(t)
	f.startups.AssertExpectations(t)
}

func TestReadinessService_Review_LevelUpdateFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ev := PortfolioEvidence{Evidence: Evidence{ID: 11, StartupID: 5, Type: TypeTRL, Level: 1, Status: StatusPending}}

	f.incubators.On("GetOrCreateByUserID", ctx, int64(20)).Return(incubators.Incubator{ID: 2}, false, nil)
	f.repo.On("GetPortfolioEvidenceByID", ctx, int64(11)).Return(ev, nil).Once()
	f.incubators.On("IsAssociated", ctx, int64(5), int64(2)).Return(true, nil)
	f.startups.On("LockForUpdate", ctx, int64(5)).Return(nil)
	f.repo.On("UpdateReview", ctx, int64(11), StatusApproved, (*string)(nil)).Return(nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeTRL).Return([]int{1}, nil)
	f.repo.On("ApprovedLevels", ctx, int64(5), TypeCRL).Return([]int{}, nil)
	f.startups.On("UpdateLevels", ctx, int64(5), 1, 1).Return(errors.New("connection reset"))

	_, err := f.svc.Review(ctx, reviewer, 11, ReviewInput{Status: StatusApproved})
	require.ErrorContains(t, err, "update maturity levels")
	require.True(t, f.tx.rolledBack)
	require.Empty(t, f.notifier.sent)
}

func TestReadinessService_Review_LockFailureSkipsReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.incubators.On("GetOrCreateByUserID", ctx, int64(20)).Return(incubators.Incubator{ID: 2}, false, nil)
	f.repo.On("GetPortfolioEvidenceByID", ctx, int64(11)).
		Return(PortfolioEvidence{Evidence: Evidence{ID: 11, StartupID: 5}}, nil)
	f.incubators.On("IsAssociated", ctx, int64(5), int64(2)).Return(true, nil)
	f.startups.On("LockForUpdate", ctx, int64(5)).Return(startups.ErrStartupNotFound)

	_, err := f.svc.Review(ctx, reviewer, 11, ReviewInput{Status: StatusApproved})
	require.ErrorIs(t, err, startups.ErrStartupNotFound)
	f.repo.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadinessService_Review_NotInPortfolio(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Review(ctx, founder, 11, ReviewInput{Status: StatusApproved})
	require.ErrorIs(t, err, ErrNotIncubatorUser)

	f.incubators.On("GetOrCreateByUserID", ctx, int64(20)).Return(incubators.Incubator{ID: 2}, false, nil)
	f.repo.On("GetPortfolioEvidenceByID", ctx, int64(11)).
		Return(PortfolioEvidence{Evidence: Evidence{ID: 11, StartupID: 9}}, nil)
	f.incubators.On("IsAssociated", ctx, int64(9), int64(2)).Return(false, nil)

	_, err = f.svc.Review(ctx, reviewer, 11, ReviewInput{Status: StatusApproved})
	require.ErrorIs(t, err, ErrNotInPortfolio)
	f.repo.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Empty(t, f.notifier.sent)
}

func TestReadinessService_ListEvidences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ListEvidences(ctx, reviewer)
	require.ErrorIs(t, err, startups.ErrNotStartupUser)

	f.startups.On("GetStartupByUserID", ctx, int64(30)).Return(startups.Startup{}, startups.ErrStartupNotFound).Once()
	list, err := f.svc.ListEvidences(ctx, founder)
	require.NoError(t, err)
	require.Empty(t, list)

	f.startups.On("GetStartupByUserID", ctx, int64(30)).Return(startups.Startup{ID: 5}, nil).Once()
	f.repo.On("ListEvidences", ctx, int64(5)).Return([]Evidence{{ID: 1}, {ID: 2}}, nil)
	list, err = f.svc.ListEvidences(ctx, founder)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestReadinessService_CreateLevelDefaultsToTRL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.startups.On("GetOrCreateByUserID", ctx, int64(30)).Return(startups.Startup{ID: 5}, true, nil)
	f.repo.On("CreateLevel", ctx, int64(5), LevelInput{Type: TypeTRL, Level: 2, Title: "Concept"}).
		Return(Level{ID: 1, Type: TypeTRL, Level: 2}, nil)

	l, err := f.svc.CreateLevel(ctx, founder, LevelInput{Level: 2, Title: "Concept"})
	require.NoError(t, err)
	require.Equal(t, TypeTRL, l.Type)
}

func TestAttachEvidences(t *testing.T) {
	levels := []PortfolioLevel{
		{Level: Level{ID: 1, StartupID: 5, Type: TypeTRL, Level: 1}, StartupID: 5, Evidences: []PortfolioEvidence{}},
		{Level: Level{ID: 2, StartupID: 5, Type: TypeCRL, Level: 1}, StartupID: 5, Evidences: []PortfolioEvidence{}},
		{Level: Level{ID: 3, StartupID: 6, Type: TypeTRL, Level: 1}, StartupID: 6, Evidences: []PortfolioEvidence{}},
	}
	evidences := []PortfolioEvidence{
		{Evidence: Evidence{ID: 10, StartupID: 5, Type: TypeTRL, Level: 1}},
		{Evidence: Evidence{ID: 11, StartupID: 5, Type: TypeTRL, Level: 1}},
		{Evidence: Evidence{ID: 12, StartupID: 6, Type: TypeTRL, Level: 2}},
	}

	got := attachEvidences(levels, evidences)
	require.Len(t, got[0].Evidences, 2)
	require.Empty(t, got[1].Evidences)
	require.Empty(t, got[2].Evidences)
}
