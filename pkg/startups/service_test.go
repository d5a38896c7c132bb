package startups

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type mockStartupRepository struct {
	mock.Mock
}

func (m *mockStartupRepository) GetStartupByID(ctx context.Context, id int64) (Startup, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupRepository) GetStartupByUserID(ctx context.Context, userID int64) (Startup, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (Startup, bool, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(Startup)
	return s, args.Bool(1), args.Error(2)
}

func (m *mockStartupRepository) UpdateProfile(ctx context.Context, id int64, companyName, industry string, logoURL *string) (Startup, error) {
	args := m.Called(ctx, id, companyName, industry, logoURL)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupRepository) MarkOnboarded(ctx context.Context, id int64, companyName, industry string) (Startup, error) {
	args := m.Called(ctx, id, companyName, industry)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupRepository) ListByIncubator(ctx context.Context, incubatorID int64) ([]Startup, error) {
	args := m.Called(ctx, incubatorID)
	list, _ := args.Get(0).([]Startup)
	return list, args.Error(1)
}

func (m *mockStartupRepository) UpdateLevels(ctx context.Context, id int64, trl, crl int) error {
	args := m.Called(ctx, id, trl, crl)
	return args.Error(0)
}

func (m *mockStartupRepository) LockForUpdate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	founder  = auth.Principal{UserID: 7, UserType: auth.UserTypeStartup}
	reviewer = auth.Principal{UserID: 8, UserType: auth.UserTypeIncubator}
)

func strPtr(s string) *string { return &s }

func TestStartupService_GetOrCreate(t *testing.T) {
	repo := new(mockStartupRepository)
	svc := NewStartupService(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("GetOrCreateByUserID", ctx, int64(7)).Return(Startup{ID: 3, UserID: 7, TRLLevel: 1, CRLLevel: 1, IsMockData: true}, true, nil)

	st, err := svc.GetOrCreate(ctx, founder)
	require.NoError(t, err)
	require.Equal(t, int64(3), st.ID)
	require.True(t, st.IsMockData)

	_, err = svc.GetOrCreate(ctx, reviewer)
	require.ErrorIs(t, err, ErrNotStartupUser)

	repo.AssertExpectations(t)
}

func TestStartupService_GetMine(t *testing.T) {
	repo := new(mockStartupRepository)
	svc := NewStartupService(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("GetStartupByUserID", ctx, int64(7)).Return(Startup{}, ErrStartupNotFound)

	_, err := svc.GetMine(ctx, founder)
	require.ErrorIs(t, err, ErrStartupNotFound)
	repo.AssertNotCalled(t, "GetOrCreateByUserID", mock.Anything, mock.Anything)
}

func TestStartupService_SubmitProfile(t *testing.T) {
	repo := new(mockStartupRepository)
	svc := NewStartupService(repo, zap.NewNop())
	ctx := context.Background()
	logo := strPtr("https://cdn.raven.test/logo.png")

	repo.On("GetOrCreateByUserID", ctx, int64(7)).Return(Startup{ID: 3, UserID: 7}, false, nil)
	repo.On("UpdateProfile", ctx, int64(3), "Acme Robotics", "ai_ml", logo).
		Return(Startup{ID: 3, UserID: 7, CompanyName: strPtr("Acme Robotics"), Industry: strPtr("ai_ml"), LogoURL: logo}, nil)

	st, err := svc.SubmitProfile(ctx, founder, "  Acme Robotics ", "ai_ml", logo)
	require.NoError(t, err)
	require.Equal(t, "Acme Robotics", st.Name())

	repo.AssertExpectations(t)
}

func TestStartupService_SubmitProfile_Validation(t *testing.T) {
	repo := new(mockStartupRepository)
	svc := NewStartupService(repo, zap.NewNop())

	_, err := svc.SubmitProfile(context.Background(), founder, "   ", "", nil)
	fields, ok := validation.As(err)
	require.True(t, ok)
	require.Equal(t, "Company name cannot be empty", fields["company_name"])
	require.Equal(t, "Industry must be selected", fields["industry"])

	_, err = svc.SubmitProfile(context.Background(), founder, "Acme", "space", nil)
	fields, ok = validation.As(err)
	require.True(t, ok)
	require.Contains(t, fields["industry"], "not a valid choice")

	repo.AssertNotCalled(t, "GetOrCreateByUserID", mock.Anything, mock.Anything)
}

func TestStartupService_SubmitProfile_RepoError(t *testing.T) {
	repo := new(mockStartupRepository)
	svc := NewStartupService(repo, zap.NewNop())
	ctx := context.Background()
	boom := errors.New("connection reset")

	repo.On("GetOrCreateByUserID", ctx, int64(7)).Return(Startup{}, false, boom)

	_, err := svc.SubmitProfile(ctx, founder, "Acme", "saas", nil)
	require.ErrorIs(t, err, boom)
}

func TestValidIndustry(t *testing.T) {
	require.True(t, ValidIndustry("Marketplace"))
	require.True(t, ValidIndustry("fintech"))
	require.False(t, ValidIndustry("marketplace"))
	require.False(t, ValidIndustry(""))
}
