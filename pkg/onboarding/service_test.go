package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/financials"
	"github.com/aquilesbailo123/Raven-backend/pkg/pipeline"
	"github.com/aquilesbailo123/Raven-backend/pkg/readiness"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type mockStartupWriter struct {
	mock.Mock
}

func (m *mockStartupWriter) GetOrCreateByUserID(ctx context.Context, userID int64) (startups.Startup, bool, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(startups.Startup)
	return s, args.Bool(1), args.Error(2)
}

func (m *mockStartupWriter) MarkOnboarded(ctx context.Context, id int64, companyName, industry string) (startups.Startup, error) {
	args := m.Called(ctx, id, companyName, industry)
	s, _ := args.Get(0).(startups.Startup)
	return s, args.Error(1)
}

type mockEvidenceWriter struct {
	mock.Mock
}

func (m *mockEvidenceWriter) DeleteEvidences(ctx context.Context, startupID int64) (int64, error) {
	args := m.Called(ctx, startupID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *mockEvidenceWriter) CreateEvidence(ctx context.Context, startupID int64, in readiness.NewEvidence) (readiness.Evidence, error) {
	args := m.Called(ctx, startupID, in)
	e, _ := args.Get(0).(readiness.Evidence)
	return e, args.Error(1)
}

type mockFinancialWriter struct {
	mock.Mock
}

func (m *mockFinancialWriter) DeleteByStartup(ctx context.Context, startupID int64) (int64, error) {
	args := m.Called(ctx, startupID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *mockFinancialWriter) Create(ctx context.Context, startupID int64, p financials.Period) (financials.FinancialInput, error) {
	args := m.Called(ctx, startupID, p)
	f, _ := args.Get(0).(financials.FinancialInput)
	return f, args.Error(1)
}

type mockInvestorWriter struct {
	mock.Mock
}

func (m *mockInvestorWriter) DeleteEntries(ctx context.Context, startupID int64) (int64, error) {
	args := m.Called(ctx, startupID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *mockInvestorWriter) CreateEntry(ctx context.Context, startupID int64, roundID *int64, in pipeline.EntryInput) (pipeline.Entry, error) {
	args := m.Called(ctx, startupID, roundID, in)
	e, _ := args.Get(0).(pipeline.Entry)
	return e, args.Error(1)
}

type fakeStoreTx struct {
	stores TxStores
	calls  int
}

func (f *fakeStoreTx) RunInTx(_ context.Context, fn func(TxStores) error) error {
	f.calls++
	return fn(f.stores)
}

var founder = auth.Principal{UserID: 21, UserType: auth.UserTypeStartup}

type wizardFixture struct {
	startups   *mockStartupWriter
	evidences  *mockEvidenceWriter
	financials *mockFinancialWriter
	investors  *mockInvestorWriter
	tx         *fakeStoreTx
	svc        OnboardingService
}

func newWizardFixture() wizardFixture {
	f := wizardFixture{
		startups:   new(mockStartupWriter),
		evidences:  new(mockEvidenceWriter),
		financials: new(mockFinancialWriter),
		investors:  new(mockInvestorWriter),
	}
	f.tx = &fakeStoreTx{stores: TxStores{
		Startups:   f.startups,
		Evidences:  f.evidences,
		Financials: f.financials,
		Investors:  f.investors,
	}}
	f.svc = NewOnboardingService(f.tx, nil, zap.NewNop())
	return f
}

func TestOnboardingService_Complete(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()

	f.startups.On("GetOrCreateByUserID", ctx, int64(21)).Return(startups.Startup{ID: 6, IsMockData: true}, false, nil)
	f.evidences.On("DeleteEvidences", ctx, int64(6)).Return(int64(3), nil)
	f.financials.On("DeleteByStartup", ctx, int64(6)).Return(int64(2), nil)
	f.investors.On("DeleteEntries", ctx, int64(6)).Return(int64(1), nil)
	f.evidences.On("CreateEvidence", ctx, int64(6), mock.AnythingOfType("readiness.NewEvidence")).Return(readiness.Evidence{}, nil).Twice()
	f.financials.On("Create", ctx, int64(6), mock.AnythingOfType("financials.Period")).Return(financials.FinancialInput{}, nil).Twice()
	f.investors.On("CreateEntry", ctx, int64(6), (*int64)(nil), mock.MatchedBy(func(in pipeline.EntryInput) bool {
		return in.InvestorName == "Angel Investor 1" && in.Stage == pipeline.StageContacted
	})).Return(pipeline.Entry{}, nil).Once()
	f.startups.On("MarkOnboarded", ctx, int64(6), "Acme", "fintech").Return(startups.Startup{ID: 6, IsMockData: false, OnboardingCompleted: true}, nil)

	res, err := f.svc.Complete(ctx, founder, validRequest())
	require.NoError(t, err)
	require.Equal(t, Result{
		Detail:                "Onboarding wizard completed successfully",
		StartupID:             6,
		IsMockData:            false,
		CurrentTRL:            3,
		TargetFundingAmount:   "150000.00",
		EvidencesCount:        2,
		FinancialPeriodsCount: 2,
		InvestorsCount:        1,
	}, res)

	f.evidences.AssertCalled(t, "CreateEvidence", ctx, int64(6), readiness.NewEvidence{
		Type:        readiness.TypeTRL,
		Level:       3,
		Description: strPtr("Proof of concept"),
		FileURL:     strPtr("https://files.test/poc.pdf"),
	})
	f.startups.AssertExpectations(t)
	f.financials.AssertExpectations(t)
	f.investors.AssertExpectations(t)
}

func TestOnboardingService_CompleteRejectsIncubator(t *testing.T) {
	f := newWizardFixture()
	_, err := f.svc.Complete(context.Background(), auth.Principal{UserID: 3, UserType: auth.UserTypeIncubator}, validRequest())
	require.ErrorIs(t, err, startups.ErrNotStartupUser)
	require.Zero(t, f.tx.calls)
}

func TestOnboardingService_CompleteValidatesBeforeWriting(t *testing.T) {
	f := newWizardFixture()
	req := validRequest()
	req.Investors = []pipeline.EntryInput{}

	_, err := f.svc.Complete(context.Background(), founder, req)
	fields, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, fields, "investors")
	require.Zero(t, f.tx.calls)
}

func TestOnboardingService_CompleteStopsOnFailure(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()

	f.startups.On("GetOrCreateByUserID", ctx, int64(21)).Return(startups.Startup{ID: 6}, false, nil)
	f.evidences.On("DeleteEvidences", ctx, int64(6)).Return(int64(0), nil)
	f.financials.On("DeleteByStartup", ctx, int64(6)).Return(int64(0), errors.New("connection reset"))

	_, err := f.svc.Complete(ctx, founder, validRequest())
	require.Error(t, err)
	f.startups.AssertNotCalled(t, "MarkOnboarded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.investors.AssertNotCalled(t, "DeleteEntries", mock.Anything, mock.Anything)
}
