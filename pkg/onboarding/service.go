package onboarding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

const completedDetail = "Onboarding wizard completed successfully"

type OnboardingService interface {
	Complete(ctx context.Context, p auth.Principal, req WizardRequest) (Result, error)
}

type onboardingService struct {
	tx      StoreTx
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewOnboardingService(tx StoreTx, m *metrics.Metrics, log *zap.Logger) OnboardingService {
	return &onboardingService{tx: tx, metrics: m, log: log}
}

// Complete replaces the startup's evidences, financial periods and pipeline
// with the wizard data and marks onboarding done. Nothing is written unless
// every step succeeds.
func (s *onboardingService) Complete(ctx context.Context, p auth.Principal, req WizardRequest) (Result, error) {
	if !p.IsStartup() {
		s.log.Warn("non-startup user attempted onboarding wizard", zap.Int64("user_id", p.UserID))
		return Result{}, startups.ErrNotStartupUser
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	name, _ := startups.ValidateProfile(req.CompanyName, req.Industry)

	var res Result
	err := s.tx.RunInTx(ctx, func(stores TxStores) error {
		st, _, err := stores.Startups.GetOrCreateByUserID(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("get startup: %w", err)
		}
		s.log.Info("onboarding wizard started", zap.Int64("user_id", p.UserID), zap.Int64("startup_id", st.ID))

		if _, err := stores.Evidences.DeleteEvidences(ctx, st.ID); err != nil {
			return fmt.Errorf("delete evidences: %w", err)
		}
		if _, err := stores.Financials.DeleteByStartup(ctx, st.ID); err != nil {
			return fmt.Errorf("delete financial inputs: %w", err)
		}
		if _, err := stores.Investors.DeleteEntries(ctx, st.ID); err != nil {
			return fmt.Errorf("delete pipeline: %w", err)
		}

		for _, e := range req.Evidences {
			if _, err := stores.Evidences.CreateEvidence(ctx, st.ID, e.toNew()); err != nil {
				return fmt.Errorf("create evidence: %w", err)
			}
		}
		for _, period := range req.FinancialData {
			if _, err := stores.Financials.Create(ctx, st.ID, period); err != nil {
				return fmt.Errorf("create financial input: %w", err)
			}
		}
		for _, in := range req.Investors {
			if _, err := stores.Investors.CreateEntry(ctx, st.ID, nil, in); err != nil {
				return fmt.Errorf("create pipeline entry: %w", err)
			}
		}

		st, err = stores.Startups.MarkOnboarded(ctx, st.ID, name, req.Industry)
		if err != nil {
			return fmt.Errorf("mark onboarded: %w", err)
		}

		res = Result{
			Detail:                completedDetail,
			StartupID:             st.ID,
			IsMockData:            st.IsMockData,
			CurrentTRL:            req.CurrentTRL,
			TargetFundingAmount:   req.TargetFundingAmount.StringFixed(2),
			EvidencesCount:        len(req.Evidences),
			FinancialPeriodsCount: len(req.FinancialData),
			InvestorsCount:        len(req.Investors),
		}
		return nil
	})
	if err != nil {
		s.log.Error("onboarding wizard failed", zap.Int64("user_id", p.UserID), zap.Error(err))
		return Result{}, err
	}

	s.metrics.IncOnboardingCompleted()
	s.log.Info("onboarding wizard completed",
		zap.Int64("user_id", p.UserID),
		zap.Int64("startup_id", res.StartupID),
		zap.Int("evidences", res.EvidencesCount),
		zap.Int("financial_periods", res.FinancialPeriodsCount),
		zap.Int("investors", res.InvestorsCount))
	return res, nil
}
