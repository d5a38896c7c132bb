package onboarding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type mockOnboardingService struct {
	mock.Mock
}

func (m *mockOnboardingService) Complete(ctx context.Context, p auth.Principal, req WizardRequest) (Result, error) {
	args := m.Called(ctx, p, req)
	r, _ := args.Get(0).(Result)
	return r, args.Error(1)
}

func setupOnboardingRouter(service OnboardingService, p auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	})
	NewOnboardingHandler(service).RegisterRoutes(group)
	return r
}

func postWizard(r *gin.Engine, body string) (*httptest.ResponseRecorder, response.APIResponse) {
	req := httptest.NewRequest(http.MethodPost, "/startup/complete-onboarding", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp response.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

const wizardBody = `{
	"company_name": "Acme",
	"industry": "fintech",
	"current_trl": 3,
	"target_funding_amount": 150000.00,
	"evidences": [{"trl_level": 3, "description": "Proof of concept completed", "file_url": "https://storage.test/evidence.pdf"}],
	"financial_data": [{"period_date": "2024-01-31", "revenue": 5000.00, "costs": 8000.00, "cash_balance": 45000.00, "monthly_burn": 3000.00}],
	"investors": [{"investor_name": "Angel Investor 1", "investor_email": "investor@example.com", "stage": "CONTACTED", "ticket_size": 50000.00}]
}`

func TestOnboardingHandler_Complete(t *testing.T) {
	svc := new(mockOnboardingService)
	r := setupOnboardingRouter(svc, founder)

	svc.On("Complete", mock.Anything, founder, mock.MatchedBy(func(req WizardRequest) bool {
		return req.CurrentTRL == 3 &&
			len(req.Evidences) == 1 && req.Evidences[0].TRLLevel == 3 &&
			len(req.FinancialData) == 1 && req.FinancialData[0].PeriodDate.String() == "2024-01-31" &&
			len(req.Investors) == 1 && req.TargetFundingAmount.String() == "150000"
	})).Return(Result{Detail: "Onboarding wizard completed successfully", StartupID: 6, TargetFundingAmount: "150000.00"}, nil)

	w, resp := postWizard(r, wizardBody)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "150000.00", data["target_funding_amount"])
	require.EqualValues(t, 6, data["startup_id"])
}

func TestOnboardingHandler_CompleteErrors(t *testing.T) {
	svc := new(mockOnboardingService)
	r := setupOnboardingRouter(svc, founder)

	svc.On("Complete", mock.Anything, founder, mock.Anything).
		Return(Result{}, validation.Errors{"investors": "At least one investor must be provided"}).Once()
	w, resp := postWizard(r, wizardBody)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, map[string]any{"investors": "At least one investor must be provided"}, resp.Data)

	svc.On("Complete", mock.Anything, founder, mock.Anything).Return(Result{}, startups.ErrNotStartupUser).Once()
	w, _ = postWizard(r, wizardBody)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = postWizard(r, `{"company_name": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
