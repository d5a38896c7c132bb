package startups

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
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type mockStartupService struct {
	mock.Mock
}

func (m *mockStartupService) GetOrCreate(ctx context.Context, p auth.Principal) (Startup, error) {
	args := m.Called(ctx, p)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupService) GetMine(ctx context.Context, p auth.Principal) (Startup, error) {
	args := m.Called(ctx, p)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func (m *mockStartupService) SubmitProfile(ctx context.Context, p auth.Principal, companyName, industry string, logoURL *string) (Startup, error) {
	args := m.Called(ctx, p, companyName, industry, logoURL)
	s, _ := args.Get(0).(Startup)
	return s, args.Error(1)
}

func setupStartupRouter(service StartupService, p auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	})
	NewStartupHandler(service).RegisterRoutes(group)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp response.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestStartupHandler_GetOnboarding(t *testing.T) {
	svc := new(mockStartupService)
	r := setupStartupRouter(svc, founder)

	svc.On("GetOrCreate", mock.Anything, founder).Return(Startup{ID: 3, OnboardingCompleted: true}, nil)

	w, resp := doRequest(r, http.MethodGet, "/onboarding/startup", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	require.Equal(t, true, data["is_onboarding_complete"])
	require.EqualValues(t, 3, data["startup"].(map[string]any)["id"])
}

func TestStartupHandler_ForbiddenForIncubators(t *testing.T) {
	svc := new(mockStartupService)
	r := setupStartupRouter(svc, reviewer)

	svc.On("GetOrCreate", mock.Anything, reviewer).Return(Startup{}, ErrNotStartupUser)

	w, resp := doRequest(r, http.MethodGet, "/onboarding/startup", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "This endpoint is only for startup users.", resp.Message)
}

func TestStartupHandler_SubmitOnboarding(t *testing.T) {
	svc := new(mockStartupService)
	r := setupStartupRouter(svc, founder)

	svc.On("SubmitProfile", mock.Anything, founder, "Acme", "saas", (*string)(nil)).
		Return(Startup{ID: 3, CompanyName: strPtr("Acme")}, nil).Once()
	w, resp := doRequest(r, http.MethodPost, "/onboarding/startup", `{"company_name":"Acme","industry":"saas"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Onboarding completed successfully.", resp.Message)

	svc.On("SubmitProfile", mock.Anything, founder, "", "", (*string)(nil)).
		Return(Startup{}, validation.Errors{"company_name": "Company name cannot be empty"}).Once()
	w, resp = doRequest(r, http.MethodPost, "/onboarding/startup", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Company name cannot be empty", resp.Data.(map[string]any)["company_name"])

	svc.AssertExpectations(t)
}

func TestStartupHandler_GetStartupData_NotFound(t *testing.T) {
	svc := new(mockStartupService)
	r := setupStartupRouter(svc, founder)

	svc.On("GetMine", mock.Anything, founder).Return(Startup{}, ErrStartupNotFound)

	w, resp := doRequest(r, http.MethodGet, "/startup/data", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Startup not found.", resp.Message)
}
