package challenges

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
)

type mockChallengeService struct {
	mock.Mock
}

func (m *mockChallengeService) List(ctx context.Context, p auth.Principal) ([]Challenge, error) {
	args := m.Called(ctx, p)
	list, _ := args.Get(0).([]Challenge)
	return list, args.Error(1)
}

func (m *mockChallengeService) Get(ctx context.Context, p auth.Principal, id int64) (Challenge, error) {
	args := m.Called(ctx, p, id)
	ch, _ := args.Get(0).(Challenge)
	return ch, args.Error(1)
}

func (m *mockChallengeService) Create(ctx context.Context, p auth.Principal, in ChallengeInput) (Challenge, error) {
	args := m.Called(ctx, p, in)
	ch, _ := args.Get(0).(Challenge)
	return ch, args.Error(1)
}

func (m *mockChallengeService) Update(ctx context.Context, p auth.Principal, id int64, in ChallengeInput) (Challenge, error) {
	args := m.Called(ctx, p, id, in)
	ch, _ := args.Get(0).(Challenge)
	return ch, args.Error(1)
}

func (m *mockChallengeService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *mockChallengeService) Close(ctx context.Context, p auth.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *mockChallengeService) ListApplications(ctx context.Context, p auth.Principal) ([]Application, error) {
	args := m.Called(ctx, p)
	list, _ := args.Get(0).([]Application)
	return list, args.Error(1)
}

func (m *mockChallengeService) GetApplication(ctx context.Context, p auth.Principal, id int64) (Application, error) {
	args := m.Called(ctx, p, id)
	a, _ := args.Get(0).(Application)
	return a, args.Error(1)
}

func (m *mockChallengeService) Apply(ctx context.Context, p auth.Principal, in ApplicationInput) (Application, error) {
	args := m.Called(ctx, p, in)
	a, _ := args.Get(0).(Application)
	return a, args.Error(1)
}

func (m *mockChallengeService) DeleteApplication(ctx context.Context, p auth.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

func setupRouter(svc ChallengeService, p auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	})
	NewChallengeHandler(svc).RegisterRoutes(group)
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

func TestChallengeHandler_Create(t *testing.T) {
	svc := new(mockChallengeService)
	r := setupRouter(svc, owner)
	svc.On("Create", mock.Anything, owner, mock.MatchedBy(func(in ChallengeInput) bool {
		return in.Title == "Green" && in.Deadline != nil && in.Deadline.String() == "2026-12-31"
	})).Return(Challenge{ID: 3, Status: StatusOpen}, nil)

	w, _ := doRequest(r, http.MethodPost, "/challenges",
		`{"title": "Green", "description": "d", "required_technologies": "IoT", "deadline": "2026-12-31", "budget": "25000"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doRequest(r, http.MethodPost, "/challenges", `{"title": "Green"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, resp.Data, "description")
}

func TestChallengeHandler_StatusMapping(t *testing.T) {
	svc := new(mockChallengeService)
	r := setupRouter(svc, founder)

	svc.On("Create", mock.Anything, founder, mock.Anything).Return(Challenge{}, ErrIncubatorsOnly)
	w, resp := doRequest(r, http.MethodPost, "/challenges", `{"title": "t", "description": "d", "required_technologies": "x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only incubators can create challenges.", resp.Message)

	svc.On("Close", mock.Anything, founder, int64(3)).Return(ErrNotOwner)
	w, resp = doRequest(r, http.MethodPost, "/challenges/3/close", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Not authorized", resp.Message)

	svc.On("Get", mock.Anything, founder, int64(4)).Return(Challenge{}, ErrChallengeNotFound)
	w, _ = doRequest(r, http.MethodGet, "/challenges/4", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.On("Apply", mock.Anything, founder, ApplicationInput{ChallengeID: 3, TextSolution: "s"}).Return(Application{}, ErrAlreadyApplied)
	w, resp = doRequest(r, http.MethodPost, "/challenge-applications", `{"challenge": 3, "text_solution": "s"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "You have already applied to this challenge.", resp.Message)

	svc.On("Apply", mock.Anything, founder, ApplicationInput{ChallengeID: 4, TextSolution: "s"}).Return(Application{}, ErrConcluded)
	w, resp = doRequest(r, http.MethodPost, "/challenge-applications", `{"challenge": 4, "text_solution": "s"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "This challenge is no longer accepting applications.", resp.Message)
	require.NotEqual(t, ErrConcluded.Error(), resp.Message)
}

func TestChallengeHandler_Close(t *testing.T) {
	svc := new(mockChallengeService)
	r := setupRouter(svc, owner)
	svc.On("Close", mock.Anything, owner, int64(3)).Return(nil)

	w, resp := doRequest(r, http.MethodPost, "/challenges/3/close", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"status": "Challenge concluded"}, resp.Data)
}

func TestChallengeHandler_DeleteApplication(t *testing.T) {
	svc := new(mockChallengeService)
	r := setupRouter(svc, founder)
	svc.On("DeleteApplication", mock.Anything, founder, int64(11)).Return(nil)

	w, _ := doRequest(r, http.MethodDelete, "/challenge-applications/11", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}
