package incubators

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
)

type mockIncubatorService struct {
	mock.Mock
}

func (m *mockIncubatorService) Onboard(ctx context.Context, p auth.Principal, in ProfileInput) (Detail, error) {
	args := m.Called(ctx, p, in)
	d, _ := args.Get(0).(Detail)
	return d, args.Error(1)
}

func (m *mockIncubatorService) GetMine(ctx context.Context, p auth.Principal) (Detail, error) {
	args := m.Called(ctx, p)
	d, _ := args.Get(0).(Detail)
	return d, args.Error(1)
}

func (m *mockIncubatorService) List(ctx context.Context) ([]Incubator, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]Incubator)
	return list, args.Error(1)
}

func (m *mockIncubatorService) ListAvailable(ctx context.Context, p auth.Principal) ([]Incubator, error) {
	args := m.Called(ctx, p)
	list, _ := args.Get(0).([]Incubator)
	return list, args.Error(1)
}

func (m *mockIncubatorService) Get(ctx context.Context, id int64) (Detail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(Detail)
	return d, args.Error(1)
}

func (m *mockIncubatorService) Update(ctx context.Context, p auth.Principal, id int64, in ProfileInput) (Detail, error) {
	args := m.Called(ctx, p, id, in)
	d, _ := args.Get(0).(Detail)
	return d, args.Error(1)
}

func (m *mockIncubatorService) Startups(ctx context.Context, p auth.Principal, id int64) ([]startups.Startup, error) {
	args := m.Called(ctx, p, id)
	list, _ := args.Get(0).([]startups.Startup)
	return list, args.Error(1)
}

func (m *mockIncubatorService) ListMembers(ctx context.Context, p auth.Principal) ([]Member, error) {
	args := m.Called(ctx, p)
	list, _ := args.Get(0).([]Member)
	return list, args.Error(1)
}

func (m *mockIncubatorService) GetMember(ctx context.Context, p auth.Principal, id int64) (Member, error) {
	args := m.Called(ctx, p, id)
	mem, _ := args.Get(0).(Member)
	return mem, args.Error(1)
}

func (m *mockIncubatorService) CreateMember(ctx context.Context, p auth.Principal, in MemberInput) (Member, error) {
	args := m.Called(ctx, p, in)
	mem, _ := args.Get(0).(Member)
	return mem, args.Error(1)
}

func (m *mockIncubatorService) UpdateMember(ctx context.Context, p auth.Principal, id int64, in MemberInput) (Member, error) {
	args := m.Called(ctx, p, id, in)
	mem, _ := args.Get(0).(Member)
	return mem, args.Error(1)
}

func (m *mockIncubatorService) DeleteMember(ctx context.Context, p auth.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *mockIncubatorService) ListAssociated(ctx context.Context, p auth.Principal) ([]Incubator, error) {
	args := m.Called(ctx, p)
	list, _ := args.Get(0).([]Incubator)
	return list, args.Error(1)
}

func (m *mockIncubatorService) Associate(ctx context.Context, p auth.Principal, ids []int64) ([]Incubator, error) {
	args := m.Called(ctx, p, ids)
	list, _ := args.Get(0).([]Incubator)
	return list, args.Error(1)
}

func setupIncubatorRouter(service IncubatorService, p auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	})
	NewIncubatorHandler(service).RegisterRoutes(group)
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

func TestIncubatorHandler_Onboard(t *testing.T) {
	svc := new(mockIncubatorService)
	r := setupIncubatorRouter(svc, owner)

	svc.On("Onboard", mock.Anything, owner, ProfileInput{Name: "TechStars"}).
		Return(Detail{Incubator: Incubator{ID: 2, Name: "TechStars", ProfileComplete: true}}, nil)

	w, resp := doRequest(r, http.MethodPost, "/onboarding/incubator", `{"name":"TechStars"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	require.Equal(t, "Onboarding completed successfully.", data["detail"])
	require.Equal(t, "TechStars", data["incubator"].(map[string]any)["name"])
}

func TestIncubatorHandler_ListAllBeforeID(t *testing.T) {
	svc := new(mockIncubatorService)
	r := setupIncubatorRouter(svc, founder)

	svc.On("ListAvailable", mock.Anything, founder).Return([]Incubator{{ID: 3}}, nil)

	w, resp := doRequest(r, http.MethodGet, "/incubators/list-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Data.([]any), 1)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestIncubatorHandler_Errors(t *testing.T) {
	svc := new(mockIncubatorService)
	r := setupIncubatorRouter(svc, other)

	svc.On("Update", mock.Anything, other, int64(2), ProfileInput{Name: "x"}).Return(Detail{}, ErrNotOwner)
	w, resp := doRequest(r, http.MethodPut, "/incubators/2", `{"name":"x"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "You do not have permission to perform this action.", resp.Message)

	svc.On("Get", mock.Anything, int64(77)).Return(Detail{}, ErrIncubatorNotFound)
	w, _ = doRequest(r, http.MethodGet, "/incubators/77/data", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(r, http.MethodGet, "/incubators/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIncubatorHandler_Members(t *testing.T) {
	svc := new(mockIncubatorService)
	r := setupIncubatorRouter(svc, founder)

	w, resp := doRequest(r, http.MethodPost, "/incubator/members", `{"full_name":"Ada","email":"bad","role":"CEO"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := resp.Data.(map[string]any)
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "role")

	in := MemberInput{FullName: "Ada", Email: "ada@raven.test"}
	svc.On("CreateMember", mock.Anything, founder, in).Return(Member{}, ErrMembersOnly)
	w, resp = doRequest(r, http.MethodPost, "/incubator/members", `{"full_name":"Ada","email":"ada@raven.test"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only incubators can add members.", resp.Message)
}

func TestIncubatorHandler_Associate(t *testing.T) {
	svc := new(mockIncubatorService)
	r := setupIncubatorRouter(svc, founder)

	svc.On("Associate", mock.Anything, founder, []int64{1, 2}).Return([]Incubator{{ID: 1}, {ID: 2}}, nil).Once()
	w, resp := doRequest(r, http.MethodPost, "/startup/incubators/associate", `{"incubator_ids":[1,2]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Data.([]any), 2)

	svc.On("Associate", mock.Anything, founder, []int64{9}).Return(nil, ErrInvalidIncubatorID).Once()
	w, resp = doRequest(r, http.MethodPost, "/startup/incubators/associate", `{"incubator_ids":[9]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "One or more Incubator IDs are invalid.", resp.Message)

	svc.On("ListAssociated", mock.Anything, founder).Return(nil, startups.ErrStartupNotFound)
	w, _ = doRequest(r, http.MethodGet, "/startup/incubators", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
