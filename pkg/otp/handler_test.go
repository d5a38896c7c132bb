package otp

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

	"github.com/aquilesbailo123/Raven-backend/pkg/response"
)

type mockOTPService struct {
	mock.Mock
}

func (m *mockOTPService) SendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockOTPService) VerifyEmail(ctx context.Context, email, code string) (VerifyResult, error) {
	args := m.Called(ctx, email, code)
	res, _ := args.Get(0).(VerifyResult)
	return res, args.Error(1)
}

func (m *mockOTPService) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func setupOTPRouter(svc OTPService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewOTPHandler(svc).RegisterRoutes(r.Group("/"))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOTPHandler_VerifyEmail(t *testing.T) {
	svc := new(mockOTPService)
	r := setupOTPRouter(svc)

	svc.On("VerifyEmail", mock.Anything, "a@raven.test", "123456").
		Return(VerifyResult{Detail: "Email verified successfully. You are now logged in.", AccessToken: "tok"}, nil).Once()
	w := post(r, "/auth/verify-email", `{"email":"a@raven.test","code":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "tok", resp.Data.(map[string]any)["access_token"])

	svc.On("VerifyEmail", mock.Anything, "a@raven.test", "000000").Return(VerifyResult{}, ErrInvalidCode).Once()
	w = post(r, "/auth/verify-email", `{"email":"a@raven.test","code":"000000"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/auth/verify-email", `{"email":"a@raven.test"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestOTPHandler_Resend(t *testing.T) {
	svc := new(mockOTPService)
	r := setupOTPRouter(svc)

	svc.On("ResendVerification", mock.Anything, "a@raven.test").Return(nil).Once()
	require.Equal(t, http.StatusOK, post(r, "/auth/resend-verification", `{"email":"a@raven.test"}`).Code)

	svc.On("ResendVerification", mock.Anything, "a@raven.test").Return(ErrResendCooldown).Once()
	require.Equal(t, http.StatusBadRequest, post(r, "/auth/resend-verification", `{"email":"a@raven.test"}`).Code)

	svc.On("ResendVerification", mock.Anything, "b@raven.test").Return(ErrTooManyRequests).Once()
	require.Equal(t, http.StatusTooManyRequests, post(r, "/auth/resend-verification", `{"email":"b@raven.test"}`).Code)

	svc.AssertExpectations(t)
}
