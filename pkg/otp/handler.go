package otp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type OTPHandler struct {
	service OTPService
}

func NewOTPHandler(service OTPService) *OTPHandler {
	return &OTPHandler{service: service}
}

func (h *OTPHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/verify-email", h.verifyEmail)
	router.POST("/auth/resend-verification", h.resendVerification)
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary      Verify e-mail
// @Description  Checks the emailed code and logs the user in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body verifyEmailRequest true "Email and code"
// @Success      200 {object} response.APIResponse{data=VerifyResult}
// @Failure      400 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /auth/verify-email [post]
func (h *OTPHandler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}

	res, err := h.service.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, res.Detail, res)
}

// @Summary      Resend verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body resendRequest true "Account e-mail"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      429 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /auth/resend-verification [post]
func (h *OTPHandler) resendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "Verification e-mail sent.", nil)
}

func (h *OTPHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTooManyRequests):
		response.SendAPIResponse(c, http.StatusTooManyRequests, false, err.Error(), nil)
	case errors.Is(err, ErrOTPNotFound),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrUnknownEmail),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrResendCooldown),
		errors.Is(err, ErrInactive):
		response.SendAPIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
	default:
		response.SendInternalError(c, err)
	}
}
