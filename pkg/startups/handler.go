package startups

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type StartupHandler struct {
	service StartupService
}

func NewStartupHandler(service StartupService) *StartupHandler {
	return &StartupHandler{service: service}
}

func (h *StartupHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/onboarding/startup", h.getOnboarding)
	router.POST("/onboarding/startup", h.submitOnboarding)
	router.GET("/startup/data", h.getStartupData)
}

type onboardingRequest struct {
	CompanyName string  `json:"company_name"`
	Industry    string  `json:"industry"`
	LogoURL     *string `json:"logo_url"`
}

// @Summary      Startup onboarding status
// @Description  Returns the caller's startup, creating it on first access
// @Tags         startups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=OnboardingStatus}
// @Failure      403 {object} response.APIResponse
// @Router       /onboarding/startup [get]
func (h *StartupHandler) getOnboarding(c *gin.Context) {
	st, err := h.service.GetOrCreate(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "startup fetched", OnboardingStatus{
		Startup:              st,
		IsOnboardingComplete: st.OnboardingCompleted,
	})
}

// @Summary      Submit startup company profile
// @Tags         startups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body onboardingRequest true "Company profile"
// @Success      200 {object} response.APIResponse{data=OnboardingStatus}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /onboarding/startup [post]
func (h *StartupHandler) submitOnboarding(c *gin.Context) {
	var req onboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}

	st, err := h.service.SubmitProfile(c.Request.Context(), auth.MustPrincipal(c), req.CompanyName, req.Industry, req.LogoURL)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "Onboarding completed successfully.", OnboardingStatus{
		Startup:              st,
		IsOnboardingComplete: st.OnboardingCompleted,
	})
}

// @Summary      Startup data
// @Tags         startups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=Startup}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /startup/data [get]
func (h *StartupHandler) getStartupData(c *gin.Context) {
	st, err := h.service.GetMine(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "startup fetched", st)
}

// WriteError maps startup errors onto HTTP statuses. Other packages reuse it
// for errors that bubble up from startup lookups.
func WriteError(c *gin.Context, err error) {
	if fields, ok := validation.As(err); ok {
		response.SendValidationError(c, fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotStartupUser):
		response.SendAPIResponse(c, http.StatusForbidden, false, "This endpoint is only for startup users.", nil)
	case errors.Is(err, ErrStartupNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Startup not found.", nil)
	default:
		response.SendInternalError(c, err)
	}
}
