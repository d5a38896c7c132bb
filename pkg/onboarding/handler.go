package onboarding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/financials"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type OnboardingHandler struct {
	service OnboardingService
}

func NewOnboardingHandler(service OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

func (h *OnboardingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/startup/complete-onboarding", h.complete)
}

// @Summary      Complete the onboarding wizard
// @Description  Replaces the startup's evidences, financial periods and investor pipeline in one transaction
// @Tags         startups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body WizardRequest true "Wizard data"
// @Success      201 {object} response.APIResponse{data=Result}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /startup/complete-onboarding [post]
func (h *OnboardingHandler) complete(c *gin.Context) {
	var req WizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	res, err := h.service.Complete(c.Request.Context(), auth.MustPrincipal(c), req)
	if err != nil {
		if errors.Is(err, financials.ErrDuplicatePeriod) {
			response.SendValidationError(c, validation.Errors{"financial_data": "Duplicate period dates found in financial data"})
			return
		}
		startups.WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, res.Detail, res)
}
