package financials

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
)

type FinancialHandler struct {
	service FinancialService
}

func NewFinancialHandler(service FinancialService) *FinancialHandler {
	return &FinancialHandler{service: service}
}

func (h *FinancialHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/startup/financial-data", h.list)
}

// @Summary      List the caller's financial periods
// @Tags         startups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]FinancialInput}
// @Failure      403 {object} response.APIResponse
// @Router       /startup/financial-data [get]
func (h *FinancialHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		startups.WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "financial data fetched", list)
}
