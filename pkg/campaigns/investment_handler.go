package campaigns

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type InvestmentHandler struct {
	service InvestmentService
}

func NewInvestmentHandler(service InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{service: service}
}

func (h *InvestmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	investments := router.Group("/incubator/investments")
	{
		investments.GET("", h.list)
		investments.GET("/:id", h.get)
		investments.PATCH("/:id", h.updateStatus)
		investments.POST("/:id/commit", h.commit)
	}
	router.GET("/portfolio/campaigns", h.portfolio)
}

// @Summary      List the caller's investments
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Investment}
// @Router       /incubator/investments [get]
func (h *InvestmentHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "investments fetched", list)
}

// @Summary      Investment detail
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Investment ID"
// @Success      200 {object} response.APIResponse{data=Investment}
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/investments/{id} [get]
func (h *InvestmentHandler) get(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrInvestmentNotFound)
		return
	}
	inv, err := h.service.Get(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "investment fetched", inv)
}

// @Summary      Change an investment's status
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Investment ID"
// @Param        request body InvestmentStatusInput true "Status"
// @Success      200 {object} response.APIResponse{data=Investment}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/investments/{id} [patch]
func (h *InvestmentHandler) updateStatus(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrInvestmentNotFound)
		return
	}
	var in InvestmentStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	inv, err := h.service.UpdateStatus(c.Request.Context(), auth.MustPrincipal(c), id, in.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "investment updated", inv)
}

// @Summary      Commit to an investment
// @Description  Sets the status to COMMITTED and notifies the startup
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Investment ID"
// @Success      200 {object} response.APIResponse{data=Investment}
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/investments/{id}/commit [post]
func (h *InvestmentHandler) commit(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrInvestmentNotFound)
		return
	}
	inv, err := h.service.Commit(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "investment committed", inv)
}

// @Summary      Portfolio campaigns
// @Description  Every associated startup with its campaign, or null
// @Tags         portfolio
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]PortfolioCampaign}
// @Failure      403 {object} response.APIResponse
// @Router       /portfolio/campaigns [get]
func (h *InvestmentHandler) portfolio(c *gin.Context) {
	list, err := h.service.Portfolio(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "portfolio campaigns fetched", list)
}
