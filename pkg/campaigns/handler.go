package campaigns

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type CampaignHandler struct {
	service CampaignService
}

func NewCampaignHandler(service CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup) {
	campaigns := router.Group("/campaigns")
	{
		campaigns.GET("", h.list)
		campaigns.POST("", h.create)
		campaigns.GET("/my-campaign", h.mine)
		campaigns.GET("/:id", h.get)
		campaigns.PUT("/:id", h.update)
		campaigns.PATCH("/:id", h.update)
		campaigns.DELETE("/:id", h.delete)
		campaigns.POST("/:id/submit", h.submit)
		campaigns.GET("/:id/financial-sheet", h.getSheet)
		campaigns.PUT("/:id/financial-sheet", h.updateSheet)
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Not found.", nil)
	case errors.Is(err, ErrInvestmentNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Not found.", nil)
	case errors.Is(err, ErrCampaignExists):
		response.SendAPIResponse(c, http.StatusConflict, false, "A campaign already exists for this startup.", nil)
	case errors.Is(err, ErrAlreadySubmitted):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "This campaign has already been submitted.", nil)
	case errors.Is(err, ErrUnknownIncubator), errors.Is(err, ErrUnknownRound), errors.Is(err, ErrUnknownInvestor):
		response.SendValidationError(c, validation.Errors{"rounds": "Invalid pk - object does not exist."})
	case errors.Is(err, ErrNotIncubatorUser):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Only incubators can access this endpoint.", nil)
	default:
		startups.WriteError(c, err)
	}
}

func bindCampaign(c *gin.Context) (CampaignInput, bool) {
	var in CampaignInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return CampaignInput{}, false
	}
	return in, true
}

// @Summary      List the caller's campaigns
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Campaign}
// @Router       /campaigns [get]
func (h *CampaignHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "campaigns fetched", list)
}

// @Summary      Create a campaign
// @Description  Nested sections in the payload are stored in the same transaction
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CampaignInput true "Campaign"
// @Success      201 {object} response.APIResponse{data=Campaign}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /campaigns [post]
func (h *CampaignHandler) create(c *gin.Context) {
	in, ok := bindCampaign(c)
	if !ok {
		return
	}
	campaign, err := h.service.Create(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "campaign created", campaign)
}

// @Summary      Current campaign
// @Description  Returns the caller's campaign, creating a draft on first access
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=Campaign}
// @Failure      403 {object} response.APIResponse
// @Router       /campaigns/my-campaign [get]
func (h *CampaignHandler) mine(c *gin.Context) {
	campaign, err := h.service.Mine(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "campaign fetched", campaign)
}

// @Summary      Campaign detail
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Success      200 {object} response.APIResponse{data=Campaign}
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id} [get]
func (h *CampaignHandler) get(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	campaign, err := h.service.Get(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "campaign fetched", campaign)
}

// @Summary      Update a campaign
// @Description  Collections present in the payload replace the stored ones; absent ones are kept
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Param        request body CampaignInput true "Campaign"
// @Success      200 {object} response.APIResponse{data=Campaign}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id} [put]
func (h *CampaignHandler) update(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	in, ok := bindCampaign(c)
	if !ok {
		return
	}
	campaign, err := h.service.Update(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "campaign updated", campaign)
}

// @Summary      Delete a campaign
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id} [delete]
func (h *CampaignHandler) delete(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	if err := h.service.Delete(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Submit a campaign
// @Description  Only DRAFT campaigns can be submitted; associated incubators are notified
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Success      200 {object} response.APIResponse{data=Campaign}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id}/submit [post]
func (h *CampaignHandler) submit(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	campaign, err := h.service.Submit(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "campaign submitted", campaign)
}

// @Summary      Campaign financial sheet
// @Tags         campaigns
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Success      200 {object} response.APIResponse{data=FinancialSheet}
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id}/financial-sheet [get]
func (h *CampaignHandler) getSheet(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	sheet, err := h.service.GetSheet(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "financial sheet fetched", sheet)
}

// @Summary      Replace the campaign financial sheet
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Campaign ID"
// @Param        request body SheetInput true "Sheet"
// @Success      200 {object} response.APIResponse{data=FinancialSheet}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /campaigns/{id}/financial-sheet [put]
func (h *CampaignHandler) updateSheet(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrCampaignNotFound)
		return
	}
	var in SheetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	sheet, err := h.service.UpdateSheet(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "financial sheet updated", sheet)
}
