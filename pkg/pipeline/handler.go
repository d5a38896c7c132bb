package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type PipelineHandler struct {
	service PipelineService
}

func NewPipelineHandler(service PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

func (h *PipelineHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/startup/investors", h.listEntries)
	router.GET("/startup/rounds", h.listRounds)
	router.POST("/startup/rounds", h.createRound)
}

// @Summary      List the caller's investor pipeline
// @Tags         startups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Entry}
// @Failure      403 {object} response.APIResponse
// @Router       /startup/investors [get]
func (h *PipelineHandler) listEntries(c *gin.Context) {
	list, err := h.service.ListEntries(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		startups.WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "investors fetched", list)
}

// @Summary      List the caller's fundraising rounds
// @Tags         startups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Round}
// @Failure      403 {object} response.APIResponse
// @Router       /startup/rounds [get]
func (h *PipelineHandler) listRounds(c *gin.Context) {
	list, err := h.service.ListRounds(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		startups.WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "rounds fetched", list)
}

// @Summary      Create a fundraising round
// @Description  Incubator commitments become COMMITTED pipeline entries and associate the incubators
// @Tags         startups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRoundRequest true "Round"
// @Success      201 {object} response.APIResponse{data=Round}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /startup/rounds [post]
func (h *PipelineHandler) createRound(c *gin.Context) {
	var req CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	round, err := h.service.CreateRound(c.Request.Context(), auth.MustPrincipal(c), req)
	if err != nil {
		startups.WriteError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "round created", round)
}
