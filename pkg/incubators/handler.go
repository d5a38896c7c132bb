package incubators

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type IncubatorHandler struct {
	service IncubatorService
}

func NewIncubatorHandler(service IncubatorService) *IncubatorHandler {
	return &IncubatorHandler{service: service}
}

func (h *IncubatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/onboarding/incubator", h.onboard)
	router.GET("/incubator/data", h.getMine)

	incubators := router.Group("/incubators")
	{
		incubators.GET("", h.list)
		incubators.GET("/list-all", h.listAll)
		incubators.GET("/:id", h.get)
		incubators.GET("/:id/data", h.get)
		incubators.PUT("/:id", h.update)
		incubators.GET("/:id/startups", h.startups)
	}

	members := router.Group("/incubator/members")
	{
		members.GET("", h.listMembers)
		members.POST("", h.createMember)
		members.GET("/:id", h.getMember)
		members.PUT("/:id", h.updateMember)
		members.DELETE("/:id", h.deleteMember)
	}

	router.GET("/startup/incubators", h.listAssociated)
	router.POST("/startup/incubators/associate", h.associate)
}

type onboardingResponse struct {
	Detail    string `json:"detail"`
	Incubator Detail `json:"incubator"`
}

type associateRequest struct {
	IncubatorIDs []int64 `json:"incubator_ids" binding:"required"`
}

// @Summary      Complete incubator profile
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileInput true "Profile"
// @Success      200 {object} response.APIResponse{data=onboardingResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /onboarding/incubator [post]
func (h *IncubatorHandler) onboard(c *gin.Context) {
	var in ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	d, err := h.service.Onboard(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "Onboarding completed successfully.", onboardingResponse{
		Detail:    "Onboarding completed successfully.",
		Incubator: d,
	})
}

// @Summary      Current incubator
// @Description  Returns the caller's incubator, creating it on first access
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=Detail}
// @Failure      403 {object} response.APIResponse
// @Router       /incubator/data [get]
func (h *IncubatorHandler) getMine(c *gin.Context) {
	d, err := h.service.GetMine(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubator fetched", d)
}

// @Summary      List incubators
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Incubator}
// @Router       /incubators [get]
func (h *IncubatorHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubators fetched", list)
}

// @Summary      List incubators available to the caller
// @Description  Startups do not see incubators they are already associated with
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Incubator}
// @Router       /incubators/list-all [get]
func (h *IncubatorHandler) listAll(c *gin.Context) {
	list, err := h.service.ListAvailable(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubators fetched", list)
}

// @Summary      Incubator detail
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Incubator ID"
// @Success      200 {object} response.APIResponse{data=Detail}
// @Failure      404 {object} response.APIResponse
// @Router       /incubators/{id} [get]
func (h *IncubatorHandler) get(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid incubator id", nil)
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubator fetched", d)
}

// @Summary      Update incubator
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Incubator ID"
// @Param        request body ProfileInput true "Profile"
// @Success      200 {object} response.APIResponse{data=Detail}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incubators/{id} [put]
func (h *IncubatorHandler) update(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid incubator id", nil)
		return
	}
	var in ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	d, err := h.service.Update(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubator updated", d)
}

// @Summary      Startups associated with an incubator
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Incubator ID"
// @Success      200 {object} response.APIResponse{data=[]startups.Startup}
// @Failure      403 {object} response.APIResponse
// @Router       /incubators/{id}/startups [get]
func (h *IncubatorHandler) startups(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid incubator id", nil)
		return
	}
	list, err := h.service.Startups(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "startups fetched", list)
}

// @Summary      List incubator members
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Member}
// @Router       /incubator/members [get]
func (h *IncubatorHandler) listMembers(c *gin.Context) {
	list, err := h.service.ListMembers(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "members fetched", list)
}

// @Summary      Add incubator member
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MemberInput true "Member"
// @Success      201 {object} response.APIResponse{data=Member}
// @Failure      400 {object} response.APIResponse
// @Router       /incubator/members [post]
func (h *IncubatorHandler) createMember(c *gin.Context) {
	var in MemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	m, err := h.service.CreateMember(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "member created", m)
}

// @Summary      Get incubator member
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Success      200 {object} response.APIResponse{data=Member}
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/members/{id} [get]
func (h *IncubatorHandler) getMember(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid member id", nil)
		return
	}
	m, err := h.service.GetMember(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "member fetched", m)
}

// @Summary      Update incubator member
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Param        request body MemberInput true "Member"
// @Success      200 {object} response.APIResponse{data=Member}
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/members/{id} [put]
func (h *IncubatorHandler) updateMember(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid member id", nil)
		return
	}
	var in MemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	m, err := h.service.UpdateMember(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "member updated", m)
}

// @Summary      Delete incubator member
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incubator/members/{id} [delete]
func (h *IncubatorHandler) deleteMember(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid member id", nil)
		return
	}
	if err := h.service.DeleteMember(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "member deleted", nil)
}

// @Summary      Incubators associated with the caller's startup
// @Tags         incubators
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Incubator}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /startup/incubators [get]
func (h *IncubatorHandler) listAssociated(c *gin.Context) {
	list, err := h.service.ListAssociated(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubators fetched", list)
}

// @Summary      Replace the caller's incubator associations
// @Tags         incubators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body associateRequest true "Incubator IDs"
// @Success      200 {object} response.APIResponse{data=[]Incubator}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /startup/incubators/associate [post]
func (h *IncubatorHandler) associate(c *gin.Context) {
	var req associateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	list, err := h.service.Associate(c.Request.Context(), auth.MustPrincipal(c), req.IncubatorIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "incubators associated", list)
}

func writeError(c *gin.Context, err error) {
	if fields, ok := validation.As(err); ok {
		response.SendValidationError(c, fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotIncubatorUser):
		response.SendAPIResponse(c, http.StatusForbidden, false, "This endpoint is only for incubator users.", nil)
	case errors.Is(err, ErrNotStartupUser):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Only startups can perform this action.", nil)
	case errors.Is(err, ErrNotOwner):
		response.SendAPIResponse(c, http.StatusForbidden, false, "You do not have permission to perform this action.", nil)
	case errors.Is(err, ErrForeignStartups):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Not authorized to view another incubator's startups.", nil)
	case errors.Is(err, ErrMembersOnly):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "Only incubators can add members.", nil)
	case errors.Is(err, ErrInvalidIncubatorID):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "One or more Incubator IDs are invalid.", nil)
	case errors.Is(err, ErrIncubatorNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Incubator not found.", nil)
	case errors.Is(err, ErrMemberNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Member not found.", nil)
	case errors.Is(err, startups.ErrStartupNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Startup profile not found.", nil)
	default:
		response.SendInternalError(c, err)
	}
}
