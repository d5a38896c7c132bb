package challenges

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type ChallengeHandler struct {
	service ChallengeService
}

func NewChallengeHandler(service ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup) {
	challenges := router.Group("/challenges")
	{
		challenges.GET("", h.list)
		challenges.POST("", h.create)
		challenges.GET("/:id", h.get)
		challenges.PUT("/:id", h.update)
		challenges.DELETE("/:id", h.delete)
		challenges.POST("/:id/close", h.close)
	}

	applications := router.Group("/challenge-applications")
	{
		applications.GET("", h.listApplications)
		applications.POST("", h.apply)
		applications.GET("/:id", h.getApplication)
		applications.DELETE("/:id", h.deleteApplication)
	}
}

type closeResponse struct {
	Status string `json:"status"`
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrChallengeNotFound), errors.Is(err, ErrApplicationNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Not found.", nil)
	case errors.Is(err, ErrNotOwner):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Not authorized", nil)
	case errors.Is(err, ErrAlreadyApplied):
		response.SendAPIResponse(c, http.StatusConflict, false, "You have already applied to this challenge.", nil)
	case errors.Is(err, ErrIncubatorsOnly):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "Only incubators can create challenges.", nil)
	case errors.Is(err, ErrStartupsOnly):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "Only startups can apply to challenges.", nil)
	case errors.Is(err, ErrConcluded):
		response.SendAPIResponse(c, http.StatusBadRequest, false, "This challenge is no longer accepting applications.", nil)
	default:
		startups.WriteError(c, err)
	}
}

// @Summary      List visible challenges
// @Description  Incubators see their own challenges, startups see open ones
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Challenge}
// @Router       /challenges [get]
func (h *ChallengeHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "challenges fetched", list)
}

// @Summary      Launch a challenge
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChallengeInput true "Challenge"
// @Success      201 {object} response.APIResponse{data=Challenge}
// @Failure      400 {object} response.APIResponse
// @Router       /challenges [post]
func (h *ChallengeHandler) create(c *gin.Context) {
	var in ChallengeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	ch, err := h.service.Create(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "challenge created", ch)
}

// @Summary      Get a challenge
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Challenge ID"
// @Success      200 {object} response.APIResponse{data=Challenge}
// @Failure      404 {object} response.APIResponse
// @Router       /challenges/{id} [get]
func (h *ChallengeHandler) get(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrChallengeNotFound)
		return
	}
	ch, err := h.service.Get(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "challenge fetched", ch)
}

// @Summary      Update a challenge
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Challenge ID"
// @Param        request body ChallengeInput true "Challenge"
// @Success      200 {object} response.APIResponse{data=Challenge}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /challenges/{id} [put]
func (h *ChallengeHandler) update(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrChallengeNotFound)
		return
	}
	var in ChallengeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	ch, err := h.service.Update(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "challenge updated", ch)
}

// @Summary      Delete a challenge
// @Tags         challenges
// @Security     BearerAuth
// @Param        id path int true "Challenge ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /challenges/{id} [delete]
func (h *ChallengeHandler) delete(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrChallengeNotFound)
		return
	}
	if err := h.service.Delete(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Conclude a challenge
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Challenge ID"
// @Success      200 {object} response.APIResponse{data=closeResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /challenges/{id}/close [post]
func (h *ChallengeHandler) close(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrChallengeNotFound)
		return
	}
	if err := h.service.Close(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "challenge closed", closeResponse{Status: "Challenge concluded"})
}

// @Summary      List visible challenge applications
// @Description  Startups see their own applications, incubators those sent to their challenges
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Application}
// @Router       /challenge-applications [get]
func (h *ChallengeHandler) listApplications(c *gin.Context) {
	list, err := h.service.ListApplications(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "applications fetched", list)
}

// @Summary      Apply to a challenge
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ApplicationInput true "Application"
// @Success      201 {object} response.APIResponse{data=Application}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /challenge-applications [post]
func (h *ChallengeHandler) apply(c *gin.Context) {
	var in ApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	app, err := h.service.Apply(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "application submitted", app)
}

// @Summary      Get a challenge application
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Application ID"
// @Success      200 {object} response.APIResponse{data=Application}
// @Failure      404 {object} response.APIResponse
// @Router       /challenge-applications/{id} [get]
func (h *ChallengeHandler) getApplication(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrApplicationNotFound)
		return
	}
	app, err := h.service.GetApplication(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "application fetched", app)
}

// @Summary      Withdraw a challenge application
// @Tags         challenges
// @Security     BearerAuth
// @Param        id path int true "Application ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /challenge-applications/{id} [delete]
func (h *ChallengeHandler) deleteApplication(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		writeError(c, ErrApplicationNotFound)
		return
	}
	if err := h.service.DeleteApplication(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
