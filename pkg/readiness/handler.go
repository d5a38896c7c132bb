package readiness

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/startups"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type ReadinessHandler struct {
	service ReadinessService
}

func NewReadinessHandler(service ReadinessService) *ReadinessHandler {
	return &ReadinessHandler{service: service}
}

func (h *ReadinessHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/startup/evidences", h.listEvidences)

	levels := router.Group("/startup/readiness-levels")
	{
		levels.GET("", h.listLevels)
		levels.POST("", h.createLevel)
		levels.GET("/:id", h.getLevel)
		levels.PUT("/:id", h.updateLevel)
		levels.DELETE("/:id", h.deleteLevel)
	}

	portfolio := router.Group("/portfolio")
	{
		portfolio.GET("/evidences", h.listPortfolioEvidences)
		portfolio.GET("/evidences/:id", h.getPortfolioEvidence)
		portfolio.POST("/evidences/:id/review", h.review)
		portfolio.GET("/readiness-levels", h.listPortfolioLevels)
	}
}

// @Summary      List the caller's evidences
// @Tags         readiness
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Evidence}
// @Failure      403 {object} response.APIResponse
// @Router       /startup/evidences [get]
func (h *ReadinessHandler) listEvidences(c *gin.Context) {
	list, err := h.service.ListEvidences(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "evidences fetched", list)
}

// @Summary      List the caller's readiness levels
// @Tags         readiness
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]Level}
// @Router       /startup/readiness-levels [get]
func (h *ReadinessHandler) listLevels(c *gin.Context) {
	list, err := h.service.ListLevels(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "readiness levels fetched", list)
}

// @Summary      Create readiness level
// @Tags         readiness
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body LevelInput true "Level"
// @Success      201 {object} response.APIResponse{data=Level}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /startup/readiness-levels [post]
func (h *ReadinessHandler) createLevel(c *gin.Context) {
	var in LevelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	l, err := h.service.CreateLevel(c.Request.Context(), auth.MustPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "readiness level created", l)
}

// @Summary      Get readiness level
// @Tags         readiness
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Level ID"
// @Success      200 {object} response.APIResponse{data=Level}
// @Failure      404 {object} response.APIResponse
// @Router       /startup/readiness-levels/{id} [get]
func (h *ReadinessHandler) getLevel(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid level id", nil)
		return
	}
	l, err := h.service.GetLevel(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "readiness level fetched", l)
}

// @Summary      Update readiness level
// @Tags         readiness
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Level ID"
// @Param        request body LevelInput true "Level"
// @Success      200 {object} response.APIResponse{data=Level}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /startup/readiness-levels/{id} [put]
func (h *ReadinessHandler) updateLevel(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid level id", nil)
		return
	}
	var in LevelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	l, err := h.service.UpdateLevel(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "readiness level updated", l)
}

// @Summary      Delete readiness level
// @Tags         readiness
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Level ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /startup/readiness-levels/{id} [delete]
func (h *ReadinessHandler) deleteLevel(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid level id", nil)
		return
	}
	if err := h.service.DeleteLevel(c.Request.Context(), auth.MustPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "readiness level deleted", nil)
}

// @Summary      Evidences of portfolio startups
// @Tags         portfolio
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]PortfolioEvidence}
// @Router       /portfolio/evidences [get]
func (h *ReadinessHandler) listPortfolioEvidences(c *gin.Context) {
	list, err := h.service.ListPortfolioEvidences(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "evidences fetched", list)
}

// @Summary      Portfolio evidence detail
// @Tags         portfolio
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Evidence ID"
// @Success      200 {object} response.APIResponse{data=PortfolioEvidence}
// @Failure      404 {object} response.APIResponse
// @Router       /portfolio/evidences/{id} [get]
func (h *ReadinessHandler) getPortfolioEvidence(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid evidence id", nil)
		return
	}
	ev, err := h.service.GetPortfolioEvidence(c.Request.Context(), auth.MustPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "evidence fetched", ev)
}

// @Summary      Review a portfolio evidence
// @Description  Approves or rejects an evidence and recomputes the startup's TRL and CRL
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Evidence ID"
// @Param        request body ReviewInput true "Review"
// @Success      200 {object} response.APIResponse{data=PortfolioEvidence}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /portfolio/evidences/{id}/review [post]
func (h *ReadinessHandler) review(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid evidence id", nil)
		return
	}
	var in ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}
	ev, err := h.service.Review(c.Request.Context(), auth.MustPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "evidence reviewed", ev)
}

// @Summary      Readiness levels of portfolio startups
// @Tags         portfolio
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]PortfolioLevel}
// @Router       /portfolio/readiness-levels [get]
func (h *ReadinessHandler) listPortfolioLevels(c *gin.Context) {
	list, err := h.service.ListPortfolioLevels(c.Request.Context(), auth.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "readiness levels fetched", list)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotIncubatorUser):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Only incubators can access this endpoint.", nil)
	case errors.Is(err, ErrNotInPortfolio):
		response.SendAPIResponse(c, http.StatusForbidden, false, "Not authorized.", nil)
	case errors.Is(err, ErrEvidenceNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Evidence not found.", nil)
	case errors.Is(err, ErrLevelNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "Readiness level not found.", nil)
	case errors.Is(err, ErrDuplicateLevel):
		response.SendAPIResponse(c, http.StatusConflict, false, "A readiness level with this type and level already exists.", nil)
	default:
		startups.WriteError(c, err)
	}
}
