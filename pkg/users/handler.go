package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes mounts the anonymous auth endpoints on public and the
// account endpoints on protected.
func (h *UserHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/registration", h.register)
	public.POST("/auth/login", h.login)

	protected.GET("/auth/user", h.currentUser)
	protected.GET("/auth/login-history", h.loginHistory)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"user_type" binding:"omitempty,oneof=startup incubator"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Register a new account
// @Description  Creates a startup or incubator account and emails a verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body registerRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=User}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /auth/registration [post]
func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.UserType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "Verification e-mail sent.", u)
}

// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=LoginResult}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendValidationError(c, validation.FromBinding(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "login successful", res)
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=User}
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /auth/user [get]
func (h *UserHandler) currentUser(c *gin.Context) {
	p := auth.MustPrincipal(c)
	u, err := h.service.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "user fetched", u)
}

// @Summary      Login history of the current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]LoginRecord}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login-history [get]
func (h *UserHandler) loginHistory(c *gin.Context) {
	p := auth.MustPrincipal(c)
	records, err := h.service.LoginHistory(c.Request.Context(), p.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "login history fetched", records)
}

func (h *UserHandler) writeError(c *gin.Context, err error) {
	if fields, ok := validation.As(err); ok {
		response.SendValidationError(c, fields)
		return
	}
	switch {
	case errors.Is(err, ErrEmailTaken):
		response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, ErrInvalidCredentials):
		response.SendAPIResponse(c, http.StatusUnauthorized, false, err.Error(), nil)
	case errors.Is(err, ErrActionsFrozen), errors.Is(err, ErrInactive):
		response.SendAPIResponse(c, http.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, ErrUserNotFound):
		response.SendAPIResponse(c, http.StatusNotFound, false, "user not found", nil)
	default:
		response.SendInternalError(c, err)
	}
}
