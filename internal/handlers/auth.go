package handlers

import (
	"github.com/crewdeck/backend/internal/config"
	"github.com/crewdeck/backend/internal/middleware"
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup registers a new viewer account
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("auth", "signup", "new account "+user.Username,
		&user.ID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Created(c, user)
}

// Login checks credentials and issues a token
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		services.LogWarning("auth", "login", "failed login for "+req.Username,
			nil, c.ClientIP(), c.Request.UserAgent(), nil)
		response.Error(c, err)
		return
	}

	services.LogInfo("auth", "login", "login "+req.Username,
		&resp.User.ID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, resp)
}

// Logout acknowledges a client-side token removal
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	services.LogInfo("auth", "logout", "logout "+middleware.GetUsername(c),
		&userID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetCurrentUser returns the authenticated account
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword updates the authenticated account's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password changed successfully"})
}

// CreateAdminIfNotExists provisions the bootstrap admin account.
func (h *AuthHandler) CreateAdminIfNotExists(cfg config.AdminConfig) error {
	return h.authService.CreateAdminIfNotExists(cfg)
}
