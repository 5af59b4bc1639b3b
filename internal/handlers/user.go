package handlers

import (
	"fmt"
	"strconv"

	"github.com/crewdeck/backend/internal/middleware"
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler covers the user-management surface. Every route behind it
// requires the manage-users capability.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns all accounts
// GET /api/user-management/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// ListRoles returns the role table
// GET /api/user-management/roles
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roles)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole reassigns an account's role
// PUT /api/user-management/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateRole(uint(id), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	actorID := middleware.GetUserID(c)
	services.LogInfo("user", "update_role",
		fmt.Sprintf("set role of %s to %s", user.Username, req.Role),
		&actorID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, user)
}

type updateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateStatus enables or disables an account
// PUT /api/user-management/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateStatus(uint(id), *req.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}

	actorID := middleware.GetUserID(c)
	services.LogInfo("user", "update_status",
		fmt.Sprintf("set active=%t for %s", *req.IsActive, user.Username),
		&actorID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, user)
}
