package handlers

import (
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(logService *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{logService: logService}
}

// List returns paginated audit entries
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
