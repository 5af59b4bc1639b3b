package handlers

import (
	"fmt"

	"github.com/crewdeck/backend/internal/middleware"
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	exportService  *services.ExportService
}

func NewProjectHandler(projectService *services.ProjectService, exportService *services.ExportService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		exportService:  exportService,
	}
}

// List returns all projects of a region
// GET /api/projects/:region
func (h *ProjectHandler) List(c *gin.Context) {
	region := c.Param("region")

	projects, err := h.projectService.List(region)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// Get returns one project by id, scoped to its region
// GET /api/projects/:region/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Param("region"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Create books a new project in a region
// POST /api/projects/:region
func (h *ProjectHandler) Create(c *gin.Context) {
	region := c.Param("region")

	var req services.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(region, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "create",
		fmt.Sprintf("created project %s in %s", project.ID, region),
		&userID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Created(c, project)
}

// Update replaces a project
// PUT /api/projects/:region/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	region := c.Param("region")
	id := c.Param("id")

	var req services.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(region, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "update",
		fmt.Sprintf("updated project %s in %s", id, region),
		&userID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, project)
}

// Delete removes a project
// DELETE /api/projects/:region/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	region := c.Param("region")
	id := c.Param("id")

	if err := h.projectService.Delete(region, id); err != nil {
		response.Error(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "delete",
		fmt.Sprintf("deleted project %s in %s", id, region),
		&userID, c.ClientIP(), c.Request.UserAgent(), nil)

	response.Success(c, gin.H{"message": "project deleted successfully"})
}

// Export streams a region's projects as a CSV download
// GET /api/projects/:region/export
func (h *ProjectHandler) Export(c *gin.Context) {
	region := c.Param("region")

	filename := fmt.Sprintf("projects_%s.csv", region)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exportService.WriteAll(c.Writer, region); err != nil {
		response.Error(c, err)
		return
	}
}
