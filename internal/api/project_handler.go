package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projektchat/internal/domain"
	"projektchat/internal/service"
)

// ProjectHandler handles project API requests
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// RegisterRoutes registers project routes
func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/projects", h.Create)
	r.GET("/projects", h.List)
	r.GET("/projects/:project_id", h.Get)
	r.PUT("/projects/:project_id", h.Update)
	r.DELETE("/projects/:project_id", h.Delete)
	r.POST("/projects/:project_id/duplicate", h.Duplicate)
	r.GET("/projects/:project_id/export", h.Export)
	r.GET("/stats", h.Stats)
}

// Create creates a new project
func (h *ProjectHandler) Create(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(&req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// List lists all active projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// Get retrieves one project
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Param("project_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Update updates a project
func (h *ProjectHandler) Update(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Update(c.Param("project_id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Delete soft-deletes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Param("project_id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Duplicate copies a project with its sessions, messages and documents
func (h *ProjectHandler) Duplicate(c *gin.Context) {
	var req struct {
		Name string `json:"name,omitempty"`
	}
	// An empty body is fine; the copy then gets a derived name.
	c.ShouldBindJSON(&req)

	project, err := h.projects.Duplicate(c.Param("project_id"), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Export returns a full JSON bundle of a project
func (h *ProjectHandler) Export(c *gin.Context) {
	export, err := h.projects.Export(c.Param("project_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// Stats returns application-wide statistics
func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projects.Stats()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
