package http

import "github.com/gin-gonic/gin"

// Register mounts the pipeline routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/", h.Root)
	rg.POST("/projects", h.CreateProject)
	rg.GET("/projects", h.ListProjects)
	rg.GET("/projects/:id", h.GetProject)
	rg.GET("/projects/:id/logs", h.GetLogs)
	rg.GET("/projects/:id/dependency-graph", h.DependencyGraph)
	rg.POST("/projects/:id/analyze", h.Analyze)
	rg.POST("/projects/:id/design", h.Design)
	rg.POST("/projects/:id/approve-blueprint", h.ApproveBlueprint)
	rg.POST("/projects/:id/build", h.Build)
}
