package tool

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterToolsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tools", middleWares...)

	g.POST("", handleCreateTool)
	g.GET("", handleQueryTools)

	// assignment is authorized against the TARGET project from the body:
	// an unassigned tool has no project of its own to resolve through
	g.POST("/assignments", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleProjectManager), handleAssignTool)
	// history listing is scoped by the projectId query param
	g.GET("/assignments", authz.Authorize(authz.FamilyProject), handleQueryAssignments)

	// return and maintenance resolve through the tool's active assignment
	g.POST("/:toolId/return", authz.Authorize(authz.FamilyTool,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader), handleReturnTool)
	g.POST("/:toolId/maintenances", authz.Authorize(authz.FamilyTool,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader), handleCreateMaintenance)
	g.GET("/:toolId/maintenances", authz.Authorize(authz.FamilyTool), handleQueryMaintenances)

	m := r.Group("/v1/maintenances", middleWares...)
	m.POST("/:maintenanceId/done", authz.Authorize(authz.FamilyMaintenance,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader), handleDoneMaintenance)
}

func handleCreateTool(c *gin.Context) {
	creation := domain.ToolCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateToolFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryTools(c *gin.Context) {
	records, err := QueryToolsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleAssignTool(c *gin.Context) {
	assigning := domain.ToolAssigning{}
	err := c.ShouldBindBodyWith(&assigning, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := AssignToolFunc(authz.FindAuthorizedContext(c), &assigning, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryAssignments(c *gin.Context) {
	records, err := QueryAssignmentsFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleReturnTool(c *gin.Context) {
	record, err := ReturnToolFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCreateMaintenance(c *gin.Context) {
	creation := domain.ToolMaintenanceCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateMaintenanceFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryMaintenances(c *gin.Context) {
	records, err := QueryMaintenancesFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDoneMaintenance(c *gin.Context) {
	record, err := DoneMaintenanceFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
