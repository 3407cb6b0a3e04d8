package project

import (
	"net/http"

	"worksite/authz"
	"worksite/bizerror"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterProjectsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/projects", middleWares...)

	g.POST("", handleCreateProject)
	g.GET("", handleQueryProjects)

	g.GET("/:projectId", authz.Authorize(authz.FamilyProject), handleProjectDetail)
	g.PUT("/:projectId",
		authz.Authorize(authz.FamilyProject, domain.ProjectRoleProjectManager), handleUpdateProject)
	g.DELETE("/:projectId",
		authz.Authorize(authz.FamilyProject, domain.ProjectRoleProjectManager), handleDeleteProject)

	g.POST("/:projectId/members",
		authz.Authorize(authz.FamilyProject, domain.ProjectRoleProjectManager), handleAddMember)
	g.DELETE("/:projectId/members/:memberId",
		authz.Authorize(authz.FamilyProject, domain.ProjectRoleProjectManager), handleRemoveMember)
}

func handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateProjectFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryProjects(c *gin.Context) {
	records, err := QueryProjectsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleProjectDetail(c *gin.Context) {
	record, err := DetailProjectFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateProject(c *gin.Context) {
	updating := domain.ProjectUpdating{}
	err := c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := UpdateProjectFunc(authz.FindAuthorizedContext(c), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteProject(c *gin.Context) {
	if err := DeleteProjectFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleAddMember(c *gin.Context) {
	creation := domain.ProjectMemberCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	if err := AddMemberFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}

func handleRemoveMember(c *gin.Context) {
	memberID, err := types.ParseID(c.Param("memberId"))
	if err != nil {
		panic(bizerror.ErrMissingID)
	}

	if err := RemoveMemberFunc(authz.FindAuthorizedContext(c), memberID, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
