package nonconformity

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterNonConformitiesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/non-conformities", middleWares...)

	g.POST("", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleQuality, domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader),
		handleCreateNc)
	g.GET("", authz.Authorize(authz.FamilyProject), handleQueryNcs)

	g.GET("/:ncId", authz.Authorize(authz.FamilyNC), handleDetailNc)
	g.POST("/:ncId/transitions", authz.Authorize(authz.FamilyNC,
		domain.ProjectRoleQuality, domain.ProjectRoleTeamLeader), handleTransitionNc)
	g.POST("/:ncId/assignment", authz.Authorize(authz.FamilyNC,
		domain.ProjectRoleQuality, domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader),
		handleAssignNc)
	g.DELETE("/:ncId", authz.Authorize(authz.FamilyNC,
		domain.ProjectRoleQuality, domain.ProjectRoleProjectManager), handleDeleteNc)
}

func handleCreateNc(c *gin.Context) {
	creation := domain.NonConformityCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateNcFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryNcs(c *gin.Context) {
	records, err := QueryNcsFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailNc(c *gin.Context) {
	record, err := DetailNcFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleTransitionNc(c *gin.Context) {
	req := domain.NcTransitionRequest{}
	err := c.ShouldBindBodyWith(&req, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := TransitionNcFunc(authz.FindAuthorizedContext(c), &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleAssignNc(c *gin.Context) {
	req := domain.NcAssignmentRequest{}
	err := c.ShouldBindBodyWith(&req, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := AssignNcFunc(authz.FindAuthorizedContext(c), &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteNc(c *gin.Context) {
	if err := DeleteNcFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
