package milestone

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterMilestonesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/milestones", middleWares...)

	g.POST("", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleProjectManager), handleCreateMilestone)
	g.GET("", authz.Authorize(authz.FamilyProject), handleQueryMilestones)

	g.POST("/:milestoneId/done", authz.Authorize(authz.FamilyMilestone,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader), handleCompleteMilestone)
	g.DELETE("/:milestoneId", authz.Authorize(authz.FamilyMilestone,
		domain.ProjectRoleProjectManager), handleDeleteMilestone)
}

func handleCreateMilestone(c *gin.Context) {
	creation := domain.MilestoneCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateMilestoneFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryMilestones(c *gin.Context) {
	records, err := QueryMilestonesFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCompleteMilestone(c *gin.Context) {
	record, err := CompleteMilestoneFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteMilestone(c *gin.Context) {
	if err := DeleteMilestoneFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
