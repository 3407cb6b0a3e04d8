package plan

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterPlansHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/plans", middleWares...)

	// plan creation resolves via the target project carried in the body
	g.POST("", authz.Authorize(authz.FamilyProject, domain.ProjectRoleProjectManager), handleCreatePlan)
	g.GET("", authz.Authorize(authz.FamilyProject), handleQueryPlans)

	g.DELETE("/:planId",
		authz.Authorize(authz.FamilyPlan, domain.ProjectRoleProjectManager), handleDeletePlan)

	g.POST("/:planId/versions",
		authz.Authorize(authz.FamilyPlan, domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader),
		handleCreatePlanVersion)
	g.GET("/:planId/versions", authz.Authorize(authz.FamilyPlan), handleQueryPlanVersions)
}

func handleCreatePlan(c *gin.Context) {
	creation := domain.PlanCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreatePlanFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryPlans(c *gin.Context) {
	records, err := QueryPlansFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDeletePlan(c *gin.Context) {
	if err := DeletePlanFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleCreatePlanVersion(c *gin.Context) {
	creation := domain.PlanVersionCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreatePlanVersionFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryPlanVersions(c *gin.Context) {
	records, err := QueryPlanVersionsFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
