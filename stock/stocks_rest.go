package stock

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterStocksHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/stock-items", middleWares...)

	g.POST("", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader), handleCreateStockItem)
	g.GET("", authz.Authorize(authz.FamilyProject), handleQueryStockItems)

	g.POST("/:stockItemId/movements", authz.Authorize(authz.FamilyStockItem,
		domain.ProjectRoleProjectManager, domain.ProjectRoleTeamLeader, domain.ProjectRoleWorker),
		handleApplyMovement)
	g.DELETE("/:stockItemId", authz.Authorize(authz.FamilyStockItem,
		domain.ProjectRoleProjectManager), handleDeleteStockItem)
}

func handleCreateStockItem(c *gin.Context) {
	creation := domain.StockItemCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateStockItemFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryStockItems(c *gin.Context) {
	records, err := QueryStockItemsFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleApplyMovement(c *gin.Context) {
	movement := domain.StockMovement{}
	err := c.ShouldBindBodyWith(&movement, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := ApplyMovementFunc(authz.FindAuthorizedContext(c), &movement, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteStockItem(c *gin.Context) {
	if err := DeleteStockItemFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
