package invoice

import (
	"net/http"

	"worksite/authz"
	"worksite/common"
	"worksite/domain"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterInvoicesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/invoices", middleWares...)

	g.POST("", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleProjectManager), handleCreateInvoice)
	g.GET("", authz.Authorize(authz.FamilyProject,
		domain.ProjectRoleProjectManager), handleQueryInvoices)

	g.PUT("/:invoiceId/status", authz.Authorize(authz.FamilyInvoice,
		domain.ProjectRoleProjectManager), handleUpdateInvoiceStatus)
	g.DELETE("/:invoiceId", authz.Authorize(authz.FamilyInvoice,
		domain.ProjectRoleProjectManager), handleDeleteInvoice)
}

func handleCreateInvoice(c *gin.Context) {
	creation := domain.InvoiceCreating{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := CreateInvoiceFunc(authz.FindAuthorizedContext(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryInvoices(c *gin.Context) {
	records, err := QueryInvoicesFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleUpdateInvoiceStatus(c *gin.Context) {
	updating := domain.InvoiceStatusUpdating{}
	err := c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := UpdateInvoiceStatusFunc(authz.FindAuthorizedContext(c), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteInvoice(c *gin.Context) {
	if err := DeleteInvoiceFunc(authz.FindAuthorizedContext(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
