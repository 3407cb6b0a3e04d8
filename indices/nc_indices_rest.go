package indices

import (
	"net/http"

	"worksite/authz"
	"worksite/session"

	"github.com/gin-gonic/gin"
)

func RegisterNcSearchHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/nc-search", middleWares...)

	g.GET("", authz.Authorize(authz.FamilyProject), handleSearchNcs)
}

func handleSearchNcs(c *gin.Context) {
	docs, err := SearchNcsFunc(authz.FindAuthorizedContext(c), c.Query("query"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, docs)
}
