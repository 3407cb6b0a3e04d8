package notification

import (
	"net/http"

	"worksite/bizerror"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterNotificationsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/notifications", middleWares...)

	g.GET("", handleQueryNotifications)
	g.PUT("/:notificationId/read", handleMarkRead)
}

func handleQueryNotifications(c *gin.Context) {
	records, err := QueryNotificationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleMarkRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("notificationId"))
	if err != nil {
		panic(bizerror.ErrMissingID)
	}

	if err := MarkReadFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusOK)
}
