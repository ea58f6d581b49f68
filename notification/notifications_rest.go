package notification

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathNotifications = "/v1/notifications"
)

func RegisterNotificationsRestAPI(r *gin.Engine, m NotificationManagerTraits, middleWares ...gin.HandlerFunc) {
	handler := &notificationsHandler{manager: m}

	g := r.Group(PathNotifications, middleWares...)
	g.GET("", handler.handleQuery)
	g.GET("/unread-count", handler.handleCountUnread)
	g.PUT("/:id/read", handler.handleMarkRead)
	g.PUT("/read-all", handler.handleMarkAllRead)
}

type notificationsHandler struct {
	manager NotificationManagerTraits
}

func (h *notificationsHandler) handleQuery(c *gin.Context) {
	query := NotificationQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := h.manager.QueryNotifications(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *notificationsHandler) handleCountUnread(c *gin.Context) {
	count, err := h.manager.CountUnread(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, count)
}

func (h *notificationsHandler) handleMarkRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.manager.MarkRead(id, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *notificationsHandler) handleMarkAllRead(c *gin.Context) {
	count, err := h.manager.MarkAllRead(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}
