package servehttp

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/flow"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type HistoryQuery struct {
	EntityType domain.EntityType `json:"entityType" form:"entityType" binding:"required"`
	EntityID   types.ID          `json:"entityId" form:"entityId" binding:"required"`
}

func RegisterHistoryHandler(r *gin.Engine, ds *persistence.DataSourceManager, middleWares ...gin.HandlerFunc) {
	handler := &historyHandler{dataSource: ds}

	g := r.Group("/v1/workflow-histories", middleWares...)
	g.GET("", handler.handleQuery)
}

type historyHandler struct {
	dataSource *persistence.DataSourceManager
}

func (h *historyHandler) handleQuery(c *gin.Context) {
	if session.FindSecurityContext(c) == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	query := HistoryQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if !domain.IsKnownEntityType(query.EntityType) {
		panic(bizerror.ErrUnknownEntityType)
	}
	records, err := flow.ListHistoryFunc(query.EntityType, query.EntityID, h.dataSource.GormDB())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
