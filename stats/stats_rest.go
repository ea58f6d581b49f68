package stats

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathEntityStats = "/v1/entity-stats"
)

func RegisterStatsRestAPI(r *gin.Engine, m StatsManagerTraits, middleWares ...gin.HandlerFunc) {
	handler := &statsHandler{manager: m}

	g := r.Group(PathEntityStats, middleWares...)
	g.GET("", handler.handleCountByState)
}

type statsHandler struct {
	manager StatsManagerTraits
}

func (h *statsHandler) handleCountByState(c *gin.Context) {
	query := EntityStatsQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	counts, err := h.manager.CountByState(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, counts)
}
