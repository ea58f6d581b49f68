package indices

import (
	"net/http"

	"greenroom/persistence"
	"greenroom/session"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
)

func RegisterIndicesRestAPI(r *gin.Engine, ds *persistence.DataSourceManager, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", func(c *gin.Context) {
		handleIndexRequest(c, ds)
	})
}

func handleIndexRequest(c *gin.Context, ds *persistence.DataSourceManager) {
	success, err := ScheduleNewSyncRunFunc(ds, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}
