package music

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathMusicSubmissions = "/v1/music-submissions"
)

func RegisterSubmissionsRestAPI(r *gin.Engine, m SubmissionManagerTraits, middleWares ...gin.HandlerFunc) {
	handler := &submissionsHandler{manager: m}

	g := r.Group(PathMusicSubmissions, middleWares...)
	g.POST("", handler.handleCreate)
	g.GET("", handler.handleQuery)
}

type submissionsHandler struct {
	manager SubmissionManagerTraits
}

func (h *submissionsHandler) handleCreate(c *gin.Context) {
	creation := SubmissionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := h.manager.CreateSubmission(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *submissionsHandler) handleQuery(c *gin.Context) {
	query := SubmissionQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := h.manager.QuerySubmissions(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
