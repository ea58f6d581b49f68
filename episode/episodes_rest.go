package episode

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathEpisodes = "/v1/episodes"
)

func RegisterEpisodesRestAPI(r *gin.Engine, m EpisodeManagerTraits, middleWares ...gin.HandlerFunc) {
	handler := &episodesHandler{manager: m}

	g := r.Group(PathEpisodes, middleWares...)
	g.POST("", handler.handleCreate)
	g.GET("", handler.handleQuery)
}

type episodesHandler struct {
	manager EpisodeManagerTraits
}

func (h *episodesHandler) handleCreate(c *gin.Context) {
	creation := EpisodeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := h.manager.CreateEpisode(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *episodesHandler) handleQuery(c *gin.Context) {
	query := EpisodeQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := h.manager.QueryEpisodes(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
