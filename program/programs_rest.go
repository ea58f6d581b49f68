package program

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathPrograms = "/v1/programs"
)

func RegisterProgramsRestAPI(r *gin.Engine, m ProgramManagerTraits, middleWares ...gin.HandlerFunc) {
	handler := &programsHandler{manager: m}

	g := r.Group(PathPrograms, middleWares...)
	g.POST("", handler.handleCreate)
	g.GET("", handler.handleQuery)
	g.GET("/:id", handler.handleDetail)
}

type programsHandler struct {
	manager ProgramManagerTraits
}

func (h *programsHandler) handleCreate(c *gin.Context) {
	creation := ProgramCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := h.manager.CreateProgram(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *programsHandler) handleQuery(c *gin.Context) {
	query := ProgramQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := h.manager.QueryPrograms(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *programsHandler) handleDetail(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := h.manager.DetailProgram(id, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}
