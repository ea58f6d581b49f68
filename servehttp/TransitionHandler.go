package servehttp

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/flow"
	"greenroom/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterTransitionHandler(r *gin.Engine, m flow.TransitionExecutorTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/transitions", middleWares...)

	handler := &transitionHandler{executor: m, validator: validator.New()}
	g.POST("", handler.handleCreate)
}

type transitionHandler struct {
	executor  flow.TransitionExecutorTraits
	validator *validator.Validate
}

func (h *transitionHandler) handleCreate(c *gin.Context) {
	creation := flow.TransitionCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err = h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := h.executor.Execute(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}
