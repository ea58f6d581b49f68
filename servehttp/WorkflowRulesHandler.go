package servehttp

import (
	"net/http"

	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/flow"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type WorkflowRulesQuery struct {
	EntityType domain.EntityType `json:"entityType" form:"entityType" binding:"required"`
	FromState  string            `json:"fromState" form:"fromState"`
}

func RegisterWorkflowRulesHandler(r *gin.Engine, registry flow.StateRegistryTraits, middleWares ...gin.HandlerFunc) {
	handler := &workflowRulesHandler{registry: registry}

	states := r.Group("/v1/workflow-states", middleWares...)
	states.GET("", handler.handleQueryStates)

	transitions := r.Group("/v1/workflow-transitions", middleWares...)
	transitions.GET("", handler.handleQueryTransitions)
}

type workflowRulesHandler struct {
	registry flow.StateRegistryTraits
}

func (h *workflowRulesHandler) handleQueryStates(c *gin.Context) {
	query := WorkflowRulesQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if !domain.IsKnownEntityType(query.EntityType) {
		panic(bizerror.ErrUnknownEntityType)
	}
	states, err := h.registry.GetStates(query.EntityType)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, states)
}

func (h *workflowRulesHandler) handleQueryTransitions(c *gin.Context) {
	query := WorkflowRulesQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if !domain.IsKnownEntityType(query.EntityType) {
		panic(bizerror.ErrUnknownEntityType)
	}
	transitions, err := h.registry.AvailableTransitions(query.EntityType, query.FromState)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, transitions)
}
