package bizerror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fundwit/go-commons/types"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")

	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrUnknownState      = errors.New("unknown state")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrInvalidTransition reports a transition request which is not defined from
// the entity's current state, including attempts to leave a final state and
// requests which lost a concurrent update. AllowedStates carries the valid
// next states so callers need not re-derive them.
type ErrInvalidTransition struct {
	EntityType    string   `json:"entityType"`
	CurrentState  string   `json:"currentState"`
	ToState       string   `json:"toState"`
	AllowedStates []string `json:"allowedStates"`
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("transition from %s to %s is not defined for %s", e.CurrentState, e.ToState, e.EntityType)
}
func (e *ErrInvalidTransition) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "workflow.invalid_transition", Message: e.Error(), Data: e}
}

// ErrStateInconsistent reports disagreement between an entity's current_state
// and the latest history record. It indicates a prior concurrency or storage
// bug and is never repaired silently.
type ErrStateInconsistent struct {
	EntityType   string   `json:"entityType"`
	EntityID     types.ID `json:"entityId"`
	EntityState  string   `json:"entityState"`
	HistoryState string   `json:"historyState"`
}

func (e *ErrStateInconsistent) Error() string {
	return fmt.Sprintf("state of %s %v is %s but latest history says %s",
		e.EntityType, e.EntityID, e.EntityState, e.HistoryState)
}
func (e *ErrStateInconsistent) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "workflow.state_inconsistent",
		Message: e.Error(), Data: e}
}
