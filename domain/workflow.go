package domain

import (
	"greenroom/authority"

	"github.com/fundwit/go-commons/types"
)

type WorkflowState struct {
	EntityType EntityType `json:"entityType" gorm:"primary_key"`
	Name       string     `json:"name" gorm:"primary_key"`

	DisplayLabel string          `json:"displayLabel"`
	Order        int             `json:"order"`
	IsFinal      bool            `json:"isFinal"`
	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type WorkflowTransition struct {
	ID   types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name string   `json:"name"`

	EntityType EntityType `json:"entityType" gorm:"unique_index:uni_transition_edge"`
	FromState  string     `json:"fromState" gorm:"unique_index:uni_transition_edge"`
	ToState    string     `json:"toState" gorm:"unique_index:uni_transition_edge"`

	Roles authority.RoleList `json:"roles" sql:"type:TEXT"`

	NotifyRoles   authority.RoleList `json:"notifyRoles" sql:"type:TEXT"`
	NotifyCreator bool               `json:"notifyCreator"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// WorkflowHistory is the append-only ledger of state changes. Rows are never
// updated or deleted after insert. FromState is empty for the creation row
// and TransitionID is zero when no configured transition was involved.
type WorkflowHistory struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	EntityType EntityType `json:"entityType" gorm:"index:idx_history_entity"`
	EntityID   types.ID   `json:"entityId" gorm:"index:idx_history_entity"`

	FromState    string   `json:"fromState"`
	ToState      string   `json:"toState"`
	TransitionID types.ID `json:"transitionId"`

	ActorID   types.ID        `json:"actorId"`
	ActorName string          `json:"actorName"`
	Notes     string          `json:"notes" sql:"type:TEXT"`
	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *WorkflowHistory) TableName() string {
	return "workflow_histories"
}
