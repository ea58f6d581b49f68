package flow

import (
	"errors"

	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/event"
	"greenroom/idgen"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var errConcurrentTransition = errors.New("concurrent state transition")

type TransitionCreation struct {
	EntityType domain.EntityType `json:"entityType" binding:"required"`
	EntityID   types.ID          `json:"entityId" binding:"required"`
	ToState    string            `json:"toState" binding:"required"`
	Notes      string            `json:"notes" binding:"lte=2000"`
}

type TransitionResult struct {
	EntityType domain.EntityType `json:"entityType"`
	EntityID   types.ID          `json:"entityId"`

	FromState string `json:"fromState"`
	ToState   string `json:"toState"`

	HistoryID types.ID        `json:"historyId"`
	Timestamp types.Timestamp `json:"timestamp"`
}

type TransitionExecutorTraits interface {
	Execute(creation *TransitionCreation, sec *session.Context) (*TransitionResult, error)
}

// TransitionExecutor orchestrates a single state-change request: guard
// checks, the entity state write, the history append and the event record in
// one transaction, then the post-commit handler fanout.
type TransitionExecutor struct {
	dataSource *persistence.DataSourceManager
	registry   StateRegistryTraits
	idWorker   *sonyflake.Sonyflake
}

func NewTransitionExecutor(ds *persistence.DataSourceManager, registry StateRegistryTraits) *TransitionExecutor {
	return &TransitionExecutor{
		dataSource: ds,
		registry:   registry,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
	}
}

func (m *TransitionExecutor) Execute(c *TransitionCreation, sec *session.Context) (*TransitionResult, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !domain.IsKnownEntityType(c.EntityType) {
		return nil, bizerror.ErrUnknownEntityType
	}
	if _, err := m.registry.GetState(c.EntityType, c.ToState); err != nil {
		return nil, err
	}

	var record *event.EventRecord
	var result *TransitionResult

	db := m.dataSource.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		entity, err := LoadEntityRef(tx, c.EntityType, c.EntityID)
		if err != nil {
			return err
		}

		// entity.current_state must agree with the latest history record;
		// drift indicates a prior concurrency or storage bug and is fatal
		// to the operation, never repaired here.
		latest, found, err := LatestState(c.EntityType, c.EntityID, tx)
		if err != nil {
			return err
		}
		if found && latest != entity.CurrentState {
			return &bizerror.ErrStateInconsistent{EntityType: string(entity.Type), EntityID: entity.ID,
				EntityState: entity.CurrentState, HistoryState: latest}
		}

		transition, err := m.registry.GetTransition(c.EntityType, entity.CurrentState, c.ToState)
		if err != nil {
			if err == bizerror.ErrNotFound {
				return m.invalidTransition(entity, c.ToState, sec)
			}
			return err
		}

		if !m.registry.IsRoleAllowed(transition, sec.Role) && !ownerOverride(entity, sec) {
			return bizerror.ErrForbidden
		}

		updated, err := UpdateEntityState(tx, c.EntityType, c.EntityID, entity.CurrentState, c.ToState)
		if err != nil {
			return err
		}
		if !updated {
			// lost a concurrent transition; a re-read inside this
			// transaction would reuse the stale snapshot, so bail out and
			// report from a fresh session after the rollback
			return errConcurrentTransition
		}

		now := types.CurrentTimestamp()
		history := &domain.WorkflowHistory{
			ID:         idgen.NextID(m.idWorker),
			EntityType: entity.Type,
			EntityID:   entity.ID,

			FromState:    entity.CurrentState,
			ToState:      c.ToState,
			TransitionID: transition.ID,

			ActorID:   sec.Identity.ID,
			ActorName: sec.Identity.Name,
			Notes:     c.Notes,
			Timestamp: now,
		}
		if err := AppendHistoryFunc(history, tx); err != nil {
			return err
		}

		record, err = event.CreateEvent(entity.Type, entity.ID, entity.Desc, entity.CreatorID,
			event.EventCategoryStateTransited, transition.ID,
			[]event.UpdatedProperty{{PropertyName: "current_state", OldValue: entity.CurrentState, NewValue: c.ToState}},
			c.Notes, &sec.Identity, tx)
		if err != nil {
			return err
		}

		result = &TransitionResult{
			EntityType: entity.Type, EntityID: entity.ID,
			FromState: entity.CurrentState, ToState: c.ToState,
			HistoryID: history.ID, Timestamp: now,
		}
		return nil
	})
	if err == errConcurrentTransition {
		fresh, loadErr := LoadEntityRef(db, c.EntityType, c.EntityID)
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, m.invalidTransition(fresh, c.ToState, sec)
	}
	if err != nil {
		return nil, err
	}

	event.InvokeHandlersFunc(record)
	return result, nil
}

func (m *TransitionExecutor) invalidTransition(entity *EntityRef, toState string, sec *session.Context) error {
	return &bizerror.ErrInvalidTransition{
		EntityType:    string(entity.Type),
		CurrentState:  entity.CurrentState,
		ToState:       toState,
		AllowedStates: m.allowedToStates(entity, sec),
	}
}

// RecordCreation appends the creation history row and CREATED event for a
// just-inserted entity, inside the caller's transaction. The returned event
// record is handed to event.InvokeHandlersFunc after the caller commits.
func (m *TransitionExecutor) RecordCreation(entity *EntityRef, sec *session.Context, tx *gorm.DB) (*event.EventRecord, error) {
	history := &domain.WorkflowHistory{
		ID:         idgen.NextID(m.idWorker),
		EntityType: entity.Type,
		EntityID:   entity.ID,

		ToState: entity.CurrentState,

		ActorID:   sec.Identity.ID,
		ActorName: sec.Identity.Name,
		Timestamp: types.CurrentTimestamp(),
	}
	if err := AppendHistoryFunc(history, tx); err != nil {
		return nil, err
	}

	return event.CreateEvent(entity.Type, entity.ID, entity.Desc, entity.CreatorID,
		event.EventCategoryCreated, 0,
		[]event.UpdatedProperty{{PropertyName: "current_state", NewValue: entity.CurrentState}},
		"", &sec.Identity, tx)
}
