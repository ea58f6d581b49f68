package flow

import (
	"errors"

	"greenroom/bizerror"
	"greenroom/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// EntityRef is the workflow engine's view of a tracked entity: identity,
// current state and the references the guards need. Entity payload fields
// stay in their own packages.
type EntityRef struct {
	Type domain.EntityType
	ID   types.ID
	Desc string

	CurrentState string
	CreatorID    types.ID
	SupervisorID types.ID
}

func LoadEntityRef(db *gorm.DB, entityType domain.EntityType, id types.ID) (*EntityRef, error) {
	switch entityType {
	case domain.EntityTypeProgram:
		record := domain.Program{ID: id}
		if err := db.Where(&record).First(&record).Error; err != nil {
			return nil, asNotFound(err)
		}
		return &EntityRef{Type: entityType, ID: record.ID, Desc: record.Name,
			CurrentState: record.CurrentState, CreatorID: record.CreatorID, SupervisorID: record.SupervisorID}, nil
	case domain.EntityTypeEpisode:
		record := domain.Episode{ID: id}
		if err := db.Where(&record).First(&record).Error; err != nil {
			return nil, asNotFound(err)
		}
		return &EntityRef{Type: entityType, ID: record.ID, Desc: record.Title,
			CurrentState: record.CurrentState, CreatorID: record.CreatorID, SupervisorID: record.SupervisorID}, nil
	case domain.EntityTypeMusicSubmission:
		record := domain.MusicSubmission{ID: id}
		if err := db.Where(&record).First(&record).Error; err != nil {
			return nil, asNotFound(err)
		}
		return &EntityRef{Type: entityType, ID: record.ID, Desc: record.Title,
			CurrentState: record.CurrentState, CreatorID: record.CreatorID}, nil
	}
	return nil, bizerror.ErrUnknownEntityType
}

// UpdateEntityState moves the entity row from fromState to toState. The
// predicate on current_state serializes concurrent transitions: a stale
// request misses the row and reports false without touching anything.
func UpdateEntityState(tx *gorm.DB, entityType domain.EntityType, id types.ID, fromState, toState string) (bool, error) {
	var query *gorm.DB
	switch entityType {
	case domain.EntityTypeProgram:
		query = tx.Model(&domain.Program{}).Where(&domain.Program{ID: id, CurrentState: fromState}).
			Update(&domain.Program{CurrentState: toState})
	case domain.EntityTypeEpisode:
		query = tx.Model(&domain.Episode{}).Where(&domain.Episode{ID: id, CurrentState: fromState}).
			Update(&domain.Episode{CurrentState: toState})
	case domain.EntityTypeMusicSubmission:
		query = tx.Model(&domain.MusicSubmission{}).Where(&domain.MusicSubmission{ID: id, CurrentState: fromState}).
			Update(&domain.MusicSubmission{CurrentState: toState})
	default:
		return false, bizerror.ErrUnknownEntityType
	}

	if err := query.Error; err != nil {
		return false, err
	}
	return query.RowsAffected == 1, nil
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bizerror.ErrNotFound
	}
	return err
}
