package flow

import (
	"errors"

	"greenroom/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AppendHistoryFunc = AppendHistory
	ListHistoryFunc   = ListHistory
)

// AppendHistory is a pure insert. No update or delete operation exists for
// history records.
func AppendHistory(record *domain.WorkflowHistory, db *gorm.DB) error {
	return db.Create(record).Error
}

// ListHistory returns the entity's transition records ordered by timestamp
// ascending. Re-querying gives a consistent snapshot, not a live stream.
func ListHistory(entityType domain.EntityType, entityID types.ID, db *gorm.DB) ([]domain.WorkflowHistory, error) {
	var records []domain.WorkflowHistory
	if err := db.Where(&domain.WorkflowHistory{EntityType: entityType, EntityID: entityID}).
		Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// LatestState returns the to_state of the most recent history record. The
// second result is false when the entity has no history at all.
func LatestState(entityType domain.EntityType, entityID types.ID, db *gorm.DB) (string, bool, error) {
	record := domain.WorkflowHistory{}
	err := db.Where(&domain.WorkflowHistory{EntityType: entityType, EntityID: entityID}).
		Order("timestamp DESC, id DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.ToState, true, nil
}
