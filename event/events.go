package event

import (
	"greenroom/domain"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateEvent(sourceType domain.EntityType, sourceId types.ID, sourceDesc string, ownerId types.ID,
	category EventCategory, transitionId types.ID, updatedProperties []UpdatedProperty, notes string,
	identity *session.Identity, db *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,
			OwnerId:    ownerId,

			EventCategory:     category,
			TransitionId:      transitionId,
			UpdatedProperties: updatedProperties,
			Notes:             notes,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,
		},
		Synced:    false,
		Timestamp: types.CurrentTimestamp(),
	}
	if err := EventPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}
