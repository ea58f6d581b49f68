package indices

import (
	"fmt"

	"greenroom/domain"
	"greenroom/es"
	"greenroom/event"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	EntityIndexName = "workflow-entities"

	EntityIndexHandlerIdentifier = "entityIndexer"

	IndexEntityDocFunc = IndexEntityDoc
)

// EntityDocument is the denormalized per-entity view kept in Elasticsearch
// for dashboard search.
type EntityDocument struct {
	EntityType domain.EntityType `json:"entityType"`
	EntityID   types.ID          `json:"entityId"`
	Desc       string            `json:"desc"`

	CurrentState string          `json:"currentState"`
	OwnerID      types.ID        `json:"ownerId"`
	LastChange   types.Timestamp `json:"lastChange"`
}

func IndexEntityDoc(doc *EntityDocument) error {
	return es.IndexFunc(EntityIndexName, doc.EntityID, doc)
}

// EntityIndexEventHandler keeps the index in step with committed creation and
// transition events.
func EntityIndexEventHandler(e *event.EventRecord) *event.EventHandleResult {
	if e.EventCategory != event.EventCategoryCreated && e.EventCategory != event.EventCategoryStateTransited {
		return nil
	}

	doc := &EntityDocument{
		EntityType: e.SourceType,
		EntityID:   e.SourceId,
		Desc:       e.SourceDesc,

		CurrentState: currentStateOf(e),
		OwnerID:      e.OwnerId,
		LastChange:   e.Timestamp,
	}
	if err := IndexEntityDocFunc(doc); err != nil {
		logrus.Warnf("index %s %d %s\n", doc.EntityType, doc.EntityID, err)
		return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: EntityIndexHandlerIdentifier}
	}
	return &event.EventHandleResult{Success: true,
		Message: fmt.Sprintf("indexed %s %d", doc.EntityType, doc.EntityID), HandlerIdentifier: EntityIndexHandlerIdentifier}
}

func currentStateOf(e *event.EventRecord) string {
	for _, p := range e.UpdatedProperties {
		if p.PropertyName == "current_state" {
			return p.NewValue
		}
	}
	return ""
}
