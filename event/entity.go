package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"greenroom/domain"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated        = "CREATED"
	EventCategoryStateTransited = "STATE_TRANSITED"
)

type EventCategory string

type Event struct {
	SourceType domain.EntityType `json:"sourceType"`
	SourceId   types.ID          `json:"sourceId"`
	SourceDesc string            `json:"sourceDesc"`
	OwnerId    types.ID          `json:"ownerId"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	TransitionId      types.ID          `json:"transitionId"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
	Notes             string            `json:"notes" sql:"type:TEXT"`
}

type EventRecord struct {
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

func (t UpdatedProperties) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
