package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	NotificationTypeApprovalRequested = "approval_requested"
	NotificationTypeStateChanged      = "state_changed"
)

type Notification struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	RecipientID types.ID `json:"recipientId" gorm:"index:idx_notification_recipient"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message" sql:"type:TEXT"`

	EntityType EntityType `json:"entityType"`
	EntityID   types.ID   `json:"entityId"`

	IsRead     bool             `json:"isRead"`
	ReadAt     *types.Timestamp `json:"readAt" sql:"type:DATETIME(6)"`
	CreateTime types.Timestamp  `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}
