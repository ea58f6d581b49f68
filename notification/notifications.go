package notification

import (
	"errors"

	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type NotificationQuery struct {
	UnreadOnly bool `json:"unreadOnly" form:"unreadOnly"`
}

type UnreadCount struct {
	Count int `json:"count"`
}

type NotificationManagerTraits interface {
	QueryNotifications(query *NotificationQuery, sec *session.Context) ([]domain.Notification, error)
	CountUnread(sec *session.Context) (*UnreadCount, error)
	MarkRead(id types.ID, sec *session.Context) error
	MarkAllRead(sec *session.Context) (int64, error)
}

type NotificationManager struct {
	dataSource *persistence.DataSourceManager
}

func NewNotificationManager(ds *persistence.DataSourceManager) *NotificationManager {
	return &NotificationManager{dataSource: ds}
}

func (m *NotificationManager) QueryNotifications(query *NotificationQuery, sec *session.Context) ([]domain.Notification, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB().Where(&domain.Notification{RecipientID: sec.Identity.ID})
	if query.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}
	var records []domain.Notification
	if err := db.Order("create_time DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (m *NotificationManager) CountUnread(sec *session.Context) (*UnreadCount, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	count := 0
	if err := m.dataSource.GormDB().Model(&domain.Notification{}).
		Where(&domain.Notification{RecipientID: sec.Identity.ID}).Where("is_read = ?", false).
		Count(&count).Error; err != nil {
		return nil, err
	}
	return &UnreadCount{Count: count}, nil
}

// MarkRead flips a single notification to read. Only the recipient may do it.
func (m *NotificationManager) MarkRead(id types.ID, sec *session.Context) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB()

	record := domain.Notification{ID: id}
	if err := db.Where(&record).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	if record.RecipientID != sec.Identity.ID {
		return bizerror.ErrForbidden
	}
	if record.IsRead {
		return nil
	}

	now := types.CurrentTimestamp()
	return db.Model(&domain.Notification{}).Where(&domain.Notification{ID: id}).
		Update(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

func (m *NotificationManager) MarkAllRead(sec *session.Context) (int64, error) {
	if sec == nil {
		return 0, bizerror.ErrUnauthenticated
	}
	now := types.CurrentTimestamp()
	query := m.dataSource.GormDB().Model(&domain.Notification{}).
		Where(&domain.Notification{RecipientID: sec.Identity.ID}).Where("is_read = ?", false).
		Update(map[string]interface{}{"is_read": true, "read_at": &now})
	if err := query.Error; err != nil {
		return 0, err
	}
	return query.RowsAffected, nil
}
