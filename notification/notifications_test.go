package notification_test

import (
	"testing"

	"greenroom/authority"
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/notification"
	"greenroom/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func buildNotification(t *testing.T, testDatabase *testinfra.TestDatabase, id, recipientId types.ID, read bool) {
	record := domain.Notification{
		ID: id, RecipientID: recipientId, Type: domain.NotificationTypeStateChanged,
		Title: "program \"Morning Show\" is now approved", IsRead: read,
		EntityType: domain.EntityTypeProgram, EntityID: 42, CreateTime: types.CurrentTimestamp(),
	}
	if read {
		now := types.CurrentTimestamp()
		record.ReadAt = &now
	}
	Expect(testDatabase.DS.GormDB().Create(&record).Error).To(BeNil())
}

func TestQueryNotifications(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should only see own notifications", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		manager := notification.NewNotificationManager(testDatabase.DS)

		buildNotification(t, testDatabase, 1, 100, false)
		buildNotification(t, testDatabase, 2, 100, true)
		buildNotification(t, testDatabase, 3, 200, false)

		sec := testinfra.BuildSecCtx(100, authority.RoleEmployee)
		records, err := manager.QueryNotifications(&notification.NotificationQuery{}, sec)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(2))

		records, err = manager.QueryNotifications(&notification.NotificationQuery{UnreadOnly: true}, sec)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].ID).To(Equal(types.ID(1)))

		_, err = manager.QueryNotifications(&notification.NotificationQuery{}, nil)
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})
}

func TestCountUnread(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should count only own unread notifications", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		manager := notification.NewNotificationManager(testDatabase.DS)

		buildNotification(t, testDatabase, 1, 100, false)
		buildNotification(t, testDatabase, 2, 100, false)
		buildNotification(t, testDatabase, 3, 100, true)
		buildNotification(t, testDatabase, 4, 200, false)

		count, err := manager.CountUnread(testinfra.BuildSecCtx(100, authority.RoleEmployee))
		Expect(err).To(BeNil())
		Expect(count.Count).To(Equal(2))
	})
}

func TestMarkRead(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should mark read only for the recipient", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		manager := notification.NewNotificationManager(testDatabase.DS)

		buildNotification(t, testDatabase, 1, 100, false)

		Expect(manager.MarkRead(1, testinfra.BuildSecCtx(200, authority.RoleEmployee))).
			To(Equal(bizerror.ErrForbidden))
		Expect(manager.MarkRead(404, testinfra.BuildSecCtx(100, authority.RoleEmployee))).
			To(Equal(bizerror.ErrNotFound))

		Expect(manager.MarkRead(1, testinfra.BuildSecCtx(100, authority.RoleEmployee))).To(BeNil())

		record := domain.Notification{ID: 1}
		Expect(testDatabase.DS.GormDB().Where(&record).First(&record).Error).To(BeNil())
		Expect(record.IsRead).To(BeTrue())
		Expect(record.ReadAt).ToNot(BeNil())

		// second call is a no-op
		Expect(manager.MarkRead(1, testinfra.BuildSecCtx(100, authority.RoleEmployee))).To(BeNil())
	})
}

func TestMarkAllRead(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should mark all own unread notifications", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		manager := notification.NewNotificationManager(testDatabase.DS)

		buildNotification(t, testDatabase, 1, 100, false)
		buildNotification(t, testDatabase, 2, 100, false)
		buildNotification(t, testDatabase, 3, 200, false)

		affected, err := manager.MarkAllRead(testinfra.BuildSecCtx(100, authority.RoleEmployee))
		Expect(err).To(BeNil())
		Expect(affected).To(Equal(int64(2)))

		count, err := manager.CountUnread(testinfra.BuildSecCtx(100, authority.RoleEmployee))
		Expect(err).To(BeNil())
		Expect(count.Count).To(BeZero())

		other, err := manager.CountUnread(testinfra.BuildSecCtx(200, authority.RoleEmployee))
		Expect(err).To(BeNil())
		Expect(other.Count).To(Equal(1))
	})
}
