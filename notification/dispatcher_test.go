package notification_test

import (
	"errors"
	"testing"

	"greenroom/authority"
	"greenroom/domain"
	"greenroom/event"
	"greenroom/flow"
	"greenroom/notification"
	"greenroom/session"
	"greenroom/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) *notification.Dispatcher {
	db := testinfra.StartMysqlTestDatabase("greenroom")
	assert.Nil(t, flow.Migrate(db.DS.GormDB()))
	assert.Nil(t, db.DS.GormDB().AutoMigrate(&session.User{}, &event.EventRecord{}).Error)
	*testDatabase = db
	return notification.NewDispatcher(db.DS)
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func buildUser(t *testing.T, testDatabase *testinfra.TestDatabase, id types.ID, name string, role authority.Role) {
	assert.Nil(t, testDatabase.DS.GormDB().Create(&session.User{
		ID: id, Name: name, Secret: session.HashSha256("secret"), Role: role,
	}).Error)
}

func buildTransition(t *testing.T, testDatabase *testinfra.TestDatabase, id types.ID,
	notifyRoles authority.RoleList, notifyCreator bool) {
	assert.Nil(t, testDatabase.DS.GormDB().Create(&domain.WorkflowTransition{
		ID: id, Name: "submit", EntityType: domain.EntityTypeProgram,
		FromState: "draft", ToState: "pending_approval",
		Roles: authority.RoleList{authority.RoleProgramManager},
		NotifyRoles: notifyRoles, NotifyCreator: notifyCreator,
		CreateTime: types.CurrentTimestamp(),
	}).Error)
}

func buildTransitedEvent(transitionId, actorId, ownerId types.ID, notes string) *event.EventRecord {
	return &event.EventRecord{
		Event: event.Event{
			SourceType: domain.EntityTypeProgram, SourceId: types.ID(42), SourceDesc: "Morning Show",
			OwnerId: ownerId, CreatorId: actorId, CreatorName: "ann",
			EventCategory: event.EventCategoryStateTransited, TransitionId: transitionId,
			UpdatedProperties: []event.UpdatedProperty{
				{PropertyName: "current_state", OldValue: "draft", NewValue: "pending_approval"},
			},
			Notes: notes,
		},
		Timestamp: types.CurrentTimestamp(),
	}
}

func TestDispatch(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should notify every user holding a notify role", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		buildUser(t, testDatabase, 200, "bob", authority.RoleProducer)
		buildUser(t, testDatabase, 201, "carol", authority.RoleProducer)
		buildUser(t, testDatabase, 300, "dave", authority.RoleEmployee)
		buildTransition(t, testDatabase, 77, authority.RoleList{authority.RoleProducer}, false)

		count, err := dispatcher.Dispatch(buildTransitedEvent(77, 100, 100, "ready for review"))
		Expect(err).To(BeNil())
		Expect(count).To(Equal(2))

		var records []domain.Notification
		Expect(testDatabase.DS.GormDB().Order("recipient_id ASC").Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(2))
		Expect(records[0].RecipientID).To(Equal(types.ID(200)))
		Expect(records[1].RecipientID).To(Equal(types.ID(201)))
		Expect(records[0].Type).To(Equal(domain.NotificationTypeApprovalRequested))
		Expect(records[0].EntityType).To(Equal(domain.EntityTypeProgram))
		Expect(records[0].EntityID).To(Equal(types.ID(42)))
		Expect(records[0].IsRead).To(BeFalse())
		Expect(records[0].Title).To(ContainSubstring("awaits your review"))
		Expect(records[0].Message).To(ContainSubstring("Notes: ready for review"))
	})

	t.Run("should notify the owner when the transition says so", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		buildTransition(t, testDatabase, 77, nil, true)

		count, err := dispatcher.Dispatch(buildTransitedEvent(77, 200, 100, ""))
		Expect(err).To(BeNil())
		Expect(count).To(Equal(1))

		var records []domain.Notification
		Expect(testDatabase.DS.GormDB().Find(&records).Error).To(BeNil())
		Expect(records[0].RecipientID).To(Equal(types.ID(100)))
		Expect(records[0].Type).To(Equal(domain.NotificationTypeStateChanged))
		Expect(records[0].Title).To(ContainSubstring("is now pending_approval"))
	})

	t.Run("should never notify the acting user", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		// the actor is both a producer and the owner
		buildUser(t, testDatabase, 100, "ann", authority.RoleProducer)
		buildTransition(t, testDatabase, 77, authority.RoleList{authority.RoleProducer}, true)

		count, err := dispatcher.Dispatch(buildTransitedEvent(77, 100, 100, ""))
		Expect(err).To(BeNil())
		Expect(count).To(BeZero())
	})

	t.Run("should fail when the transition is gone", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		_, err := dispatcher.Dispatch(buildTransitedEvent(404, 100, 100, ""))
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})
}

func TestHandleEvent(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should ignore events other than state transitions", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		result := dispatcher.HandleEvent(&event.EventRecord{Event: event.Event{
			EventCategory: event.EventCategoryCreated}})
		Expect(result).To(BeNil())
	})

	t.Run("should report success with the created count", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		buildUser(t, testDatabase, 200, "bob", authority.RoleProducer)
		buildTransition(t, testDatabase, 77, authority.RoleList{authority.RoleProducer}, false)

		result := dispatcher.HandleEvent(buildTransitedEvent(77, 100, 100, ""))
		Expect(result.Success).To(BeTrue())
		Expect(result.HandlerIdentifier).To(Equal(notification.HandlerIdentifier))
		Expect(result.Message).To(Equal("1 notifications created"))
	})

	t.Run("should swallow persistence failures into a failed result", func(t *testing.T) {
		defer teardown(t, testDatabase)
		dispatcher := setup(t, &testDatabase)

		buildUser(t, testDatabase, 200, "bob", authority.RoleProducer)
		buildTransition(t, testDatabase, 77, authority.RoleList{authority.RoleProducer}, false)

		origin := notification.NotificationPersistCreateFunc
		defer func() { notification.NotificationPersistCreateFunc = origin }()
		notification.NotificationPersistCreateFunc = func(record *domain.Notification, db *gorm.DB) error {
			return errors.New("some error")
		}

		result := dispatcher.HandleEvent(buildTransitedEvent(77, 100, 100, ""))
		Expect(result.Success).To(BeFalse())
		Expect(result.Message).To(Equal("some error"))
	})
}
