package notification

import (
	"fmt"

	"greenroom/authority"
	"greenroom/domain"
	"greenroom/event"
	"greenroom/idgen"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

const HandlerIdentifier = "notificationDispatcher"

var (
	NotificationPersistCreateFunc = notificationPersistCreate
)

func notificationPersistCreate(record *domain.Notification, db *gorm.DB) error {
	return db.Create(record).Error
}

// Dispatcher creates notification records for committed transition events.
// It runs in the post-commit handler chain: delivery is best-effort relative
// to the authoritative state change and duplicate notifications are possible
// if the same event is ever re-delivered.
type Dispatcher struct {
	dataSource *persistence.DataSourceManager
	idWorker   *sonyflake.Sonyflake
}

func NewDispatcher(ds *persistence.DataSourceManager) *Dispatcher {
	return &Dispatcher{dataSource: ds, idWorker: sonyflake.NewSonyflake(sonyflake.Settings{})}
}

// Register appends the dispatcher to the event handler chain.
func (d *Dispatcher) Register() {
	event.EventHandlers = append(event.EventHandlers, d.HandleEvent)
}

func (d *Dispatcher) HandleEvent(e *event.EventRecord) *event.EventHandleResult {
	if e.EventCategory != event.EventCategoryStateTransited {
		return nil
	}
	count, err := d.Dispatch(e)
	if err != nil {
		logrus.Errorf("dispatch notifications for %s %v failed: %v", e.SourceType, e.SourceId, err)
		return &event.EventHandleResult{Success: false, Message: err.Error(), HandlerIdentifier: HandlerIdentifier}
	}
	return &event.EventHandleResult{Success: true,
		Message: fmt.Sprintf("%d notifications created", count), HandlerIdentifier: HandlerIdentifier}
}

// Dispatch resolves the recipient set of a transition event and creates one
// notification row per recipient, returning the created count. The actor
// never notifies themselves.
func (d *Dispatcher) Dispatch(e *event.EventRecord) (int, error) {
	db := d.dataSource.GormDB()

	transition := domain.WorkflowTransition{}
	if e.TransitionId != 0 {
		if err := db.Where(&domain.WorkflowTransition{ID: e.TransitionId}).First(&transition).Error; err != nil {
			return 0, err
		}
	}

	newState := transitedTo(e)
	recipients := map[types.ID]string{}

	for _, role := range transition.NotifyRoles {
		users, err := usersWithRole(role, db)
		if err != nil {
			return 0, err
		}
		for _, id := range users {
			recipients[id] = domain.NotificationTypeApprovalRequested
		}
	}
	if transition.NotifyCreator && e.OwnerId != 0 {
		recipients[e.OwnerId] = domain.NotificationTypeStateChanged
	}
	delete(recipients, e.CreatorId)

	count := 0
	for recipient, notificationType := range recipients {
		record := &domain.Notification{
			ID:          idgen.NextID(d.idWorker),
			RecipientID: recipient,
			Type:        notificationType,
			Title:       buildTitle(e, newState, notificationType),
			Message:     buildMessage(e, newState),

			EntityType: e.SourceType,
			EntityID:   e.SourceId,
			CreateTime: types.CurrentTimestamp(),
		}
		if err := NotificationPersistCreateFunc(record, db); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func usersWithRole(role authority.Role, db *gorm.DB) ([]types.ID, error) {
	var users []session.User
	if err := db.Where(&session.User{Role: role}).Find(&users).Error; err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func transitedTo(e *event.EventRecord) string {
	for _, p := range e.UpdatedProperties {
		if p.PropertyName == "current_state" {
			return p.NewValue
		}
	}
	return ""
}

func buildTitle(e *event.EventRecord, newState, notificationType string) string {
	if notificationType == domain.NotificationTypeApprovalRequested {
		return fmt.Sprintf("%s \"%s\" awaits your review", e.SourceType, e.SourceDesc)
	}
	return fmt.Sprintf("%s \"%s\" is now %s", e.SourceType, e.SourceDesc, newState)
}

func buildMessage(e *event.EventRecord, newState string) string {
	message := fmt.Sprintf("%s moved %s \"%s\" to %s.", e.CreatorName, e.SourceType, e.SourceDesc, newState)
	if e.Notes != "" {
		message += " Notes: " + e.Notes
	}
	return message
}
