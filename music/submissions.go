package music

import (
	"greenroom/authority"
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/event"
	"greenroom/flow"
	"greenroom/idgen"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

type SubmissionCreation struct {
	Title  string `json:"title" binding:"required,lte=255"`
	Artist string `json:"artist" binding:"required,lte=255"`
}

type SubmissionQuery struct {
	State string `json:"state" form:"state"`
}

type SubmissionManagerTraits interface {
	CreateSubmission(creation *SubmissionCreation, sec *session.Context) (*domain.MusicSubmission, error)
	QuerySubmissions(query *SubmissionQuery, sec *session.Context) ([]domain.MusicSubmission, error)
}

type SubmissionManager struct {
	dataSource *persistence.DataSourceManager
	registry   flow.StateRegistryTraits
	executor   *flow.TransitionExecutor
	idWorker   *sonyflake.Sonyflake
}

func NewSubmissionManager(ds *persistence.DataSourceManager, registry flow.StateRegistryTraits, executor *flow.TransitionExecutor) *SubmissionManager {
	return &SubmissionManager{
		dataSource: ds,
		registry:   registry,
		executor:   executor,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
	}
}

// CreateSubmission is open to any authenticated user: the submitter keeps the
// owner-override on their own submission (resubmission after rejection).
func (m *SubmissionManager) CreateSubmission(creation *SubmissionCreation, sec *session.Context) (*domain.MusicSubmission, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	states, err := m.registry.GetStates(domain.EntityTypeMusicSubmission)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, bizerror.ErrUnknownEntityType
	}

	record := &domain.MusicSubmission{
		ID:     idgen.NextID(m.idWorker),
		Title:  creation.Title,
		Artist: creation.Artist,

		CurrentState: states[0].Name,
		CreatorID:    sec.Identity.ID,
		CreateTime:   types.CurrentTimestamp(),
	}

	var eventRecord *event.EventRecord
	db := m.dataSource.GormDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		ref := &flow.EntityRef{Type: domain.EntityTypeMusicSubmission, ID: record.ID, Desc: record.Title,
			CurrentState: record.CurrentState, CreatorID: record.CreatorID}
		eventRecord, err = m.executor.RecordCreation(ref, sec, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	event.InvokeHandlersFunc(eventRecord)
	return record, nil
}

// QuerySubmissions returns all submissions for reviewers and admins, and only
// the caller's own submissions for everyone else.
func (m *SubmissionManager) QuerySubmissions(query *SubmissionQuery, sec *session.Context) ([]domain.MusicSubmission, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB()
	if !sec.HasAnyRole(authority.RoleList{authority.RoleMusicReviewer, authority.RoleAdmin}) {
		db = db.Where(&domain.MusicSubmission{CreatorID: sec.Identity.ID})
	}
	if query.State != "" {
		db = db.Where(&domain.MusicSubmission{CurrentState: query.State})
	}
	var records []domain.MusicSubmission
	if err := db.Order("create_time DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
