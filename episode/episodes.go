package episode

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

type EpisodeCreation struct {
	ProgramID types.ID `json:"programId" binding:"required"`
	Title     string   `json:"title" binding:"required,lte=255"`
	SeqNum    int      `json:"seqNum" binding:"required,gte=1"`
}

type EpisodeQuery struct {
	ProgramID types.ID `json:"programId" form:"programId"`
	State     string   `json:"state" form:"state"`
}

type EpisodeManagerTraits interface {
	CreateEpisode(creation *EpisodeCreation, sec *session.Context) (*domain.Episode, error)
	QueryEpisodes(query *EpisodeQuery, sec *session.Context) ([]domain.Episode, error)
}

type EpisodeManager struct {
	dataSource *persistence.DataSourceManager
	registry   flow.StateRegistryTraits
	executor   *flow.TransitionExecutor
	idWorker   *sonyflake.Sonyflake
}

func NewEpisodeManager(ds *persistence.DataSourceManager, registry flow.StateRegistryTraits, executor *flow.TransitionExecutor) *EpisodeManager {
	return &EpisodeManager{
		dataSource: ds,
		registry:   registry,
		executor:   executor,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
	}
}

// CreateEpisode inserts the episode under an existing program. The episode
// inherits the program's supervisor.
func (m *EpisodeManager) CreateEpisode(creation *EpisodeCreation, sec *session.Context) (*domain.Episode, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !sec.HasAnyRole(authority.RoleList{authority.RoleEditor, authority.RoleProgramManager, authority.RoleAdmin}) {
		return nil, bizerror.ErrForbidden
	}

	states, err := m.registry.GetStates(domain.EntityTypeEpisode)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, bizerror.ErrUnknownEntityType
	}

	db := m.dataSource.GormDB()

	parent := domain.Program{ID: creation.ProgramID}
	if err := db.Where(&parent).First(&parent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	record := &domain.Episode{
		ID:        idgen.NextID(m.idWorker),
		ProgramID: parent.ID,
		Title:     creation.Title,
		SeqNum:    creation.SeqNum,

		CurrentState: states[0].Name,
		CreatorID:    sec.Identity.ID,
		SupervisorID: parent.SupervisorID,
		CreateTime:   types.CurrentTimestamp(),
	}

	var eventRecord *event.EventRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		ref := &flow.EntityRef{Type: domain.EntityTypeEpisode, ID: record.ID, Desc: record.Title,
			CurrentState: record.CurrentState, CreatorID: record.CreatorID, SupervisorID: record.SupervisorID}
		eventRecord, err = m.executor.RecordCreation(ref, sec, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	event.InvokeHandlersFunc(eventRecord)
	return record, nil
}

func (m *EpisodeManager) QueryEpisodes(query *EpisodeQuery, sec *session.Context) ([]domain.Episode, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB()
	if query.ProgramID != 0 {
		db = db.Where(&domain.Episode{ProgramID: query.ProgramID})
	}
	if query.State != "" {
		db = db.Where(&domain.Episode{CurrentState: query.State})
	}
	var records []domain.Episode
	if err := db.Order("seq_num ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
