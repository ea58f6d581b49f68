package program

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

type ProgramCreation struct {
	Name         string   `json:"name" binding:"required,lte=255"`
	SupervisorID types.ID `json:"supervisorId"`
}

type ProgramQuery struct {
	State string `json:"state" form:"state"`
}

type ProgramDetail struct {
	domain.Program

	Histories []domain.WorkflowHistory `json:"histories"`
}

type ProgramManagerTraits interface {
	CreateProgram(creation *ProgramCreation, sec *session.Context) (*domain.Program, error)
	DetailProgram(id types.ID, sec *session.Context) (*ProgramDetail, error)
	QueryPrograms(query *ProgramQuery, sec *session.Context) ([]domain.Program, error)
}

type ProgramManager struct {
	dataSource *persistence.DataSourceManager
	registry   flow.StateRegistryTraits
	executor   *flow.TransitionExecutor
	idWorker   *sonyflake.Sonyflake
}

func NewProgramManager(ds *persistence.DataSourceManager, registry flow.StateRegistryTraits, executor *flow.TransitionExecutor) *ProgramManager {
	return &ProgramManager{
		dataSource: ds,
		registry:   registry,
		executor:   executor,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
	}
}

func (m *ProgramManager) CreateProgram(creation *ProgramCreation, sec *session.Context) (*domain.Program, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !sec.HasAnyRole(authority.RoleList{authority.RoleProgramManager, authority.RoleAdmin}) {
		return nil, bizerror.ErrForbidden
	}

	initialState, err := initialStateOf(m.registry, domain.EntityTypeProgram)
	if err != nil {
		return nil, err
	}

	record := &domain.Program{
		ID:   idgen.NextID(m.idWorker),
		Name: creation.Name,

		CurrentState: initialState,
		CreatorID:    sec.Identity.ID,
		SupervisorID: creation.SupervisorID,
		CreateTime:   types.CurrentTimestamp(),
	}

	var eventRecord *event.EventRecord
	db := m.dataSource.GormDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		ref := &flow.EntityRef{Type: domain.EntityTypeProgram, ID: record.ID, Desc: record.Name,
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

func (m *ProgramManager) DetailProgram(id types.ID, sec *session.Context) (*ProgramDetail, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB()

	record := domain.Program{ID: id}
	if err := db.Where(&record).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	histories, err := flow.ListHistoryFunc(domain.EntityTypeProgram, id, db)
	if err != nil {
		return nil, err
	}
	return &ProgramDetail{Program: record, Histories: histories}, nil
}

func (m *ProgramManager) QueryPrograms(query *ProgramQuery, sec *session.Context) ([]domain.Program, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := m.dataSource.GormDB()
	if query.State != "" {
		db = db.Where(&domain.Program{CurrentState: query.State})
	}
	var records []domain.Program
	if err := db.Order("create_time DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func initialStateOf(registry flow.StateRegistryTraits, entityType domain.EntityType) (string, error) {
	states, err := registry.GetStates(entityType)
	if err != nil {
		return "", err
	}
	if len(states) == 0 {
		return "", bizerror.ErrUnknownEntityType
	}
	return states[0].Name, nil
}
