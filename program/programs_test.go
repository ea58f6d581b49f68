package program_test

import (
	"testing"

	"greenroom/authority"
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/event"
	"greenroom/flow"
	"greenroom/program"
	"greenroom/session"
	"greenroom/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) *program.ProgramManager {
	db := testinfra.StartMysqlTestDatabase("greenroom")
	assert.Nil(t, flow.Migrate(db.DS.GormDB()))
	assert.Nil(t, db.DS.GormDB().AutoMigrate(&session.User{}, &event.EventRecord{}).Error)
	assert.Nil(t, flow.SeedDefaultWorkflows(db.DS))
	*testDatabase = db

	registry := flow.NewStateRegistry(db.DS)
	return program.NewProgramManager(db.DS, registry, flow.NewTransitionExecutor(db.DS, registry))
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateProgram(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	originInvokeHandlersFunc := event.InvokeHandlersFunc
	defer func() { event.InvokeHandlersFunc = originInvokeHandlersFunc }()

	var handledEvents []event.EventRecord
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
		handledEvents = append(handledEvents, *record)
		return nil
	}

	t.Run("should create a program in the initial state with its creation history", func(t *testing.T) {
		defer teardown(t, testDatabase)
		manager := setup(t, &testDatabase)
		handledEvents = nil

		sec := testinfra.BuildSecCtx(types.ID(100), authority.RoleProgramManager)
		record, err := manager.CreateProgram(&program.ProgramCreation{Name: "Morning Show", SupervisorID: 500}, sec)
		Expect(err).To(BeNil())
		Expect(record.ID).ToNot(BeZero())
		Expect(record.Name).To(Equal("Morning Show"))
		Expect(record.CurrentState).To(Equal("draft"))
		Expect(record.CreatorID).To(Equal(types.ID(100)))
		Expect(record.SupervisorID).To(Equal(types.ID(500)))

		histories, err := flow.ListHistory(domain.EntityTypeProgram, record.ID, testDatabase.DS.GormDB())
		Expect(err).To(BeNil())
		Expect(len(histories)).To(Equal(1))
		Expect(histories[0].FromState).To(BeEmpty())
		Expect(histories[0].ToState).To(Equal("draft"))
		Expect(histories[0].ActorID).To(Equal(types.ID(100)))

		Expect(len(handledEvents)).To(Equal(1))
		Expect(handledEvents[0].EventCategory).To(Equal(event.EventCategory(event.EventCategoryCreated)))
		Expect(handledEvents[0].SourceId).To(Equal(record.ID))
		Expect(handledEvents[0].SourceDesc).To(Equal("Morning Show"))
	})

	t.Run("should be limited to program managers and admins", func(t *testing.T) {
		defer teardown(t, testDatabase)
		manager := setup(t, &testDatabase)

		_, err := manager.CreateProgram(&program.ProgramCreation{Name: "Morning Show"},
			testinfra.BuildSecCtx(types.ID(300), authority.RoleEmployee))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		_, err = manager.CreateProgram(&program.ProgramCreation{Name: "Morning Show"}, nil)
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))

		_, err = manager.CreateProgram(&program.ProgramCreation{Name: "Morning Show"},
			testinfra.BuildSecCtx(types.ID(1), authority.RoleAdmin))
		Expect(err).To(BeNil())
	})
}

func TestDetailProgram(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should return the program with its history", func(t *testing.T) {
		defer teardown(t, testDatabase)
		manager := setup(t, &testDatabase)

		sec := testinfra.BuildSecCtx(types.ID(100), authority.RoleProgramManager)
		record, err := manager.CreateProgram(&program.ProgramCreation{Name: "Morning Show"}, sec)
		Expect(err).To(BeNil())

		detail, err := manager.DetailProgram(record.ID, sec)
		Expect(err).To(BeNil())
		Expect(detail.Name).To(Equal("Morning Show"))
		Expect(len(detail.Histories)).To(Equal(1))
		Expect(detail.Histories[0].ToState).To(Equal("draft"))
	})

	t.Run("should fail not found for an unknown id", func(t *testing.T) {
		defer teardown(t, testDatabase)
		manager := setup(t, &testDatabase)

		_, err := manager.DetailProgram(404, testinfra.BuildSecCtx(types.ID(100), authority.RoleProgramManager))
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}

func TestQueryPrograms(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by state when given", func(t *testing.T) {
		defer teardown(t, testDatabase)
		manager := setup(t, &testDatabase)
		db := testDatabase.DS.GormDB()

		Expect(db.Create(&domain.Program{ID: 1, Name: "a", CurrentState: "draft",
			CreatorID: 100, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&domain.Program{ID: 2, Name: "b", CurrentState: "approved",
			CreatorID: 100, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		sec := testinfra.BuildSecCtx(types.ID(100), authority.RoleEmployee)
		records, err := manager.QueryPrograms(&program.ProgramQuery{}, sec)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(2))

		records, err = manager.QueryPrograms(&program.ProgramQuery{State: "approved"}, sec)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].Name).To(Equal("b"))
	})
}
