package flow

import (
	"fmt"

	"greenroom/authority"
	"greenroom/domain"
	"greenroom/idgen"
	"greenroom/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var setupIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

type stateDef struct {
	Name    string
	Label   string
	IsFinal bool
}

type transitionDef struct {
	Name string
	From string
	To   string

	Roles         authority.RoleList
	NotifyRoles   authority.RoleList
	NotifyCreator bool
}

type machineDef struct {
	EntityType  domain.EntityType
	States      []stateDef
	Transitions []transitionDef
}

var defaultMachines = []machineDef{
	{
		EntityType: domain.EntityTypeProgram,
		States: []stateDef{
			{Name: "draft", Label: "Draft"},
			{Name: "pending_approval", Label: "Pending Approval"},
			{Name: "approved", Label: "Approved"},
			{Name: "rejected", Label: "Rejected"},
			{Name: "scheduled", Label: "Scheduled"},
			{Name: "in_production", Label: "In Production"},
			{Name: "aired", Label: "Aired", IsFinal: true},
			{Name: "archived", Label: "Archived", IsFinal: true},
		},
		Transitions: []transitionDef{
			{Name: "submit", From: "draft", To: "pending_approval",
				Roles: authority.RoleList{authority.RoleProgramManager},
				NotifyRoles: authority.RoleList{authority.RoleProducer}},
			{Name: "approve", From: "pending_approval", To: "approved",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
			{Name: "reject", From: "pending_approval", To: "rejected",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
			{Name: "revise", From: "rejected", To: "draft",
				Roles: authority.RoleList{authority.RoleProgramManager}},
			{Name: "schedule", From: "approved", To: "scheduled",
				Roles: authority.RoleList{authority.RoleProgramManager}},
			{Name: "start_production", From: "scheduled", To: "in_production",
				Roles: authority.RoleList{authority.RoleProducer}},
			{Name: "air", From: "in_production", To: "aired",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
			{Name: "archive", From: "approved", To: "archived",
				Roles: authority.RoleList{authority.RoleAdmin, authority.RoleProgramManager}},
		},
	},
	{
		EntityType: domain.EntityTypeEpisode,
		States: []stateDef{
			{Name: "drafting", Label: "Drafting"},
			{Name: "rundown_submitted", Label: "Rundown Submitted"},
			{Name: "rundown_approved", Label: "Rundown Approved"},
			{Name: "rundown_rejected", Label: "Rundown Rejected"},
			{Name: "recorded", Label: "Recorded"},
			{Name: "aired", Label: "Aired", IsFinal: true},
		},
		Transitions: []transitionDef{
			{Name: "submit_rundown", From: "drafting", To: "rundown_submitted",
				Roles: authority.RoleList{authority.RoleEditor, authority.RoleProgramManager},
				NotifyRoles: authority.RoleList{authority.RoleProducer}},
			{Name: "approve_rundown", From: "rundown_submitted", To: "rundown_approved",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
			{Name: "reject_rundown", From: "rundown_submitted", To: "rundown_rejected",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
			{Name: "rework_rundown", From: "rundown_rejected", To: "drafting",
				Roles: authority.RoleList{authority.RoleEditor}},
			{Name: "record", From: "rundown_approved", To: "recorded",
				Roles: authority.RoleList{authority.RoleProducer}},
			{Name: "air", From: "recorded", To: "aired",
				Roles: authority.RoleList{authority.RoleProducer}, NotifyCreator: true},
		},
	},
	{
		EntityType: domain.EntityTypeMusicSubmission,
		States: []stateDef{
			{Name: "submitted", Label: "Submitted"},
			{Name: "reviewing", Label: "Reviewing"},
			{Name: "approved", Label: "Approved"},
			{Name: "rejected", Label: "Rejected"},
			{Name: "published", Label: "Published", IsFinal: true},
		},
		Transitions: []transitionDef{
			{Name: "start_review", From: "submitted", To: "reviewing",
				Roles: authority.RoleList{authority.RoleMusicReviewer}, NotifyCreator: true},
			{Name: "approve", From: "reviewing", To: "approved",
				Roles: authority.RoleList{authority.RoleMusicReviewer}, NotifyCreator: true},
			{Name: "reject", From: "reviewing", To: "rejected",
				Roles: authority.RoleList{authority.RoleMusicReviewer}, NotifyCreator: true},
			{Name: "resubmit", From: "rejected", To: "submitted",
				Roles: authority.RoleList{}},
			{Name: "publish", From: "approved", To: "published",
				Roles: authority.RoleList{authority.RoleMusicReviewer, authority.RoleAdmin},
				NotifyCreator: true},
		},
	},
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.WorkflowState{}, &domain.WorkflowTransition{},
		&domain.WorkflowHistory{}, &domain.Notification{},
		&domain.Program{}, &domain.Episode{}, &domain.MusicSubmission{}).Error
}

// SeedDefaultWorkflows installs the built-in state machines. Existing rows
// are left untouched, so reruns on startup are safe.
func SeedDefaultWorkflows(ds *persistence.DataSourceManager) error {
	db := ds.GormDB()
	return db.Transaction(func(tx *gorm.DB) error {
		for _, machine := range defaultMachines {
			if err := seedMachine(&machine, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedMachine(machine *machineDef, tx *gorm.DB) error {
	finals := map[string]bool{}
	known := map[string]bool{}
	now := types.CurrentTimestamp()

	for i, s := range machine.States {
		known[s.Name] = true
		finals[s.Name] = s.IsFinal
		stateEntity := domain.WorkflowState{EntityType: machine.EntityType, Name: s.Name}
		if err := tx.Where(&stateEntity).Attrs(domain.WorkflowState{
			DisplayLabel: s.Label, Order: 10000 + i + 1, IsFinal: s.IsFinal, CreateTime: now,
		}).FirstOrCreate(&stateEntity).Error; err != nil {
			return err
		}
	}

	for _, t := range machine.Transitions {
		if err := validateTransitionDef(machine.EntityType, &t, known, finals); err != nil {
			return err
		}
		transitionEntity := domain.WorkflowTransition{
			EntityType: machine.EntityType, FromState: t.From, ToState: t.To,
		}
		if err := tx.Where(&transitionEntity).Attrs(domain.WorkflowTransition{
			ID: idgen.NextID(setupIdWorker), Name: t.Name,
			Roles: t.Roles, NotifyRoles: t.NotifyRoles, NotifyCreator: t.NotifyCreator,
			CreateTime: now,
		}).FirstOrCreate(&transitionEntity).Error; err != nil {
			return err
		}
	}
	return nil
}

func validateTransitionDef(entityType domain.EntityType, t *transitionDef, known, finals map[string]bool) error {
	if !known[t.From] || !known[t.To] {
		return fmt.Errorf("transition %s of %s references unknown state", t.Name, entityType)
	}
	if finals[t.From] {
		return fmt.Errorf("transition %s of %s leaves final state %s", t.Name, entityType, t.From)
	}
	for _, role := range t.Roles {
		if !authority.IsKnownRole(role) {
			return fmt.Errorf("transition %s of %s permits unknown role %s", t.Name, entityType, role)
		}
	}
	for _, role := range t.NotifyRoles {
		if !authority.IsKnownRole(role) {
			return fmt.Errorf("transition %s of %s notifies unknown role %s", t.Name, entityType, role)
		}
	}
	return nil
}
