package flow

import (
	"time"

	"greenroom/authority"
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/persistence"

	"github.com/patrickmn/go-cache"
)

const ruleSetTTL = 5 * time.Minute

type StateRegistryTraits interface {
	GetStates(entityType domain.EntityType) ([]domain.WorkflowState, error)
	GetState(entityType domain.EntityType, name string) (*domain.WorkflowState, error)
	GetTransition(entityType domain.EntityType, fromState, toState string) (*domain.WorkflowTransition, error)
	AvailableTransitions(entityType domain.EntityType, fromState string) ([]domain.WorkflowTransition, error)
	IsRoleAllowed(t *domain.WorkflowTransition, role authority.Role) bool
	ClearCache()
}

// StateRegistry answers state and transition questions from the seeded rule
// tables. Rule sets are read-mostly, so each entity type's set is cached with
// a TTL and force-refreshed once on a lookup miss before giving up.
type StateRegistry struct {
	dataSource *persistence.DataSourceManager
	ruleCache  *cache.Cache
}

type ruleSet struct {
	states      []domain.WorkflowState
	transitions []domain.WorkflowTransition
}

func NewStateRegistry(ds *persistence.DataSourceManager) *StateRegistry {
	return &StateRegistry{
		dataSource: ds,
		ruleCache:  cache.New(ruleSetTTL, 1*time.Minute),
	}
}

func (r *StateRegistry) loadRuleSet(entityType domain.EntityType, force bool) (*ruleSet, error) {
	if !force {
		if cached, found := r.ruleCache.Get(string(entityType)); found {
			return cached.(*ruleSet), nil
		}
	}

	db := r.dataSource.GormDB()
	var states []domain.WorkflowState
	if err := db.Where(&domain.WorkflowState{EntityType: entityType}).Order("`order` ASC").Find(&states).Error; err != nil {
		return nil, err
	}
	var transitions []domain.WorkflowTransition
	if err := db.Where(&domain.WorkflowTransition{EntityType: entityType}).Order("id ASC").Find(&transitions).Error; err != nil {
		return nil, err
	}

	set := &ruleSet{states: states, transitions: transitions}
	r.ruleCache.Set(string(entityType), set, cache.DefaultExpiration)
	return set, nil
}

// GetStates returns the entity type's states ordered by their configured
// order. An unknown entity type yields an empty list, not an error.
func (r *StateRegistry) GetStates(entityType domain.EntityType) ([]domain.WorkflowState, error) {
	set, err := r.loadRuleSet(entityType, false)
	if err != nil {
		return nil, err
	}
	return set.states, nil
}

func (r *StateRegistry) GetState(entityType domain.EntityType, name string) (*domain.WorkflowState, error) {
	set, err := r.loadRuleSet(entityType, false)
	if err != nil {
		return nil, err
	}
	for i := range set.states {
		if set.states[i].Name == name {
			return &set.states[i], nil
		}
	}
	return nil, bizerror.ErrUnknownState
}

// GetTransition matches the (entityType, fromState, toState) triple exactly.
// The rule tables enforce uniqueness on the triple; ordering by ID keeps the
// result deterministic against data predating the index.
func (r *StateRegistry) GetTransition(entityType domain.EntityType, fromState, toState string) (*domain.WorkflowTransition, error) {
	set, err := r.loadRuleSet(entityType, false)
	if err != nil {
		return nil, err
	}
	if t := matchTransition(set, fromState, toState); t != nil {
		return t, nil
	}

	// the rule may have been configured after the cache entry was built
	set, err = r.loadRuleSet(entityType, true)
	if err != nil {
		return nil, err
	}
	if t := matchTransition(set, fromState, toState); t != nil {
		return t, nil
	}
	return nil, bizerror.ErrNotFound
}

func matchTransition(set *ruleSet, fromState, toState string) *domain.WorkflowTransition {
	for i := range set.transitions {
		if set.transitions[i].FromState == fromState && set.transitions[i].ToState == toState {
			return &set.transitions[i]
		}
	}
	return nil
}

func (r *StateRegistry) AvailableTransitions(entityType domain.EntityType, fromState string) ([]domain.WorkflowTransition, error) {
	set, err := r.loadRuleSet(entityType, false)
	if err != nil {
		return nil, err
	}
	matched := []domain.WorkflowTransition{}
	for _, t := range set.transitions {
		if fromState == "" || t.FromState == fromState {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// IsRoleAllowed is a case-sensitive exact match against the transition's
// configured allow-list.
func (r *StateRegistry) IsRoleAllowed(t *domain.WorkflowTransition, role authority.Role) bool {
	if t == nil {
		return false
	}
	return t.Roles.Contains(role)
}

func (r *StateRegistry) ClearCache() {
	r.ruleCache.Flush()
}
