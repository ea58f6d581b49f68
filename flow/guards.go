package flow

import (
	"greenroom/domain"
	"greenroom/session"
)

// ownerOverride reports whether the actor may invoke transitions on the
// entity regardless of role: the supervisor for programs and episodes, the
// original submitter for music submissions.
func ownerOverride(entity *EntityRef, sec *session.Context) bool {
	if sec == nil {
		return false
	}
	switch entity.Type {
	case domain.EntityTypeProgram, domain.EntityTypeEpisode:
		return entity.SupervisorID != 0 && sec.Identity.ID == entity.SupervisorID
	case domain.EntityTypeMusicSubmission:
		return sec.Identity.ID == entity.CreatorID
	}
	return false
}

// allowedToStates lists the target states the actor itself may reach from the
// entity's current state. Used for diagnosability in invalid-transition
// responses without leaking other roles' transitions.
func (m *TransitionExecutor) allowedToStates(entity *EntityRef, sec *session.Context) []string {
	transitions, err := m.registry.AvailableTransitions(entity.Type, entity.CurrentState)
	if err != nil {
		return []string{}
	}
	override := ownerOverride(entity, sec)
	allowed := []string{}
	for i := range transitions {
		if override || (sec != nil && m.registry.IsRoleAllowed(&transitions[i], sec.Role)) {
			allowed = append(allowed, transitions[i].ToState)
		}
	}
	return allowed
}
