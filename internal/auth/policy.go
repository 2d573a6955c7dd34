package auth

import "exam_system/internal/domain"

// CanMutate reports whether an actor may change a resource owned by ownerID.
// Admins may change anything; everyone else only what they own.
func CanMutate(actorRole string, actorID, ownerID uint) bool {
	if actorRole == domain.RoleAdmin {
		return true
	}
	return actorID != 0 && actorID == ownerID
}

// CanCreateExam reports whether the role may author exams
func CanCreateExam(role string) bool {
	return role == domain.RoleTeacher || role == domain.RoleAdmin
}

// CanAssignRole reports whether an actor with actorRole may give a user the target role.
// Only admins grant admin; an empty actorRole is an anonymous registration.
func CanAssignRole(actorRole, target string) bool {
	if target != domain.RoleAdmin {
		return true
	}
	return actorRole == domain.RoleAdmin
}
