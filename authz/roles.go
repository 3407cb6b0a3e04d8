package authz

import (
	"worksite/domain"

	"github.com/fundwit/go-commons/types"
)

// RoleOf computes the effective role of a user in a project: "OWNER" when
// the user is the project owner, the member role when listed, or "" (no
// role) otherwise. Pure function, never touches the store.
func RoleOf(project *domain.Project, members []domain.ProjectMember, userID types.ID) string {
	if project == nil || userID.IsZero() {
		return ""
	}
	if project.Owner == userID {
		return domain.RoleOwner
	}
	for _, m := range members {
		if m.MemberID == userID {
			return m.Role
		}
	}
	return ""
}
