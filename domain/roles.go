package domain

// Global roles carried by a user account.
const (
	GlobalRoleAdmin          = "ADMIN"
	GlobalRoleProjectManager = "PROJECT_MANAGER"
	GlobalRoleQuality        = "QUALITY"
	GlobalRoleTeamLeader     = "TEAM_LEADER"
	GlobalRoleWorker         = "WORKER"
)

// RoleOwner is the effective role of a project's owner. It is derived from
// Project.Owner and never stored in the member list.
const RoleOwner = "OWNER"

// Per-project member roles.
const (
	ProjectRoleProjectManager = "PROJECT_MANAGER"
	ProjectRoleQuality        = "QUALITY"
	ProjectRoleTeamLeader     = "TEAM_LEADER"
	ProjectRoleWorker         = "WORKER"
)

var ProjectRoles = []string{ProjectRoleProjectManager, ProjectRoleQuality, ProjectRoleTeamLeader, ProjectRoleWorker}

func IsProjectRole(role string) bool {
	for _, r := range ProjectRoles {
		if r == role {
			return true
		}
	}
	return false
}
