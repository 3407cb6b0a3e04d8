package authz_test

import (
	"testing"

	"worksite/authz"
	"worksite/domain"

	. "github.com/onsi/gomega"
)

func TestRoleOf(t *testing.T) {
	RegisterTestingT(t)

	project := &domain.Project{ID: 100, Name: "demo", Owner: 10}
	members := []domain.ProjectMember{
		{ProjectID: 100, MemberID: 20, Role: domain.ProjectRoleQuality},
		{ProjectID: 100, MemberID: 30, Role: domain.ProjectRoleWorker},
	}

	t.Run("should evaluate owner before member list", func(t *testing.T) {
		Expect(authz.RoleOf(project, members, 10)).To(Equal(domain.RoleOwner))
	})

	t.Run("owner wins even when also listed as member", func(t *testing.T) {
		polluted := append(members, domain.ProjectMember{ProjectID: 100, MemberID: 10, Role: domain.ProjectRoleWorker})
		Expect(authz.RoleOf(project, polluted, 10)).To(Equal(domain.RoleOwner))
	})

	t.Run("should return the member role for listed members", func(t *testing.T) {
		Expect(authz.RoleOf(project, members, 20)).To(Equal(domain.ProjectRoleQuality))
		Expect(authz.RoleOf(project, members, 30)).To(Equal(domain.ProjectRoleWorker))
	})

	t.Run("should return empty for strangers", func(t *testing.T) {
		Expect(authz.RoleOf(project, members, 40)).To(BeEmpty())
	})

	t.Run("should return empty for zero user id", func(t *testing.T) {
		Expect(authz.RoleOf(project, members, 0)).To(BeEmpty())
	})
}
