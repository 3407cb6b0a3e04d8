package authz

import (
	"worksite/bizerror"
	"worksite/domain"
	"worksite/persistence"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const KeyAuthzCtx = "AuthzCtx"

// AuthorizedContext is attached to the request after the gate passes:
// the owning project with its members, the caller's effective role, and
// the resolved sub-resource(s).
type AuthorizedContext struct {
	Project  *domain.ProjectDetail
	Role     string
	Resource interface{}
	Tool     *domain.Tool
}

func (a *AuthorizedContext) NonConformity() *domain.NonConformity {
	nc, _ := a.Resource.(*domain.NonConformity)
	return nc
}

func (a *AuthorizedContext) Plan() *domain.Plan {
	p, _ := a.Resource.(*domain.Plan)
	return p
}

func (a *AuthorizedContext) StockItem() *domain.StockItem {
	s, _ := a.Resource.(*domain.StockItem)
	return s
}

func (a *AuthorizedContext) ToolAssignment() *domain.ToolAssignment {
	t, _ := a.Resource.(*domain.ToolAssignment)
	return t
}

func (a *AuthorizedContext) Milestone() *domain.Milestone {
	m, _ := a.Resource.(*domain.Milestone)
	return m
}

func (a *AuthorizedContext) Invoice() *domain.Invoice {
	i, _ := a.Resource.(*domain.Invoice)
	return i
}

func (a *AuthorizedContext) Maintenance() *domain.ToolMaintenance {
	m, _ := a.Resource.(*domain.ToolMaintenance)
	return m
}

func FindAuthorizedContext(c *gin.Context) *AuthorizedContext {
	value, found := c.Get(KeyAuthzCtx)
	if !found {
		return nil
	}
	authCtx, ok := value.(*AuthorizedContext)
	if !ok {
		return nil
	}
	return authCtx
}

// Authorize is the shared access gate: resolve the resource to its owning
// project, evaluate the caller's effective role, and check it against the
// allow-list. OWNER always bypasses the allow-list; an empty allow-list
// admits any member. All nine families run this exact algorithm,
// parameterized only by the family resolution.
func Authorize(family Family, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sec := session.ExtractSessionFromGinContext(c)
		if sec.Identity.ID.IsZero() {
			panic(bizerror.ErrUnauthenticated)
		}

		db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
		resolution, err := Resolve(c, family, db)
		if err != nil {
			panic(err)
		}

		project, err := loadOwningProject(resolution.ProjectID, db)
		if err != nil {
			panic(err)
		}

		role := RoleOf(&project.Project, project.Members, sec.Identity.ID)
		if role == "" {
			panic(bizerror.ErrNotProjectMember)
		}
		if len(allowedRoles) > 0 && role != domain.RoleOwner && !containsRole(allowedRoles, role) {
			panic(bizerror.ErrInsufficientRole)
		}

		resource := resolution.Resource
		if resource == nil && family == FamilyProject {
			resource = &project.Project
		}
		c.Set(KeyAuthzCtx, &AuthorizedContext{Project: project, Role: role, Resource: resource, Tool: resolution.Tool})
		c.Next()
	}
}

// loadOwningProject loads the project with its member list. A soft-deleted
// project revokes access to everything under it, indistinguishable from a
// missing one. A zero stored reference is data corruption, not user error.
func loadOwningProject(projectID types.ID, db *gorm.DB) (*domain.ProjectDetail, error) {
	if projectID.IsZero() {
		return nil, bizerror.ErrCorruptProjectRef
	}
	var project domain.Project
	if err := db.Where(&domain.Project{ID: projectID}).First(&project).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrProjectNotFound
		}
		return nil, err
	}
	if project.IsDeleted {
		return nil, bizerror.ErrProjectNotFound
	}

	var members []domain.ProjectMember
	if err := db.Where(&domain.ProjectMember{ProjectID: project.ID}).Find(&members).Error; err != nil {
		return nil, err
	}
	return &domain.ProjectDetail{Project: project, Members: members}, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
