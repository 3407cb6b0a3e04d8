package project

import (
	"worksite/account"
	"worksite/authz"
	"worksite/bizerror"
	"worksite/domain"
	"worksite/event"
	"worksite/idgen"
	"worksite/persistence"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	projectIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateProjectFunc = CreateProject
	QueryProjectsFunc = QueryProjects
	DetailProjectFunc = DetailProject
	UpdateProjectFunc = UpdateProject
	DeleteProjectFunc = DeleteProject
	AddMemberFunc     = AddMember
	RemoveMemberFunc  = RemoveMember
)

// CreateProject makes the creator the project owner. The owner never
// appears in the member list; OWNER is derived from the owner field.
func CreateProject(c *domain.ProjectCreating, sec *session.Session) (*domain.Project, error) {
	if !sec.HasGlobalRole(domain.GlobalRoleAdmin, domain.GlobalRoleProjectManager) {
		return nil, bizerror.ErrForbidden
	}

	p := domain.Project{ID: idgen.NextID(projectIdWorker), Name: c.Name,
		Owner: sec.Identity.ID, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// QueryProjects lists projects the caller owns or is a member of.
func QueryProjects(sec *session.Session) (*[]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var projects []domain.Project
	err := db.Where("is_deleted = ?", false).
		Where("owner = ? OR id IN (SELECT project_id FROM project_members WHERE member_id = ?)",
			sec.Identity.ID, sec.Identity.ID).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return &projects, nil
}

type MemberDetail struct {
	domain.ProjectMember
	MemberName string `json:"memberName"`
}

type Detail struct {
	domain.Project
	Members []MemberDetail `json:"members"`
}

// DetailProject attaches account names to the member list. A member whose
// account can not be resolved keeps an empty name.
func DetailProject(authCtx *authz.AuthorizedContext, sec *session.Session) (*Detail, error) {
	ids := make([]types.ID, 0, len(authCtx.Project.Members))
	for _, m := range authCtx.Project.Members {
		ids = append(ids, m.MemberID)
	}
	names, err := account.QueryAccountNamesFunc(ids)
	if err != nil {
		return nil, err
	}

	detail := Detail{Project: authCtx.Project.Project}
	detail.Members = make([]MemberDetail, 0, len(authCtx.Project.Members))
	for _, m := range authCtx.Project.Members {
		detail.Members = append(detail.Members, MemberDetail{ProjectMember: m, MemberName: names[m.MemberID]})
	}
	return &detail, nil
}

func UpdateProject(authCtx *authz.AuthorizedContext, u *domain.ProjectUpdating, sec *session.Session) (*domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var updated domain.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Project{}).Where("id = ?", authCtx.Project.ID).
			Update(domain.Project{Name: u.Name}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", authCtx.Project.ID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject soft-deletes; sub-resources stay in place but become
// unresolvable, which revokes all access to them.
func DeleteProject(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Project{}).Where("id = ?", authCtx.Project.ID).
		Update("is_deleted", true).Error
}

func AddMember(authCtx *authz.AuthorizedContext, c *domain.ProjectMemberCreation, sec *session.Session) error {
	if !domain.IsProjectRole(c.Role) {
		return bizerror.ErrInvalidArguments
	}
	if authCtx.Project.Owner == c.MemberID {
		return bizerror.ErrOwnerAsMember
	}
	if authCtx.Role != domain.RoleOwner && sec.Identity.ID == c.MemberID {
		return bizerror.ErrMemberSelfGrant
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		user := account.User{ID: c.MemberID}
		if err := tx.Model(&account.User{}).Where(&user).Where("is_deleted = ?", false).First(&user).Error; err != nil {
			return err
		}

		record := domain.ProjectMember{ProjectID: authCtx.Project.ID, MemberID: c.MemberID,
			Role: c.Role, CreateTime: types.CurrentTimestamp()}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.EventProjectMemberAdded, "project", authCtx.Project.ID,
			authCtx.Project.ID, c.MemberID,
			event.Payload{"memberId": c.MemberID.String(), "role": c.Role},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

func RemoveMember(authCtx *authz.AuthorizedContext, memberID types.ID, sec *session.Session) error {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		record := domain.ProjectMember{}
		err := tx.Where("project_id = ? AND member_id = ?", authCtx.Project.ID, memberID).First(&record).Error
		if err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil
			}
			return err
		}
		if err := tx.Where("project_id = ? AND member_id = ?", authCtx.Project.ID, memberID).
			Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.EventProjectMemberRemoved, "project", authCtx.Project.ID,
			authCtx.Project.ID, types.ID(0),
			event.Payload{"memberId": memberID.String()},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}
