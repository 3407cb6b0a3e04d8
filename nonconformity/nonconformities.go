package nonconformity

import (
	"errors"

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
	ncIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateNcFunc     = CreateNonConformity
	QueryNcsFunc     = QueryNonConformities
	DetailNcFunc     = DetailNonConformity
	TransitionNcFunc = TransitionNonConformity
	AssignNcFunc     = AssignNonConformity
	DeleteNcFunc     = DeleteNonConformity
)

func CreateNonConformity(authCtx *authz.AuthorizedContext, c *domain.NonConformityCreating, sec *session.Session) (*domain.NonConformity, error) {
	now := types.CurrentTimestamp()
	nc := domain.NonConformity{
		ID: idgen.NextID(ncIdWorker), ProjectID: authCtx.Project.ID,
		Title: c.Title, Description: c.Description,
		Status: domain.NcStatusOpen, Priority: c.Priority,
		PlanID: c.PlanID, VersionID: c.VersionID, Annotation: c.Annotation,
		CreateTime: now, Creator: sec.Identity.ID,
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&nc).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, domain.NcHistory{
			NcID: nc.ID, Action: domain.NcActionCreated,
			ToStatus: domain.NcStatusOpen, UserID: sec.Identity.ID, Timestamp: now,
		}); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.EventNcCreated, "nc", nc.ID, nc.ProjectID, types.ID(0),
			event.Payload{"ncId": nc.ID.String(), "title": nc.Title, "status": nc.Status},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &nc, nil
}

func QueryNonConformities(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.NonConformity, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []domain.NonConformity
	if err := db.Where("project_id = ? AND is_deleted = ?", authCtx.Project.ID, false).
		Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func DetailNonConformity(authCtx *authz.AuthorizedContext, sec *session.Session) (*domain.NonConformityDetail, error) {
	nc := authCtx.NonConformity()
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var history []domain.NcHistory
	if err := db.Where("nc_id = ?", nc.ID).Order("timestamp ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return &domain.NonConformityDetail{NonConformity: *nc, History: history}, nil
}

// TransitionNonConformity moves a record one edge along the lifecycle graph.
// Validation to VALIDATED is reserved for QUALITY (the owner passes like
// everywhere else). An illegal transition leaves no trace: no status change,
// no history row, no event.
func TransitionNonConformity(authCtx *authz.AuthorizedContext, req *domain.NcTransitionRequest, sec *session.Session) (*domain.NonConformity, error) {
	nc := authCtx.NonConformity()

	if err := CheckTransition(nc.Status, req.Status); err != nil {
		return nil, err
	}
	if req.Status == domain.NcStatusValidated &&
		authCtx.Role != domain.RoleOwner && authCtx.Role != domain.ProjectRoleQuality {
		return nil, bizerror.ErrInsufficientRole
	}

	now := types.CurrentTimestamp()
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		// guarded update: fail when another request changed the status
		// between resolution and here
		updating := tx.Model(&domain.NonConformity{}).
			Where("id = ? AND status = ?", nc.ID, nc.Status).
			Update("status", req.Status)
		if updating.Error != nil {
			return updating.Error
		}
		if updating.RowsAffected != 1 {
			return &bizerror.ErrInvalidTransition{From: nc.Status, To: req.Status}
		}

		if err := appendHistory(tx, domain.NcHistory{
			NcID: nc.ID, Action: domain.NcActionStatusChanged,
			FromStatus: nc.Status, ToStatus: req.Status,
			UserID: sec.Identity.ID, Comment: req.Comment, Timestamp: now,
		}); err != nil {
			return err
		}

		name := event.EventNcUpdated
		if req.Status == domain.NcStatusValidated {
			name = event.EventNcValidated
		}
		var err error
		ev, err = event.CreateEvent(name, "nc", nc.ID, nc.ProjectID, types.ID(0),
			event.Payload{"ncId": nc.ID.String(), "fromStatus": nc.Status, "toStatus": req.Status},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	updated := *nc
	updated.Status = req.Status
	return &updated, nil
}

// AssignNonConformity reassigns and forces the record back to IN_PROGRESS
// from whatever status it is in, including VALIDATED. Assignment is the one
// lifecycle move not constrained by the transition graph.
func AssignNonConformity(authCtx *authz.AuthorizedContext, req *domain.NcAssignmentRequest, sec *session.Session) (*domain.NonConformity, error) {
	nc := authCtx.NonConformity()

	now := types.CurrentTimestamp()
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := assigneeIsMember(tx, authCtx, req.AssignedTo); err != nil {
			return err
		}

		if err := tx.Model(&domain.NonConformity{}).Where("id = ?", nc.ID).
			Updates(map[string]interface{}{
				"assigned_to": req.AssignedTo, "status": domain.NcStatusInProgress,
			}).Error; err != nil {
			return err
		}

		if err := appendHistory(tx, domain.NcHistory{
			NcID: nc.ID, Action: domain.NcActionAssigned,
			FromStatus: nc.Status, ToStatus: domain.NcStatusInProgress,
			UserID: sec.Identity.ID, Comment: req.Comment, Timestamp: now,
		}); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.EventNcUpdated, "nc", nc.ID, nc.ProjectID, req.AssignedTo,
			event.Payload{"ncId": nc.ID.String(), "assignedTo": req.AssignedTo.String(),
				"status": domain.NcStatusInProgress},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	updated := *nc
	updated.Status = domain.NcStatusInProgress
	updated.AssignedTo = req.AssignedTo
	return &updated, nil
}

func DeleteNonConformity(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	nc := authCtx.NonConformity()

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.NonConformity{}).Where("id = ?", nc.ID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.EventNcDeleted, "nc", nc.ID, nc.ProjectID, types.ID(0),
			event.Payload{"ncId": nc.ID.String()}, &sec.Identity, tx)
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

func appendHistory(tx *gorm.DB, h domain.NcHistory) error {
	h.ID = idgen.NextID(ncIdWorker)
	return tx.Create(&h).Error
}

// assigneeIsMember accepts the owner or any listed member of the record's
// project as an assignee.
func assigneeIsMember(tx *gorm.DB, authCtx *authz.AuthorizedContext, userID types.ID) error {
	if userID == authCtx.Project.Owner {
		return nil
	}
	var member domain.ProjectMember
	err := tx.Where("project_id = ? AND member_id = ?", authCtx.Project.ID, userID).First(&member).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return bizerror.ErrInvalidArguments
		}
		return err
	}
	return nil
}

// IsInvalidTransition reports whether err is a lifecycle graph violation.
func IsInvalidTransition(err error) bool {
	var target *bizerror.ErrInvalidTransition
	return errors.As(err, &target)
}
