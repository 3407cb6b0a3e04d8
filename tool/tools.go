package tool

import (
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
	toolIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateToolFunc        = CreateTool
	QueryToolsFunc        = QueryTools
	AssignToolFunc        = AssignTool
	QueryAssignmentsFunc  = QueryAssignments
	ReturnToolFunc        = ReturnTool
	CreateMaintenanceFunc = CreateMaintenance
	QueryMaintenancesFunc = QueryMaintenances
	DoneMaintenanceFunc   = DoneMaintenance
)

// CreateTool registers a tool in the shared pool. Tools belong to the
// organization, not to a project, until an assignment places them.
func CreateTool(c *domain.ToolCreating, sec *session.Session) (*domain.Tool, error) {
	if !sec.HasGlobalRole(domain.GlobalRoleAdmin, domain.GlobalRoleProjectManager) {
		return nil, bizerror.ErrForbidden
	}
	t := domain.Tool{ID: idgen.NextID(toolIdWorker), Name: c.Name, SerialNo: c.SerialNo,
		CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func QueryTools(sec *session.Session) (*[]domain.Tool, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var tools []domain.Tool
	if err := db.Where("is_deleted = ?", false).Find(&tools).Error; err != nil {
		return nil, err
	}
	return &tools, nil
}

// AssignTool places a tool on the caller's project. At most one active
// assignment may exist per tool; the second assign fails until the first
// is returned. The tool row is locked for the transaction so concurrent
// assigns serialize and the active-assignment check reads committed state.
func AssignTool(authCtx *authz.AuthorizedContext, c *domain.ToolAssigning, sec *session.Session) (*domain.ToolAssignment, error) {
	var assignment domain.ToolAssignment
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var tool domain.Tool
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ? AND is_deleted = ?", c.ToolID, false).First(&tool).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrNotFound
			}
			return err
		}

		var active domain.ToolAssignment
		err := tx.Where("tool_id = ? AND return_time = ?", c.ToolID, types.Timestamp{}).First(&active).Error
		if err == nil {
			return bizerror.ErrAlreadyAssigned
		}
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}

		assignment = domain.ToolAssignment{
			ID:     idgen.NextID(toolIdWorker),
			ToolID: c.ToolID, ProjectID: authCtx.Project.ID,
			AssignedTo: c.AssignedTo, AssignTime: types.CurrentTimestamp(),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.EventToolAssigned, "tool", c.ToolID, authCtx.Project.ID, c.AssignedTo,
			event.Payload{"toolId": c.ToolID.String(), "assignmentId": assignment.ID.String(),
				"assignedTo": c.AssignedTo.String()},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &assignment, nil
}

// QueryAssignments lists a project's assignment records, newest first.
// Returned assignments stay in the list as history.
func QueryAssignments(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.ToolAssignment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []domain.ToolAssignment
	if err := db.Where("project_id = ?", authCtx.Project.ID).
		Order("assign_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// ReturnTool closes the active assignment. The guard in the UPDATE makes a
// double return a no-op failure instead of overwriting the return time.
func ReturnTool(authCtx *authz.AuthorizedContext, sec *session.Session) (*domain.ToolAssignment, error) {
	assignment := authCtx.ToolAssignment()

	now := types.CurrentTimestamp()
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		updating := tx.Model(&domain.ToolAssignment{}).
			Where("id = ? AND return_time = ?", assignment.ID, types.Timestamp{}).
			Update("return_time", now)
		if updating.Error != nil {
			return updating.Error
		}
		if updating.RowsAffected != 1 {
			return bizerror.ErrNoActiveAssignment
		}

		var err error
		ev, err = event.CreateEvent(event.EventToolReturned, "tool", assignment.ToolID,
			assignment.ProjectID, types.ID(0),
			event.Payload{"toolId": assignment.ToolID.String(), "assignmentId": assignment.ID.String()},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	returned := *assignment
	returned.ReturnTime = now
	return &returned, nil
}

// CreateMaintenance pins the record to the project the tool is assigned to
// at creation time; later moves of the tool do not migrate the record.
func CreateMaintenance(authCtx *authz.AuthorizedContext, c *domain.ToolMaintenanceCreating, sec *session.Session) (*domain.ToolMaintenance, error) {
	m := domain.ToolMaintenance{
		ID:     idgen.NextID(toolIdWorker),
		ToolID: authCtx.Tool.ID, ProjectID: authCtx.Project.ID,
		Note: c.Note, DueTime: c.DueTime,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func QueryMaintenances(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.ToolMaintenance, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []domain.ToolMaintenance
	if err := db.Where("tool_id = ? AND is_deleted = ?", authCtx.Tool.ID, false).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func DoneMaintenance(authCtx *authz.AuthorizedContext, sec *session.Session) (*domain.ToolMaintenance, error) {
	m := authCtx.Maintenance()

	now := types.CurrentTimestamp()
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	updating := db.Model(&domain.ToolMaintenance{}).
		Where("id = ? AND done_time = ?", m.ID, types.Timestamp{}).
		Update("done_time", now)
	if updating.Error != nil {
		return nil, updating.Error
	}
	if updating.RowsAffected != 1 {
		return nil, bizerror.ErrInvalidArguments
	}

	done := *m
	done.DoneTime = now
	return &done, nil
}
