package milestone

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
	milestoneIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateMilestoneFunc   = CreateMilestone
	QueryMilestonesFunc   = QueryMilestones
	CompleteMilestoneFunc = CompleteMilestone
	DeleteMilestoneFunc   = DeleteMilestone
)

func CreateMilestone(authCtx *authz.AuthorizedContext, c *domain.MilestoneCreating, sec *session.Session) (*domain.Milestone, error) {
	m := domain.Milestone{ID: idgen.NextID(milestoneIdWorker), ProjectID: authCtx.Project.ID,
		Name: c.Name, DueTime: c.DueTime, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func QueryMilestones(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.Milestone, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []domain.Milestone
	if err := db.Where("project_id = ? AND is_deleted = ?", authCtx.Project.ID, false).
		Order("due_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// CompleteMilestone marks done exactly once; a second completion fails
// instead of moving the done time.
func CompleteMilestone(authCtx *authz.AuthorizedContext, sec *session.Session) (*domain.Milestone, error) {
	m := authCtx.Milestone()

	now := types.CurrentTimestamp()
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		updating := tx.Model(&domain.Milestone{}).
			Where("id = ? AND done_time = ?", m.ID, types.Timestamp{}).
			Update("done_time", now)
		if updating.Error != nil {
			return updating.Error
		}
		if updating.RowsAffected != 1 {
			return bizerror.ErrInvalidArguments
		}

		var err error
		ev, err = event.CreateEvent(event.EventMilestoneCompleted, "milestone", m.ID, m.ProjectID, types.ID(0),
			event.Payload{"milestoneId": m.ID.String(), "name": m.Name},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	done := *m
	done.DoneTime = now
	return &done, nil
}

func DeleteMilestone(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Milestone{}).Where("id = ?", authCtx.Milestone().ID).
		Update("is_deleted", true).Error
}
