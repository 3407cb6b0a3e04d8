package plan

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
	planIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreatePlanFunc        = CreatePlan
	QueryPlansFunc        = QueryPlans
	DeletePlanFunc        = DeletePlan
	CreatePlanVersionFunc = CreatePlanVersion
	QueryPlanVersionsFunc = QueryPlanVersions
)

func CreatePlan(authCtx *authz.AuthorizedContext, c *domain.PlanCreating, sec *session.Session) (*domain.Plan, error) {
	p := domain.Plan{ID: idgen.NextID(planIdWorker), ProjectID: authCtx.Project.ID, Name: c.Name,
		CreateTime: types.CurrentTimestamp(), Creator: sec.Identity.ID}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func QueryPlans(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.Plan, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var plans []domain.Plan
	if err := db.Where("project_id = ? AND is_deleted = ?", authCtx.Project.ID, false).
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return &plans, nil
}

func DeletePlan(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Plan{}).Where("id = ?", authCtx.Plan().ID).
		Update("is_deleted", true).Error
}

// CreatePlanVersion appends the next revision. The plan row is locked for
// the duration of the transaction, so concurrent uploads for the same plan
// serialize and every version gets a distinct seq.
func CreatePlanVersion(authCtx *authz.AuthorizedContext, c *domain.PlanVersionCreating, sec *session.Session) (*domain.PlanVersion, error) {
	p := authCtx.Plan()

	var version domain.PlanVersion
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked domain.Plan
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ? AND is_deleted = ?", p.ID, false).First(&locked).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrNotFound
			}
			return err
		}

		var maxSeq struct{ MaxSeq int }
		if err := tx.Table("plan_versions").Select("COALESCE(MAX(seq), 0) AS max_seq").
			Where("plan_id = ?", p.ID).Scan(&maxSeq).Error; err != nil {
			return err
		}

		version = domain.PlanVersion{
			ID:     idgen.NextID(planIdWorker),
			PlanID: p.ID, ProjectID: p.ProjectID,
			Seq: maxSeq.MaxSeq + 1, FileRef: c.FileRef,
			CreateTime: types.CurrentTimestamp(), Creator: sec.Identity.ID,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.EventPlanVersionAdded, "plan", p.ID, p.ProjectID, types.ID(0),
			event.Payload{"planId": p.ID.String(), "versionId": version.ID.String(), "seq": version.Seq},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &version, nil
}

func QueryPlanVersions(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.PlanVersion, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var versions []domain.PlanVersion
	if err := db.Where("plan_id = ? AND is_deleted = ?", authCtx.Plan().ID, false).
		Order("seq ASC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return &versions, nil
}
