package plan_test

import (
	"sort"
	"sync"
	"testing"

	"worksite/authz"
	"worksite/bizerror"
	"worksite/domain"
	"worksite/event"
	"worksite/persistence"
	"worksite/plan"
	"worksite/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("worksite")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(
		&domain.Plan{}, &domain.PlanVersion{}, &event.EventRecord{}).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func interceptEvents() (*[]event.EventRecord, func()) {
	origin := event.InvokeHandlersFunc
	captured := []event.EventRecord{}
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
		if record != nil {
			captured = append(captured, *record)
		}
		return nil
	}
	return &captured, func() { event.InvokeHandlersFunc = origin }
}

func projectCtx() *authz.AuthorizedContext {
	return &authz.AuthorizedContext{
		Project: &domain.ProjectDetail{Project: domain.Project{ID: 100, Owner: 10}},
		Role:    domain.ProjectRoleProjectManager,
	}
}

func planCtx(p *domain.Plan) *authz.AuthorizedContext {
	c := projectCtx()
	c.Resource = p
	return c
}

func TestPlanVersions(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	sec := testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)
	p, err := plan.CreatePlan(projectCtx(), &domain.PlanCreating{ProjectID: 100, Name: "ground floor"}, sec)
	Expect(err).To(BeNil())
	Expect(p.ProjectID).To(Equal(types.ID(100)))

	t.Run("versions get increasing sequence numbers and emit events", func(t *testing.T) {
		events, restore := interceptEvents()
		defer restore()

		v1, err := plan.CreatePlanVersion(planCtx(p), &domain.PlanVersionCreating{PlanID: p.ID, FileRef: "blob/a"}, sec)
		Expect(err).To(BeNil())
		Expect(v1.Seq).To(Equal(1))
		Expect(v1.ProjectID).To(Equal(types.ID(100)))

		v2, err := plan.CreatePlanVersion(planCtx(p), &domain.PlanVersionCreating{PlanID: p.ID, FileRef: "blob/b"}, sec)
		Expect(err).To(BeNil())
		Expect(v2.Seq).To(Equal(2))

		Expect(len(*events)).To(Equal(2))
		Expect((*events)[0].Name).To(Equal(event.EventPlanVersionAdded))

		versions, err := plan.QueryPlanVersions(planCtx(p), sec)
		Expect(err).To(BeNil())
		Expect(len(*versions)).To(Equal(2))
		Expect((*versions)[0].Seq).To(Equal(1))
		Expect((*versions)[1].Seq).To(Equal(2))
	})

	t.Run("a version for a deleted plan is refused", func(t *testing.T) {
		ghost := domain.Plan{ID: 999, ProjectID: 100, Name: "ghost", IsDeleted: true}
		Expect(persistence.ActiveDataSourceManager.GormDB(nil).Create(&ghost).Error).To(BeNil())

		_, err := plan.CreatePlanVersion(planCtx(&ghost), &domain.PlanVersionCreating{PlanID: ghost.ID, FileRef: "blob/x"}, sec)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("deleted plans vanish from the listing", func(t *testing.T) {
		records, err := plan.QueryPlans(projectCtx(), sec)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(1))

		Expect(plan.DeletePlan(planCtx(p), sec)).To(BeNil())

		records, err = plan.QueryPlans(projectCtx(), sec)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(BeZero())
	})
}

func TestConcurrentPlanVersions(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	origin := event.InvokeHandlersFunc
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult { return nil }
	defer func() { event.InvokeHandlersFunc = origin }()

	sec := testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)
	p, err := plan.CreatePlan(projectCtx(), &domain.PlanCreating{ProjectID: 100, Name: "ground floor"}, sec)
	Expect(err).To(BeNil())

	t.Run("parallel uploads never claim the same sequence number", func(t *testing.T) {
		const uploads = 4
		var wg sync.WaitGroup
		errs := make([]error, uploads)
		for i := 0; i < uploads; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = plan.CreatePlanVersion(planCtx(p),
					&domain.PlanVersionCreating{PlanID: p.ID, FileRef: "blob/n"}, sec)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			Expect(err).To(BeNil())
		}

		versions, err := plan.QueryPlanVersions(planCtx(p), sec)
		Expect(err).To(BeNil())
		seqs := []int{}
		for _, v := range *versions {
			seqs = append(seqs, v.Seq)
		}
		sort.Ints(seqs)
		Expect(seqs).To(Equal([]int{1, 2, 3, 4}))
	})
}
