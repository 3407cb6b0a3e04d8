package tool_test

import (
	"sync"
	"testing"

	"worksite/authz"
	"worksite/bizerror"
	"worksite/domain"
	"worksite/event"
	"worksite/persistence"
	"worksite/testinfra"
	"worksite/tool"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("worksite")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(
		&domain.Tool{}, &domain.ToolAssignment{}, &domain.ToolMaintenance{},
		&event.EventRecord{}).Error).To(BeNil())

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

func projectCtx(projectID types.ID) *authz.AuthorizedContext {
	return &authz.AuthorizedContext{
		Project: &domain.ProjectDetail{Project: domain.Project{ID: projectID, Owner: 10}},
		Role:    domain.ProjectRoleProjectManager,
	}
}

func TestCreateTool(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	t.Run("only admins and project managers may register tools", func(t *testing.T) {
		_, err := tool.CreateTool(&domain.ToolCreating{Name: "drill"},
			testinfra.BuildSession(30, "worker", domain.GlobalRoleWorker))
		Expect(err).To(Equal(bizerror.ErrForbidden))

		created, err := tool.CreateTool(&domain.ToolCreating{Name: "drill", SerialNo: "D-1"},
			testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager))
		Expect(err).To(BeNil())
		Expect(created.Name).To(Equal("drill"))
	})
}

func TestAssignAndReturnTool(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	pm := testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)
	drill, err := tool.CreateTool(&domain.ToolCreating{Name: "drill"}, pm)
	Expect(err).To(BeNil())

	t.Run("second assignment must wait for the first to be returned", func(t *testing.T) {
		events, restore := interceptEvents()
		defer restore()

		assignment, err := tool.AssignTool(projectCtx(100),
			&domain.ToolAssigning{ToolID: drill.ID, ProjectID: 100, AssignedTo: 30}, pm)
		Expect(err).To(BeNil())
		Expect(assignment.ProjectID).To(Equal(types.ID(100)))
		Expect(assignment.ReturnTime.IsZero()).To(BeTrue())

		_, err = tool.AssignTool(projectCtx(200),
			&domain.ToolAssigning{ToolID: drill.ID, ProjectID: 200}, pm)
		Expect(err).To(Equal(bizerror.ErrAlreadyAssigned))

		Expect(len(*events)).To(Equal(1))
		Expect((*events)[0].Name).To(Equal(event.EventToolAssigned))
		Expect((*events)[0].TargetUserID).To(Equal(types.ID(30)))

		returned, err := tool.ReturnTool(&authz.AuthorizedContext{
			Project: &domain.ProjectDetail{Project: domain.Project{ID: 100, Owner: 10}},
			Role:    domain.ProjectRoleProjectManager, Resource: assignment, Tool: drill}, pm)
		Expect(err).To(BeNil())
		Expect(returned.ReturnTime.IsZero()).To(BeFalse())

		Expect(len(*events)).To(Equal(2))
		Expect((*events)[1].Name).To(Equal(event.EventToolReturned))

		// double return fails without touching the stored return time
		_, err = tool.ReturnTool(&authz.AuthorizedContext{
			Project: &domain.ProjectDetail{Project: domain.Project{ID: 100, Owner: 10}},
			Role:    domain.ProjectRoleProjectManager, Resource: assignment, Tool: drill}, pm)
		Expect(err).To(Equal(bizerror.ErrNoActiveAssignment))

		// and the tool can be assigned again afterwards
		_, err = tool.AssignTool(projectCtx(200),
			&domain.ToolAssigning{ToolID: drill.ID, ProjectID: 200}, pm)
		Expect(err).To(BeNil())
	})

	t.Run("assignment history is listed per project", func(t *testing.T) {
		records, err := tool.QueryAssignments(projectCtx(100), pm)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(1))
		Expect((*records)[0].ToolID).To(Equal(drill.ID))
		Expect((*records)[0].ReturnTime.IsZero()).To(BeFalse())

		records, err = tool.QueryAssignments(projectCtx(999), pm)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(BeZero())
	})

	t.Run("assigning an unknown tool fails", func(t *testing.T) {
		_, restore := interceptEvents()
		defer restore()

		_, err := tool.AssignTool(projectCtx(100),
			&domain.ToolAssigning{ToolID: 9999, ProjectID: 100}, pm)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}

func TestConcurrentToolAssignment(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	origin := event.InvokeHandlersFunc
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult { return nil }
	defer func() { event.InvokeHandlersFunc = origin }()

	pm := testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)
	hammer, err := tool.CreateTool(&domain.ToolCreating{Name: "hammer"}, pm)
	Expect(err).To(BeNil())

	t.Run("parallel assigns leave exactly one active assignment", func(t *testing.T) {
		const attempts = 4
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = tool.AssignTool(projectCtx(types.ID(100+i)),
					&domain.ToolAssigning{ToolID: hammer.ID, ProjectID: types.ID(100 + i)}, pm)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				Expect(err).To(Equal(bizerror.ErrAlreadyAssigned))
			}
		}
		Expect(succeeded).To(Equal(1))

		var active int
		db := persistence.ActiveDataSourceManager.GormDB(nil)
		Expect(db.Model(&domain.ToolAssignment{}).
			Where("tool_id = ? AND return_time = ?", hammer.ID, types.Timestamp{}).
			Count(&active).Error).To(BeNil())
		Expect(active).To(Equal(1))
	})
}

func TestToolMaintenance(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	pm := testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager)
	saw, err := tool.CreateTool(&domain.ToolCreating{Name: "saw"}, pm)
	Expect(err).To(BeNil())

	toolCtx := &authz.AuthorizedContext{
		Project: &domain.ProjectDetail{Project: domain.Project{ID: 100, Owner: 10}},
		Role:    domain.ProjectRoleTeamLeader, Tool: saw,
	}

	t.Run("maintenance is pinned to the project it was created under", func(t *testing.T) {
		m, err := tool.CreateMaintenance(toolCtx, &domain.ToolMaintenanceCreating{Note: "oil change"}, pm)
		Expect(err).To(BeNil())
		Expect(m.ProjectID).To(Equal(types.ID(100)))
		Expect(m.ToolID).To(Equal(saw.ID))

		records, err := tool.QueryMaintenances(toolCtx, pm)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(1))

		done, err := tool.DoneMaintenance(&authz.AuthorizedContext{
			Project: toolCtx.Project, Role: toolCtx.Role, Resource: m, Tool: saw}, pm)
		Expect(err).To(BeNil())
		Expect(done.DoneTime.IsZero()).To(BeFalse())

		// completing twice fails
		_, err = tool.DoneMaintenance(&authz.AuthorizedContext{
			Project: toolCtx.Project, Role: toolCtx.Role, Resource: m, Tool: saw}, pm)
		Expect(err).To(Equal(bizerror.ErrInvalidArguments))
	})
}
