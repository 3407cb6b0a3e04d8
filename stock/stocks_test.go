package stock_test

import (
	"testing"

	"worksite/authz"
	"worksite/bizerror"
	"worksite/domain"
	"worksite/event"
	"worksite/persistence"
	"worksite/stock"
	"worksite/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("worksite")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&domain.StockItem{}, &event.EventRecord{}).Error).To(BeNil())

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

func buildAuthCtx(item *domain.StockItem) *authz.AuthorizedContext {
	return &authz.AuthorizedContext{
		Project: &domain.ProjectDetail{Project: domain.Project{ID: 100, Owner: 10}},
		Role:    domain.ProjectRoleWorker, Resource: item,
	}
}

func TestApplyMovement(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	sec := testinfra.BuildSession(30, "worker", domain.GlobalRoleWorker)

	createItem := func(quantity int64) *domain.StockItem {
		item, err := stock.CreateStockItem(buildAuthCtx(nil),
			&domain.StockItemCreating{ProjectID: 100, Name: "cement", Unit: "bag", Quantity: quantity}, sec)
		Expect(err).To(BeNil())
		return item
	}

	t.Run("should apply positive and negative deltas", func(t *testing.T) {
		item := createItem(10)
		events, restore := interceptEvents()
		defer restore()

		updated, err := stock.ApplyMovement(buildAuthCtx(item), &domain.StockMovement{Delta: 5, Reason: "delivery"}, sec)
		Expect(err).To(BeNil())
		Expect(updated.Quantity).To(Equal(int64(15)))

		updated, err = stock.ApplyMovement(buildAuthCtx(item), &domain.StockMovement{Delta: -15, Reason: "used"}, sec)
		Expect(err).To(BeNil())
		Expect(updated.Quantity).To(Equal(int64(0)))

		Expect(len(*events)).To(Equal(2))
		Expect((*events)[0].Name).To(Equal(event.EventStockUpdated))
	})

	t.Run("should refuse a delta that would drive the quantity negative", func(t *testing.T) {
		item := createItem(3)
		events, restore := interceptEvents()
		defer restore()

		_, err := stock.ApplyMovement(buildAuthCtx(item), &domain.StockMovement{Delta: -4}, sec)
		Expect(err).To(Equal(bizerror.ErrStockBelowZero))
		Expect(len(*events)).To(BeZero())

		var stored domain.StockItem
		db := persistence.ActiveDataSourceManager.GormDB(nil)
		Expect(db.Where("id = ?", item.ID).First(&stored).Error).To(BeNil())
		Expect(stored.Quantity).To(Equal(int64(3)))
	})

	t.Run("consuming exactly the remaining quantity is allowed", func(t *testing.T) {
		item := createItem(3)
		_, restore := interceptEvents()
		defer restore()

		updated, err := stock.ApplyMovement(buildAuthCtx(item), &domain.StockMovement{Delta: -3}, sec)
		Expect(err).To(BeNil())
		Expect(updated.Quantity).To(Equal(int64(0)))
	})
}

func TestQueryStockItems(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	sec := testinfra.BuildSession(30, "worker", domain.GlobalRoleWorker)

	t.Run("should only list items of the authorized project, skipping deleted ones", func(t *testing.T) {
		item, err := stock.CreateStockItem(buildAuthCtx(nil),
			&domain.StockItemCreating{ProjectID: 100, Name: "cement", Quantity: 1}, sec)
		Expect(err).To(BeNil())
		deleted, err := stock.CreateStockItem(buildAuthCtx(nil),
			&domain.StockItemCreating{ProjectID: 100, Name: "old rebar", Quantity: 1}, sec)
		Expect(err).To(BeNil())
		Expect(stock.DeleteStockItem(buildAuthCtx(deleted), sec)).To(BeNil())

		db := persistence.ActiveDataSourceManager.GormDB(nil)
		Expect(db.Create(&domain.StockItem{ID: 999, ProjectID: 200, Name: "other site",
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		items, err := stock.QueryStockItems(buildAuthCtx(nil), sec)
		Expect(err).To(BeNil())
		Expect(len(*items)).To(Equal(1))
		Expect((*items)[0].ID).To(Equal(item.ID))
	})
}
