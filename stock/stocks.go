package stock

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
	stockIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateStockItemFunc = CreateStockItem
	QueryStockItemsFunc = QueryStockItems
	ApplyMovementFunc   = ApplyMovement
	DeleteStockItemFunc = DeleteStockItem
)

func CreateStockItem(authCtx *authz.AuthorizedContext, c *domain.StockItemCreating, sec *session.Session) (*domain.StockItem, error) {
	item := domain.StockItem{ID: idgen.NextID(stockIdWorker), ProjectID: authCtx.Project.ID,
		Name: c.Name, Unit: c.Unit, Quantity: c.Quantity, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func QueryStockItems(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.StockItem, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var items []domain.StockItem
	if err := db.Where("project_id = ? AND is_deleted = ?", authCtx.Project.ID, false).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &items, nil
}

// ApplyMovement adjusts the quantity by a relative delta. The guard rides in
// the UPDATE itself, so concurrent consumptions can never drive the quantity
// negative regardless of interleaving.
func ApplyMovement(authCtx *authz.AuthorizedContext, m *domain.StockMovement, sec *session.Session) (*domain.StockItem, error) {
	item := authCtx.StockItem()

	var updated domain.StockItem
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		updating := tx.Model(&domain.StockItem{}).
			Where("id = ? AND quantity + ? >= 0", item.ID, m.Delta).
			Update("quantity", gorm.Expr("quantity + ?", m.Delta))
		if updating.Error != nil {
			return updating.Error
		}
		if updating.RowsAffected != 1 {
			return bizerror.ErrStockBelowZero
		}
		if err := tx.Where("id = ?", item.ID).First(&updated).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.EventStockUpdated, "stockItem", item.ID, item.ProjectID, types.ID(0),
			event.Payload{"stockItemId": item.ID.String(), "delta": m.Delta,
				"quantity": updated.Quantity, "reason": m.Reason},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

func DeleteStockItem(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.StockItem{}).Where("id = ?", authCtx.StockItem().ID).
		Update("is_deleted", true).Error
}
