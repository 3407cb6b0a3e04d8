package invoice

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
	invoiceIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateInvoiceFunc       = CreateInvoice
	QueryInvoicesFunc       = QueryInvoices
	UpdateInvoiceStatusFunc = UpdateInvoiceStatus
	DeleteInvoiceFunc       = DeleteInvoice
)

// Invoice statuses move forward only: DRAFT to SENT to PAID.
var invoiceStatusOrder = map[string]int{
	domain.InvoiceStatusDraft: 0,
	domain.InvoiceStatusSent:  1,
	domain.InvoiceStatusPaid:  2,
}

func CreateInvoice(authCtx *authz.AuthorizedContext, c *domain.InvoiceCreating, sec *session.Session) (*domain.Invoice, error) {
	i := domain.Invoice{ID: idgen.NextID(invoiceIdWorker), ProjectID: authCtx.Project.ID,
		Number: c.Number, AmountCent: c.AmountCent, Status: domain.InvoiceStatusDraft,
		CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func QueryInvoices(authCtx *authz.AuthorizedContext, sec *session.Session) (*[]domain.Invoice, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	var records []domain.Invoice
	if err := db.Where("project_id = ? AND is_deleted = ?", authCtx.Project.ID, false).
		Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func UpdateInvoiceStatus(authCtx *authz.AuthorizedContext, u *domain.InvoiceStatusUpdating, sec *session.Session) (*domain.Invoice, error) {
	inv := authCtx.Invoice()

	if invoiceStatusOrder[u.Status] <= invoiceStatusOrder[inv.Status] {
		return nil, bizerror.ErrInvalidArguments
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		updating := tx.Model(&domain.Invoice{}).
			Where("id = ? AND status = ?", inv.ID, inv.Status).
			Update("status", u.Status)
		if updating.Error != nil {
			return updating.Error
		}
		if updating.RowsAffected != 1 {
			return bizerror.ErrInvalidArguments
		}

		var err error
		ev, err = event.CreateEvent(event.EventInvoiceUpdated, "invoice", inv.ID, inv.ProjectID, types.ID(0),
			event.Payload{"invoiceId": inv.ID.String(), "fromStatus": inv.Status, "toStatus": u.Status},
			&sec.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	updated := *inv
	updated.Status = u.Status
	return &updated, nil
}

func DeleteInvoice(authCtx *authz.AuthorizedContext, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Invoice{}).Where("id = ?", authCtx.Invoice().ID).
		Update("is_deleted", true).Error
}
