package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	InvoiceStatusDraft = "DRAFT"
	InvoiceStatusSent  = "SENT"
	InvoiceStatusPaid  = "PAID"
)

type Invoice struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Number     string `json:"number"`
	AmountCent int64  `json:"amountCent"`
	Status     string `json:"status"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type InvoiceCreating struct {
	ProjectID  types.ID `json:"projectId" binding:"required"`
	Number     string   `json:"number" binding:"required,lte=60"`
	AmountCent int64    `json:"amountCent" binding:"required,gt=0"`
}

type InvoiceStatusUpdating struct {
	Status string `json:"status" binding:"required,oneof=DRAFT SENT PAID"`
}
