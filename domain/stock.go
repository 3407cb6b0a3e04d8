package domain

import (
	"github.com/fundwit/go-commons/types"
)

type StockItem struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Quantity int64  `json:"quantity"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type StockItemCreating struct {
	ProjectID types.ID `json:"projectId" binding:"required"`
	Name      string   `json:"name" binding:"required,lte=120"`
	Unit      string   `json:"unit"`
	Quantity  int64    `json:"quantity" binding:"gte=0"`
}

// StockMovement is a relative quantity change, negative for consumption.
type StockMovement struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}
