package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Milestone struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name     string          `json:"name"`
	DueTime  types.Timestamp `json:"dueTime" sql:"type:DATETIME(6)"`
	DoneTime types.Timestamp `json:"doneTime" sql:"type:DATETIME(6)"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type MilestoneCreating struct {
	ProjectID types.ID        `json:"projectId" binding:"required"`
	Name      string          `json:"name" binding:"required,lte=120"`
	DueTime   types.Timestamp `json:"dueTime"`
}
