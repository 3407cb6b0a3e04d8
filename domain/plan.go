package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Plan struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name string `json:"name"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	Creator    types.ID        `json:"creator"`
}

type PlanCreating struct {
	ProjectID types.ID `json:"projectId" binding:"required"`
	Name      string   `json:"name" binding:"required,lte=120"`
}

// PlanVersion is one uploaded revision of a plan. FileRef points into the
// external blob store; this core never touches file contents.
type PlanVersion struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	PlanID    types.ID `json:"planId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Seq     int    `json:"seq"`
	FileRef string `json:"fileRef"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	Creator    types.ID        `json:"creator"`
}

type PlanVersionCreating struct {
	PlanID  types.ID `json:"planId" binding:"required"`
	FileRef string   `json:"fileRef" binding:"required"`
}
