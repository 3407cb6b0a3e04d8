package domain

import (
	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name  string   `json:"name"`
	Owner types.ID `json:"owner" sql:"type:BIGINT UNSIGNED NOT NULL"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type ProjectCreating struct {
	Name string `json:"name" binding:"required,lte=60"`
}

type ProjectUpdating struct {
	Name string `json:"name" binding:"required,lte=60"`
}

type ProjectMember struct {
	ProjectID types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberID  types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string          `json:"role"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type ProjectMemberCreation struct {
	MemberID types.ID `json:"memberId" binding:"required"`
	Role     string   `json:"role" binding:"required"`
}

type ProjectMemberDeletion struct {
	MemberID types.ID `form:"memberId" binding:"required"`
}

// ProjectDetail carries a project together with its member list, the unit
// the role evaluator works on.
type ProjectDetail struct {
	Project

	Members []ProjectMember `json:"members"`
}
