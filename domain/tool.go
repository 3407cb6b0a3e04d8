package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Tool carries no project reference: its owning project is derived from the
// single active assignment (ReturnTime zero).
type Tool struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name     string `json:"name"`
	SerialNo string `json:"serialNo"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type ToolCreating struct {
	Name     string `json:"name" binding:"required,lte=120"`
	SerialNo string `json:"serialNo"`
}

type ToolAssignment struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ToolID    types.ID `json:"toolId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	AssignedTo types.ID `json:"assignedTo"`

	AssignTime types.Timestamp `json:"assignTime" sql:"type:DATETIME(6)"`
	ReturnTime types.Timestamp `json:"returnTime" sql:"type:DATETIME(6)"`
}

type ToolAssigning struct {
	ToolID     types.ID `json:"toolId" binding:"required"`
	ProjectID  types.ID `json:"projectId" binding:"required"`
	AssignedTo types.ID `json:"assignedTo"`
}

// ToolMaintenance records planned or completed upkeep. Its own ProjectID is
// authoritative for authorization even when the tool has moved since.
type ToolMaintenance struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ToolID    types.ID `json:"toolId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Note     string          `json:"note"`
	DueTime  types.Timestamp `json:"dueTime" sql:"type:DATETIME(6)"`
	DoneTime types.Timestamp `json:"doneTime" sql:"type:DATETIME(6)"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

type ToolMaintenanceCreating struct {
	Note    string          `json:"note" binding:"required"`
	DueTime types.Timestamp `json:"dueTime"`
}
