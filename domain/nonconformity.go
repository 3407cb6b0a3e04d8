package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Non-conformity lifecycle statuses.
const (
	NcStatusOpen       = "OPEN"
	NcStatusInProgress = "IN_PROGRESS"
	NcStatusResolved   = "RESOLVED"
	NcStatusValidated  = "VALIDATED"
)

// History actions.
const (
	NcActionCreated       = "CREATED"
	NcActionStatusChanged = "STATUS_CHANGED"
	NcActionAssigned      = "ASSIGNED"
)

type NonConformity struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`

	AssignedTo types.ID `json:"assignedTo"`

	// optional plan linkage
	PlanID     types.ID `json:"planId"`
	VersionID  types.ID `json:"versionId"`
	Annotation string   `json:"annotation"`

	IsDeleted  bool            `json:"isDeleted"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	Creator    types.ID        `json:"creator"`
}

type NonConformityCreating struct {
	ProjectID   types.ID `json:"projectId" binding:"required"`
	Title       string   `json:"title" binding:"required,lte=200"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`

	PlanID     types.ID `json:"planId"`
	VersionID  types.ID `json:"versionId"`
	Annotation string   `json:"annotation"`
}

type NcTransitionRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type NcAssignmentRequest struct {
	AssignedTo types.ID `json:"assignedTo" binding:"required"`
	Comment    string   `json:"comment"`
}

// NcHistory rows are append-only: one row per lifecycle event, never
// updated or deleted.
type NcHistory struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	NcID types.ID `json:"ncId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Action     string `json:"action"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`

	UserID  types.ID `json:"userId"`
	Comment string   `json:"comment"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

type NonConformityDetail struct {
	NonConformity

	History []NcHistory `json:"history"`
}
