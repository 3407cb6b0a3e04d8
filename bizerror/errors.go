package bizerror

import (
	"errors"
	"fmt"
	"net/http"

	"worksite/common"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	// authorization gate failures
	ErrNotProjectMember   = errors.New("not a project member")
	ErrInsufficientRole   = errors.New("insufficient project role")
	ErrMissingID          = errors.New("missing resource identifier")
	ErrNoActiveAssignment = errors.New("tool has no active assignment")
	ErrProjectNotFound    = errors.New("project not found")
	ErrCorruptProjectRef  = errors.New("corrupt project reference")

	ErrInvalidArguments = errors.New("invalid arguments")
	ErrOwnerAsMember    = errors.New("project owner can not be listed as member")
	ErrMemberSelfGrant  = errors.New("member can not grant role for themselves")
	ErrAlreadyAssigned  = errors.New("tool is already assigned")
	ErrStockBelowZero   = errors.New("stock quantity can not fall below zero")
)

// ErrInvalidTransition reports an illegal non-conformity status transition.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("Invalid transition %s → %s", e.From, e.To)
}

func (e *ErrInvalidTransition) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusBadRequest,
		Code: "workflow.invalid_transition", Message: e.Error(), Data: nil}
}
