package nonconformity

import (
	"worksite/bizerror"
	"worksite/domain"
)

// transitions is the complete lifecycle graph. VALIDATED is terminal for
// status changes; only a re-assignment can reopen a validated record.
var transitions = map[string][]string{
	domain.NcStatusOpen:       {domain.NcStatusInProgress},
	domain.NcStatusInProgress: {domain.NcStatusResolved},
	domain.NcStatusResolved:   {domain.NcStatusValidated, domain.NcStatusInProgress},
	domain.NcStatusValidated:  {},
}

func IsKnownStatus(status string) bool {
	_, found := transitions[status]
	return found
}

// CheckTransition validates an edge against the graph before anything is
// written. Self-transitions are rejected like any other missing edge.
func CheckTransition(from, to string) error {
	targets, found := transitions[from]
	if !found || !IsKnownStatus(to) {
		return &bizerror.ErrInvalidTransition{From: from, To: to}
	}
	for _, t := range targets {
		if t == to {
			return nil
		}
	}
	return &bizerror.ErrInvalidTransition{From: from, To: to}
}
