package session

import (
	"context"
	"time"

	"github.com/fundwit/go-commons/types"
)

// Session is the per-request view of an already-verified identity.
type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

// Identity is what the identity context supplies after verifying a bearer
// credential: the user, their global role, and whether they are active.
type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`

	GlobalRole string `json:"globalRole"`
	IsActive   bool   `json:"isActive"`
}

func (s *Session) Clone() Session {
	c := *s
	return c
}

func (s *Session) HasGlobalRole(roles ...string) bool {
	for _, r := range roles {
		if s.Identity.GlobalRole == r {
			return true
		}
	}
	return false
}
