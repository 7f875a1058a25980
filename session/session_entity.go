package session

import (
	"context"
	"time"

	"lattice/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string               `json:"token"`
	Identity Identity             `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`

	// Context carries the request's trace context, never serialized.
	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	perms := make(authority.Permissions, len(s.Perms))
	copy(perms, s.Perms)
	return Session{Token: s.Token, Identity: s.Identity, Perms: perms, SigningTime: s.SigningTime, Context: s.Context}
}

// Actor is the principal view the authorization engine works with.
func (s *Session) Actor() authority.Actor {
	if s == nil {
		return authority.Actor{}
	}
	return authority.Actor{UserID: s.Identity.ID, Perms: s.Perms}
}
