package session

import (
	"assetflow/authority"
	"context"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`
	OrgRoles authority.OrgRoles    `json:"orgRoles"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	c := Session{Token: s.Token, Identity: s.Identity, SigningTime: s.SigningTime, Context: s.Context}
	c.Perms = append(authority.Permissions{}, s.Perms...)
	c.OrgRoles = append(authority.OrgRoles{}, s.OrgRoles...)
	return c
}

// VisibleOrgs parses visible org ids from Session.Perms
func (s *Session) VisibleOrgs() []types.ID {
	var orgIds []types.ID
	for _, v := range s.Perms {
		pairs := strings.Split(v, "_")
		if len(pairs) == 2 {
			id, err := types.ParseID(pairs[1])
			if err != nil {
				continue
			}
			orgIds = append(orgIds, id)
		}
	}
	if orgIds == nil {
		return []types.ID{}
	}
	return orgIds
}
