package sessions

import (
	"assetflow/account"
	"assetflow/bizerror"
	"assetflow/persistence"
	"assetflow/session"
	"context"
	"time"

	"github.com/google/uuid"
)

var CreateSessionFunc = CreateSession

// CreateSession verifies the basic auth secret and issues a token backed
// by the in-memory token cache.
func CreateSession(login *session.LoginRequest, ctx context.Context) (*session.Session, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	user := account.User{}
	if err := db.Where(&account.User{Name: login.Name}).First(&user).Error; err != nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if user.Secret != account.HashSha256(login.Secret) {
		return nil, bizerror.ErrUnauthenticated
	}

	perms, orgRoles, err := account.LoadPermsFunc(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s := &session.Session{
		Token:       uuid.New().String(),
		Identity:    session.Identity{ID: user.ID, Name: user.Name, Nickname: user.DisplayName()},
		Perms:       perms,
		OrgRoles:    orgRoles,
		SigningTime: time.Now(),
	}
	session.TokenCache.Set(s.Token, s, session.TokenExpiration)
	return s, nil
}
