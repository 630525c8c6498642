package testinfra

import (
	"assetflow/authority"
	"assetflow/domain"
	"assetflow/session"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds a session carrying the given perms, org roles are
// derived from perms of the "<role>_<orgId>" form.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	orgRoles := authority.OrgRoles{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			orgId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			orgRoles = append(orgRoles, domain.OrgRole{OrgID: orgId, Role: role})
		}
	}

	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    perms,
		OrgRoles: orgRoles,
		Context:  context.Background(),
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (status int, body string, resp *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
