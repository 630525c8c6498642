package sessions

import (
	"assetflow/bizerror"
	"assetflow/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathSessions = "/v1/sessions"

func RegisterSessionsRestAPI(r *gin.Engine) {
	r.POST(PathSessions, handleLogin)
	r.DELETE(PathSessions, handleLogout)
	r.GET("/v1/session", session.SimpleAuthFilter(), handleDetailSession)
}

func handleLogin(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	s, err := CreateSessionFunc(&login, c.Request.Context())
	if err != nil {
		panic(err)
	}

	c.SetCookie(session.KeySecToken, s.Token, int(session.TokenExpiration/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, s)
}

func handleLogout(c *gin.Context) {
	token, err := c.Cookie(session.KeySecToken)
	if err == nil && token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDetailSession(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	c.JSON(http.StatusOK, s)
}
