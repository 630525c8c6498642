package account

import (
	"assetflow/bizerror"
	"assetflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterAccountsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group("/v1/users", middleWares...)
	users.POST("", handleCreateUser)
	users.GET("", handleQueryUsers)

	orgs := r.Group("/v1/orgs", middleWares...)
	orgs.POST("", handleCreateOrg)

	members := r.Group("/v1/org-members", middleWares...)
	members.POST("", handleAddOrgMember)

	r.PUT("/v1/session-users/basic-auths", append(middleWares, handleUpdateBasicAuth)...)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	info, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleQueryUsers(c *gin.Context) {
	infos, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, infos)
}

func handleCreateOrg(c *gin.Context) {
	creation := OrgCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	org, err := CreateOrgFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, org)
}

func handleAddOrgMember(c *gin.Context) {
	addition := OrgMemberAddition{}
	if err := c.ShouldBindBodyWith(&addition, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := AddOrgMemberFunc(&addition, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

func handleUpdateBasicAuth(c *gin.Context) {
	updating := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateBasicAuthSecretFunc(&updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}
