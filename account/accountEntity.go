package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name   string   `json:"name" gorm:"unique_index:uni_user_name"`
	Secret string   `json:"secret"`

	Nickname string `json:"nickname"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,lte=32"`
	Secret   string `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string `json:"nickname" binding:"omitempty,gte=1,lte=32"`
}

type Org struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Identifier string `json:"identifier" gorm:"unique_index:uni_org_identifier"`
	Name       string `json:"name" gorm:"unique_index:uni_org_name"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	Creator    types.ID        `json:"creator"`
}

type OrgCreation struct {
	Name       string `json:"name" binding:"required,lte=60"`
	Identifier string `json:"identifier" binding:"required,lte=6,uppercase"`
}

type OrgMember struct {
	OrgID    types.ID `json:"orgId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberID types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Role     string   `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type OrgMemberAddition struct {
	OrgID    types.ID `json:"orgId" binding:"required"`
	MemberID types.ID `json:"memberId" binding:"required"`
	Role     string   `json:"role" binding:"required,oneof=manager common"`
}

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var SystemAdminPermission = Permission{ID: "system:admin", Name: "System Administration"}
var SystemViewPermission = Permission{ID: "system:view", Name: "System View"}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
