package domain

import (
	"github.com/fundwit/go-commons/types"
)

const OrgRoleManager = "manager"
const OrgRoleCommon = "common"

type OrgRole struct {
	OrgID         types.ID `json:"orgId"`
	OrgName       string   `json:"orgName"`
	OrgIdentifier string   `json:"orgIdentifier"`
	Role          string   `json:"role"`
}
