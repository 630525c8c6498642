package account

import (
	"assetflow/authority"
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/idgen"
	"assetflow/persistence"
	"assetflow/session"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	accountIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc            = CreateUser
	QueryUsersFunc            = QueryUsers
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	CreateOrgFunc             = CreateOrg
	AddOrgMemberFunc          = AddOrgMember
	LoadPermsFunc             = LoadPerms
)

func HashSha256(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

// accounts and org memberships live in the shared control database,
// tenant overrides never apply to them.
func accountDB(ctx context.Context) *gorm.DB {
	return persistence.ActiveDataSourceManager.GormDB(ctx)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	user := User{
		ID:       idgen.NextID(accountIdWorker),
		Name:     c.Name,
		Secret:   HashSha256(c.Secret),
		Nickname: c.Nickname,
	}

	db := accountDB(s.Context)
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) && !s.Perms.HasRole(SystemViewPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	var users []User
	db := accountDB(s.Context)
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, UserInfo{ID: u.ID, Name: u.Name, Nickname: u.Nickname})
	}
	return infos, nil
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" binding:"required"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := accountDB(s.Context)

	user := User{}
	if err := db.Where(&User{ID: s.Identity.ID}).First(&user).Error; err != nil {
		return err
	}
	if user.Secret != HashSha256(u.OriginalSecret) {
		return bizerror.ErrInvalidPassword
	}

	return db.Model(&User{ID: user.ID}).Update("secret", HashSha256(u.NewSecret)).Error
}

func CreateOrg(c *OrgCreation, s *session.Session) (*Org, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	org := Org{
		ID:         idgen.NextID(accountIdWorker),
		Name:       c.Name,
		Identifier: strings.ToUpper(c.Identifier),
		CreateTime: types.CurrentTimestamp(),
		Creator:    s.Identity.ID,
	}

	db := accountDB(s.Context)
	if err := db.Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func AddOrgMember(c *OrgMemberAddition, s *session.Session) error {
	if !s.Perms.HasRole(SystemAdminPermission.ID) &&
		!s.Perms.HasRoleSuffix(domain.OrgRoleManager+"_"+c.OrgID.String()) {
		return bizerror.ErrForbidden
	}

	db := accountDB(s.Context)

	org := Org{}
	if err := db.Where(&Org{ID: c.OrgID}).First(&org).Error; err != nil {
		return err
	}
	user := User{}
	if err := db.Where(&User{ID: c.MemberID}).First(&user).Error; err != nil {
		return err
	}

	member := OrgMember{
		OrgID:      c.OrgID,
		MemberID:   c.MemberID,
		Role:       c.Role,
		CreateTime: types.CurrentTimestamp(),
	}
	return db.Save(&member).Error
}

// LoadPerms builds the permission set of a user from its org memberships.
// Perms are encoded as "<role>_<orgId>", the admin user additionally
// carries the system permissions.
func LoadPerms(ctx context.Context, userId types.ID) (authority.Permissions, authority.OrgRoles, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	var members []OrgMember
	if err := db.Where(&OrgMember{MemberID: userId}).Find(&members).Error; err != nil {
		return nil, nil, err
	}

	perms := authority.Permissions{}
	orgRoles := authority.OrgRoles{}
	for _, m := range members {
		org := Org{}
		if err := db.Where(&Org{ID: m.OrgID}).First(&org).Error; err != nil {
			return nil, nil, err
		}
		perms = append(perms, m.Role+"_"+m.OrgID.String())
		orgRoles = append(orgRoles, domain.OrgRole{
			OrgID: m.OrgID, OrgName: org.Name, OrgIdentifier: org.Identifier, Role: m.Role,
		})
	}

	user := User{}
	if err := db.Where(&User{ID: userId}).First(&user).Error; err != nil {
		return nil, nil, err
	}
	if user.Name == "admin" {
		perms = append(perms, SystemAdminPermission.ID)
	}

	return perms, orgRoles, nil
}

// EnsureAdminUser creates the bootstrap admin account when the user table
// is still empty. The initial secret comes from ADMIN_DEFAULT_SECRET.
func EnsureAdminUser(db *gorm.DB) error {
	count := 0
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	secret := os.Getenv("ADMIN_DEFAULT_SECRET")
	if secret == "" {
		secret = "admin123"
		logrus.Warnln("ADMIN_DEFAULT_SECRET is not set, the default value is used")
	}

	admin := User{ID: idgen.NextID(accountIdWorker), Name: "admin", Secret: HashSha256(secret), Nickname: "Administrator"}
	return db.Create(&admin).Error
}
