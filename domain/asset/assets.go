package asset

import (
	"assetflow/bizerror"
	"assetflow/idgen"
	"assetflow/session"
	"assetflow/tenant"
	"errors"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	StatusActive           = "ACTIVE"
	StatusUnderMaintenance = "UNDER_MAINTENANCE"
	StatusScrapped         = "SCRAPPED"
)

type Asset struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Code string `json:"code" gorm:"unique_index:uni_code_org"`
	Name string `json:"name"`

	CategoryKey string   `json:"categoryKey"`
	OrgID       types.ID `json:"orgId" gorm:"unique_index:uni_code_org" sql:"type:BIGINT UNSIGNED NOT NULL"`
	BranchCode  string   `json:"branchCode"`
	VendorID    types.ID `json:"vendorId"`

	Status string `json:"status"`

	// MaintRequired=false assets bypass maintenance approval entirely.
	MaintRequired bool `json:"maintRequired"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ChangeTime types.Timestamp `json:"changeTime" sql:"type:DATETIME(6)"`
}

type AssetCreation struct {
	Code        string   `json:"code" binding:"required,lte=32"`
	Name        string   `json:"name" binding:"required,lte=255"`
	CategoryKey string   `json:"categoryKey" binding:"required,lte=32"`
	OrgID       types.ID `json:"orgId" binding:"required"`
	BranchCode  string   `json:"branchCode" binding:"required,lte=16"`
	VendorID    types.ID `json:"vendorId"`

	MaintRequired *bool `json:"maintRequired"`
}

type AssetUpdating struct {
	Name     string   `json:"name" binding:"required,lte=255"`
	VendorID types.ID `json:"vendorId"`
}

type AssetQuery struct {
	OrgID       types.ID `form:"orgId" binding:"required"`
	CategoryKey string   `form:"categoryKey"`
	Status      string   `form:"status"`
}

var (
	assetIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateAssetFunc  = CreateAsset
	QueryAssetsFunc  = QueryAssets
	DetailAssetFunc  = DetailAsset
	UpdateAssetFunc  = UpdateAsset
	MarkScrappedFunc = MarkScrapped
)

func CreateAsset(c *AssetCreation, s *session.Session) (*Asset, error) {
	if !s.Perms.HasRoleSuffix("_" + c.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}

	maintRequired := true
	if c.MaintRequired != nil {
		maintRequired = *c.MaintRequired
	}
	record := Asset{
		ID:          idgen.NextID(assetIdWorker),
		Code:        c.Code,
		Name:        c.Name,
		CategoryKey: c.CategoryKey,
		OrgID:       c.OrgID,
		BranchCode:  c.BranchCode,
		VendorID:    c.VendorID,

		Status:        StatusActive,
		MaintRequired: maintRequired,

		CreatorID:  s.Identity.ID,
		CreateTime: types.CurrentTimestamp(),
	}

	db, err := tenant.GormDB(s.Context, c.OrgID)
	if err != nil {
		return nil, err
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryAssets(q *AssetQuery, s *session.Session) ([]Asset, error) {
	if !s.Perms.HasOrgViewPerm(q.OrgID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := tenant.GormDB(s.Context, q.OrgID)
	if err != nil {
		return nil, err
	}
	assets := []Asset{}
	query := db.Where("org_id = ?", q.OrgID)
	if q.CategoryKey != "" {
		query = query.Where("category_key = ?", q.CategoryKey)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Order("code ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func DetailAsset(id, orgId types.ID, s *session.Session) (*Asset, error) {
	db, err := tenant.GormDB(s.Context, orgId)
	if err != nil {
		return nil, err
	}
	record := Asset{}
	if err := db.Where(&Asset{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasOrgViewPerm(record.OrgID) {
		return nil, bizerror.ErrForbidden
	}
	return &record, nil
}

func UpdateAsset(id, orgId types.ID, u *AssetUpdating, s *session.Session) (*Asset, error) {
	var record Asset
	err := tenant.Tx(s.Context, orgId, func(tx *gorm.DB) error {
		if err := tx.Where(&Asset{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + record.OrgID.String()) {
			return bizerror.ErrForbidden
		}

		db := tx.Model(&Asset{}).Where(&Asset{ID: id}).
			Update(&Asset{Name: u.Name, VendorID: u.VendorID, ChangeTime: types.CurrentTimestamp()})
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(db.RowsAffected, 10))
		}
		return tx.Where(&Asset{ID: id}).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkScrapped moves an asset to the Scrapped status. It runs within the
// caller's transaction when the scrap workflow completes.
func MarkScrapped(id types.ID, tx *gorm.DB) error {
	db := tx.Model(&Asset{}).Where("id = ? AND status <> ?", id, StatusScrapped).
		Update(&Asset{Status: StatusScrapped, ChangeTime: types.CurrentTimestamp()})
	if err := db.Error; err != nil {
		return err
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrStateInvalid
	}
	return nil
}
