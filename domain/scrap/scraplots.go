package scrap

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/domain/asset"
	"assetflow/domain/state"
	"assetflow/idgen"
	"assetflow/session"
	"assetflow/tenant"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

const (
	StatusRequested = "REQUESTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"

	// every org configures one scrap approval chain under this category key
	CategoryScrap = "SCRAP"

	TriggerRefPrefix = "SCR-"
)

type ScrapLot struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	AssetID    types.ID `json:"assetId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	OrgID      types.ID `json:"orgId" gorm:"index:lot_org_index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	BranchCode string   `json:"branchCode"`

	Reason string `json:"reason" sql:"type:TEXT"`
	Status string `json:"status"`

	WorkflowID types.ID `json:"workflowId"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ScrapRequest struct {
	AssetID types.ID `json:"assetId" binding:"required"`
	OrgID   types.ID `json:"orgId" binding:"required"`
	Reason  string   `json:"reason" binding:"required,lte=512"`
}

type ScrapLotQuery struct {
	OrgID  types.ID `json:"orgId" form:"orgId" binding:"required"`
	Status string   `json:"status" form:"status"`
}

var (
	lotIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RequestScrapFunc   = RequestScrap
	QueryScrapLotsFunc = QueryScrapLots
)

// RequestScrap opens a scrap lot for the asset and starts the org's scrap
// approval chain. Orgs without a configured chain scrap directly.
func RequestScrap(c *ScrapRequest, s *session.Session) (*ScrapLot, error) {
	if !s.Perms.HasRoleSuffix("_" + c.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}

	var record ScrapLot
	err := tenant.Tx(s.Context, c.OrgID, func(tx *gorm.DB) error {
		assetRecord := asset.Asset{}
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where(&asset.Asset{ID: c.AssetID}).First(&assetRecord).Error; err != nil {
			return err
		}
		if assetRecord.Status == asset.StatusScrapped {
			return bizerror.ErrStateInvalid
		}
		var pending int
		if err := tx.Model(&ScrapLot{}).
			Where("asset_id = ? AND status = ?", c.AssetID, StatusRequested).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return bizerror.ErrStateInvalid
		}

		record = ScrapLot{
			ID:         idgen.NextID(lotIdWorker),
			AssetID:    assetRecord.ID,
			OrgID:      assetRecord.OrgID,
			BranchCode: assetRecord.BranchCode,

			Reason: c.Reason,
			Status: StatusRequested,

			CreatorID:  s.Identity.ID,
			CreateTime: types.CurrentTimestamp(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := approval.InstantiateFunc(&approval.WorkflowInstantiation{
		TriggerRef:  TriggerRefPrefix + record.ID.String(),
		CategoryKey: CategoryScrap,
		OrgID:       record.OrgID,
		BranchCode:  record.BranchCode,
		Notes:       c.Reason,
	}, s)
	if err != nil {
		rejectUnstartedLot(&record, s)
		return nil, err
	}

	err = tenant.Tx(s.Context, record.OrgID, func(tx *gorm.DB) error {
		return tx.Model(&ScrapLot{}).Where(&ScrapLot{ID: record.ID}).
			Update(&ScrapLot{WorkflowID: snapshot.Header.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	record.WorkflowID = snapshot.Header.ID

	// reload: a directly completed workflow settles the lot in its handler
	err = tenant.Tx(s.Context, record.OrgID, func(tx *gorm.DB) error {
		return tx.Where(&ScrapLot{ID: record.ID}).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// rejectUnstartedLot closes a lot whose workflow instantiation failed after
// the lot was committed. A rejected lot keeps the audit trail and releases
// the asset for a new scrap request.
func rejectUnstartedLot(record *ScrapLot, s *session.Session) {
	err := tenant.Tx(s.Context, record.OrgID, func(tx *gorm.DB) error {
		return tx.Model(&ScrapLot{}).
			Where(&ScrapLot{ID: record.ID, Status: StatusRequested}).
			Update(&ScrapLot{Status: StatusRejected}).Error
	})
	if err != nil {
		logrus.Warnf("failed to reject lot %d after workflow instantiation failure: %v\n", record.ID, err)
	}
}

func QueryScrapLots(q *ScrapLotQuery, s *session.Session) ([]ScrapLot, error) {
	if !s.Perms.HasOrgViewPerm(q.OrgID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := tenant.GormDB(s.Context, q.OrgID)
	if err != nil {
		return nil, err
	}
	lots := []ScrapLot{}
	query := db.Where("org_id = ?", q.OrgID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Order("create_time DESC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// WorkflowTerminalHandler settles the lot once its approval workflow
// reaches a terminal status: completion scraps the asset, cancellation
// leaves it untouched.
var WorkflowTerminalHandler = approval.TerminalHandler{
	Name: "scrapLotSettler",
	Handle: func(header *domain.WorkflowHeader, s *session.Session) error {
		if !strings.HasPrefix(header.TriggerRef, TriggerRefPrefix) {
			return nil
		}
		lotId, err := types.ParseID(strings.TrimPrefix(header.TriggerRef, TriggerRefPrefix))
		if err != nil {
			return err
		}

		return tenant.Tx(s.Context, header.OrgID, func(tx *gorm.DB) error {
			lot := ScrapLot{}
			if err := tx.Set("gorm:query_option", "FOR UPDATE").
				Where(&ScrapLot{ID: lotId}).First(&lot).Error; err != nil {
				return err
			}
			if lot.Status != StatusRequested {
				return nil
			}

			if header.Status == state.HeaderCancelled {
				return tx.Model(&ScrapLot{}).Where(&ScrapLot{ID: lotId}).
					Update(&ScrapLot{Status: StatusRejected}).Error
			}

			if err := asset.MarkScrapped(lot.AssetID, tx); err != nil {
				return err
			}
			return tx.Model(&ScrapLot{}).Where(&ScrapLot{ID: lotId}).
				Update(&ScrapLot{Status: StatusApproved}).Error
		})
	},
}
