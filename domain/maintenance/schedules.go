package maintenance

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
	StatusPlanned   = "PLANNED"
	StatusSubmitted = "SUBMITTED"
	StatusDone      = "DONE"
	StatusDeclined  = "DECLINED"

	TriggerRefPrefix = "MNT-"
)

type MaintenanceSchedule struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	AssetID     types.ID `json:"assetId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CategoryKey string   `json:"categoryKey"`
	OrgID       types.ID `json:"orgId" gorm:"index:schedule_org_index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	BranchCode  string   `json:"branchCode"`

	DueTime types.Timestamp `json:"dueTime" sql:"type:DATETIME(6) NOT NULL"`
	Status  string          `json:"status"`

	WorkflowID types.ID `json:"workflowId"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ScheduleCreation struct {
	AssetID types.ID        `json:"assetId" binding:"required"`
	OrgID   types.ID        `json:"orgId" binding:"required"`
	DueTime types.Timestamp `json:"dueTime" binding:"required"`
}

type ScheduleQuery struct {
	OrgID  types.ID `json:"orgId" form:"orgId" binding:"required"`
	Status string   `json:"status" form:"status"`
}

var (
	scheduleIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateScheduleFunc = CreateSchedule
	QuerySchedulesFunc = QuerySchedules
	SubmitScheduleFunc = SubmitSchedule
)

func CreateSchedule(c *ScheduleCreation, s *session.Session) (*MaintenanceSchedule, error) {
	if !s.Perms.HasRoleSuffix("_" + c.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}

	var record MaintenanceSchedule
	err := tenant.Tx(s.Context, c.OrgID, func(tx *gorm.DB) error {
		assetRecord := asset.Asset{}
		if err := tx.Where(&asset.Asset{ID: c.AssetID}).First(&assetRecord).Error; err != nil {
			return err
		}
		if assetRecord.Status == asset.StatusScrapped {
			return bizerror.ErrStateInvalid
		}

		record = MaintenanceSchedule{
			ID:          idgen.NextID(scheduleIdWorker),
			AssetID:     assetRecord.ID,
			CategoryKey: assetRecord.CategoryKey,
			OrgID:       assetRecord.OrgID,
			BranchCode:  assetRecord.BranchCode,

			DueTime: c.DueTime,
			Status:  StatusPlanned,

			CreatorID:  s.Identity.ID,
			CreateTime: types.CurrentTimestamp(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func QuerySchedules(q *ScheduleQuery, s *session.Session) ([]MaintenanceSchedule, error) {
	if !s.Perms.HasOrgViewPerm(q.OrgID) {
		return nil, bizerror.ErrForbidden
	}

	db, err := tenant.GormDB(s.Context, q.OrgID)
	if err != nil {
		return nil, err
	}
	schedules := []MaintenanceSchedule{}
	query := db.Where("org_id = ?", q.OrgID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Order("due_time ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// SubmitSchedule starts the approval process of a due schedule. Assets with
// MaintRequired=false bypass the template and the workflow completes
// directly; the bypass wins even when a template is configured.
func SubmitSchedule(id, orgId types.ID, s *session.Session) (*domain.WorkflowSnapshot, error) {
	if !s.Perms.HasRoleSuffix("_" + orgId.String()) {
		return nil, bizerror.ErrForbidden
	}

	var record MaintenanceSchedule
	var assetRecord asset.Asset
	err := tenant.Tx(s.Context, orgId, func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where(&MaintenanceSchedule{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.Status != StatusPlanned {
			return bizerror.ErrStateInvalid
		}
		if record.DueTime.Time().After(types.CurrentTimestamp().Time()) {
			return bizerror.ErrScheduleNotDue
		}
		if err := tx.Where(&asset.Asset{ID: record.AssetID}).First(&assetRecord).Error; err != nil {
			return err
		}

		db := tx.Model(&MaintenanceSchedule{}).
			Where(&MaintenanceSchedule{ID: record.ID, Status: StatusPlanned}).
			Update(&MaintenanceSchedule{Status: StatusSubmitted})
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		return tx.Model(&asset.Asset{}).Where(&asset.Asset{ID: record.AssetID}).
			Update(&asset.Asset{Status: asset.StatusUnderMaintenance}).Error
	})
	if err != nil {
		return nil, err
	}

	// terminal handlers may settle the schedule during instantiation when
	// the workflow completes directly
	snapshot, err := approval.InstantiateFunc(&approval.WorkflowInstantiation{
		TriggerRef:  TriggerRefPrefix + record.ID.String(),
		CategoryKey: record.CategoryKey,
		OrgID:       record.OrgID,
		BranchCode:  record.BranchCode,
		Bypass:      !assetRecord.MaintRequired,
	}, s)
	if err != nil {
		revertSubmittedSchedule(&record, s)
		return nil, err
	}

	err = tenant.Tx(s.Context, orgId, func(tx *gorm.DB) error {
		return tx.Model(&MaintenanceSchedule{}).Where(&MaintenanceSchedule{ID: record.ID}).
			Update(&MaintenanceSchedule{WorkflowID: snapshot.Header.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// revertSubmittedSchedule rolls a schedule back to PLANNED when workflow
// instantiation fails after the submit transaction has already committed.
func revertSubmittedSchedule(record *MaintenanceSchedule, s *session.Session) {
	err := tenant.Tx(s.Context, record.OrgID, func(tx *gorm.DB) error {
		if err := tx.Model(&MaintenanceSchedule{}).
			Where(&MaintenanceSchedule{ID: record.ID, Status: StatusSubmitted}).
			Update(&MaintenanceSchedule{Status: StatusPlanned}).Error; err != nil {
			return err
		}
		return tx.Model(&asset.Asset{}).
			Where("id = ? AND status = ?", record.AssetID, asset.StatusUnderMaintenance).
			Update(&asset.Asset{Status: asset.StatusActive}).Error
	})
	if err != nil {
		logrus.Warnf("failed to revert schedule %d after workflow instantiation failure: %v\n", record.ID, err)
	}
}

// WorkflowTerminalHandler settles the schedule once its approval workflow
// reaches a terminal status.
var WorkflowTerminalHandler = approval.TerminalHandler{
	Name: "maintenanceScheduleSettler",
	Handle: func(header *domain.WorkflowHeader, s *session.Session) error {
		if !strings.HasPrefix(header.TriggerRef, TriggerRefPrefix) {
			return nil
		}
		scheduleId, err := types.ParseID(strings.TrimPrefix(header.TriggerRef, TriggerRefPrefix))
		if err != nil {
			return err
		}

		return tenant.Tx(s.Context, header.OrgID, func(tx *gorm.DB) error {
			if header.Status == state.HeaderCancelled {
				return declineSchedule(scheduleId, tx)
			}
			return finishSchedule(scheduleId, tx)
		})
	},
}

func finishSchedule(scheduleId types.ID, tx *gorm.DB) error {
	record := MaintenanceSchedule{}
	if err := tx.Where(&MaintenanceSchedule{ID: scheduleId}).First(&record).Error; err != nil {
		return err
	}
	if err := tx.Model(&MaintenanceSchedule{}).Where(&MaintenanceSchedule{ID: scheduleId}).
		Update(&MaintenanceSchedule{Status: StatusDone}).Error; err != nil {
		return err
	}
	return tx.Model(&asset.Asset{}).
		Where("id = ? AND status = ?", record.AssetID, asset.StatusUnderMaintenance).
		Update(&asset.Asset{Status: asset.StatusActive}).Error
}

func declineSchedule(scheduleId types.ID, tx *gorm.DB) error {
	record := MaintenanceSchedule{}
	if err := tx.Where(&MaintenanceSchedule{ID: scheduleId}).First(&record).Error; err != nil {
		return err
	}
	if err := tx.Model(&MaintenanceSchedule{}).Where(&MaintenanceSchedule{ID: scheduleId}).
		Update(&MaintenanceSchedule{Status: StatusDeclined}).Error; err != nil {
		return err
	}
	return tx.Model(&asset.Asset{}).
		Where("id = ? AND status = ?", record.AssetID, asset.StatusUnderMaintenance).
		Update(&asset.Asset{Status: asset.StatusActive}).Error
}
