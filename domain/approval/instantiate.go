package approval

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/history"
	"assetflow/domain/sequence"
	"assetflow/domain/state"
	"assetflow/idgen"
	"assetflow/session"
	"assetflow/tenant"
	"errors"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	workflowIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	InstantiateFunc = Instantiate
)

// Instantiate clones the sequence template of (category, org) into a
// concrete header with one detail row per step. Everything commits in one
// transaction: a partially created workflow is never observable.
//
// An empty template is not an error: the header completes directly with no
// detail rows, which is the degraded path for orgs that never configured
// approvals for the category. An explicit bypass wins over any template.
func Instantiate(c *WorkflowInstantiation, s *session.Session) (*domain.WorkflowSnapshot, error) {
	if !s.Perms.HasRoleSuffix("_" + c.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	header := domain.WorkflowHeader{
		ID:          idgen.NextID(workflowIdWorker),
		TriggerRef:  c.TriggerRef,
		CategoryKey: c.CategoryKey,
		OrgID:       c.OrgID,
		BranchCode:  c.BranchCode,
		Status:      state.HeaderInitiated,
		CreateTime:  now,
		CreatorID:   s.Identity.ID,
		CreatorName: s.Identity.Name,
	}

	var snapshot *domain.WorkflowSnapshot
	err := tenant.Tx(s.Context, c.OrgID, func(tx *gorm.DB) error {
		var steps []domain.SequenceStep
		if !c.Bypass {
			var err error
			steps, err = sequence.LoadTemplateSteps(c.CategoryKey, c.OrgID, tx)
			if err != nil {
				return err
			}
		}

		if len(steps) == 0 {
			return instantiateDirect(&header, c, now, s, tx, &snapshot)
		}

		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		details := make([]domain.WorkflowDetail, 0, len(steps))
		for idx, step := range steps {
			detail := domain.WorkflowDetail{
				ID:         idgen.NextID(workflowIdWorker),
				HeaderID:   header.ID,
				Sequence:   step.StepOrder,
				StepRole:   step.StepRole,
				Status:     state.DetailInitiated,
				CreateTime: now,
			}
			if idx == 0 {
				detail.Status = state.DetailInProgress
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			details = append(details, detail)
		}

		// details exist now, the header leaves Initiated
		query := tx.Model(&domain.WorkflowHeader{}).
			Where(&domain.WorkflowHeader{ID: header.ID, Status: state.HeaderInitiated}).
			Update(&domain.WorkflowHeader{Status: state.HeaderInProgress, ChangeTime: now,
				ChangerID: s.Identity.ID, ChangerName: s.Identity.Name})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}
		header.Status = state.HeaderInProgress
		header.ChangeTime = now
		header.ChangerID = s.Identity.ID
		header.ChangerName = s.Identity.Name

		if _, err := history.Record(header.ID, 0, domain.HistoryActionInstantiated, c.Notes, &s.Identity, tx); err != nil {
			return err
		}

		snapshot = &domain.WorkflowSnapshot{Header: header, Details: details}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snapshot.Header.Status.IsTerminal() {
		InvokeTerminalHandlersFunc(&snapshot.Header, s)
	}
	return snapshot, nil
}

func instantiateDirect(header *domain.WorkflowHeader, c *WorkflowInstantiation, now types.Timestamp,
	s *session.Session, tx *gorm.DB, snapshot **domain.WorkflowSnapshot) error {

	header.Status = state.HeaderCompleted
	header.ChangeTime = now
	header.ChangerID = s.Identity.ID
	header.ChangerName = s.Identity.Name
	if err := tx.Create(header).Error; err != nil {
		return err
	}

	action := domain.HistoryActionDirectCompleted
	if c.Bypass {
		action = domain.HistoryActionBypassed
	}
	if _, err := history.Record(header.ID, 0, action, c.Notes, &s.Identity, tx); err != nil {
		return err
	}

	*snapshot = &domain.WorkflowSnapshot{Header: *header, Details: []domain.WorkflowDetail{}}
	return nil
}
