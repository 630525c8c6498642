package approval

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/history"
	"assetflow/domain/state"
	"assetflow/session"
	"assetflow/tenant"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ActFunc = Act
)

// Act applies one decision to the active detail row of a workflow. The
// detail update, the header recompute and the history append commit in one
// transaction; the header and detail rows are locked for the duration so
// two concurrent actions against the same step can never both succeed.
func Act(detailId types.ID, a *WorkflowAction, s *session.Session) (*WorkflowActionResult, error) {
	decision, ok := state.ParseDecision(a.Decision)
	if !ok {
		return nil, bizerror.ErrUnknownDecision
	}
	if !s.Perms.HasRoleSuffix("_" + a.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	var result *WorkflowActionResult
	var header domain.WorkflowHeader
	err := tenant.Tx(s.Context, a.OrgID, func(tx *gorm.DB) error {
		locked := tx.Set("gorm:query_option", "FOR UPDATE")

		detail := domain.WorkflowDetail{}
		if err := locked.Where(&domain.WorkflowDetail{ID: detailId}).First(&detail).Error; err != nil {
			return err
		}
		header = domain.WorkflowHeader{}
		if err := locked.Where(&domain.WorkflowHeader{ID: detail.HeaderID}).First(&header).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + header.OrgID.String()) {
			return bizerror.ErrForbidden
		}

		if header.Status.IsTerminal() || detail.Status.IsTerminal() {
			return bizerror.ErrAlreadyFinalized
		}
		if !detail.Status.IsActive() {
			return bizerror.ErrStateInvalid
		}
		nextStatus, ok := state.DefaultApprovalStateMachine.Apply(detail.Status, decision)
		if !ok {
			return bizerror.ErrStateInvalid
		}

		query := tx.Model(&domain.WorkflowDetail{}).
			Where(&domain.WorkflowDetail{ID: detail.ID, Status: detail.Status}).
			Update(&domain.WorkflowDetail{Status: nextStatus,
				ActorID: s.Identity.ID, ActorName: s.Identity.Name, ActTime: now})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		headerStatus, err := nextHeaderStatus(&header, &detail, decision, nextStatus, now, s, tx)
		if err != nil {
			return err
		}

		query = tx.Model(&domain.WorkflowHeader{}).
			Where(&domain.WorkflowHeader{ID: header.ID, Status: header.Status}).
			Update(&domain.WorkflowHeader{Status: headerStatus, ChangeTime: now,
				ChangerID: s.Identity.ID, ChangerName: s.Identity.Name})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		if _, err := history.Record(header.ID, detail.ID, historyActionOf(decision), a.Notes, &s.Identity, tx); err != nil {
			return err
		}

		header.Status = headerStatus
		result = &WorkflowActionResult{
			HeaderID: header.ID, HeaderStatus: headerStatus,
			DetailID: detail.ID, DetailStatus: nextStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.HeaderStatus.IsTerminal() {
		InvokeTerminalHandlersFunc(&header, s)
	}
	return result, nil
}

// nextHeaderStatus also advances the successor detail on approval: the next
// Initiated row in sequence order becomes the new active step.
func nextHeaderStatus(header *domain.WorkflowHeader, detail *domain.WorkflowDetail,
	decision state.Decision, detailStatus state.DetailStatus, now types.Timestamp,
	s *session.Session, tx *gorm.DB) (state.HeaderStatus, error) {

	switch decision {
	case state.DecisionApprove:
		next := domain.WorkflowDetail{}
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("header_id = ? AND sequence > ? AND status = ?",
				header.ID, detail.Sequence, state.DetailInitiated).
			Order("sequence ASC").First(&next).Error
		if err == gorm.ErrRecordNotFound {
			return state.HeaderCompleted, nil
		}
		if err != nil {
			return "", err
		}

		query := tx.Model(&domain.WorkflowDetail{}).
			Where(&domain.WorkflowDetail{ID: next.ID, Status: state.DetailInitiated}).
			Update(&domain.WorkflowDetail{Status: state.DetailInProgress})
		if err := query.Error; err != nil {
			return "", err
		}
		if query.RowsAffected != 1 {
			return "", bizerror.ErrConcurrentModification
		}
		return state.HeaderInProgress, nil
	case state.DecisionReject:
		// later details stay Initiated forever: one rejection halts the chain
		return state.HeaderCancelled, nil
	default:
		return state.HeaderStatusFor(detailStatus), nil
	}
}

func historyActionOf(decision state.Decision) string {
	switch decision {
	case state.DecisionSubmit:
		return domain.HistoryActionSubmitted
	case state.DecisionReview:
		return domain.HistoryActionReviewed
	case state.DecisionApprove:
		return domain.HistoryActionApproved
	case state.DecisionReject:
		return domain.HistoryActionRejected
	case state.DecisionSendBack:
		return domain.HistoryActionSentBack
	}
	return string(decision)
}
