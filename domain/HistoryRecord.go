package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	HistoryActionInstantiated    = "INSTANTIATED"
	HistoryActionDirectCompleted = "DIRECT_COMPLETED"
	HistoryActionBypassed        = "BYPASSED"
	HistoryActionSubmitted       = "SUBMITTED"
	HistoryActionReviewed        = "REVIEWED"
	HistoryActionApproved        = "APPROVED"
	HistoryActionRejected        = "REJECTED"
	HistoryActionSentBack        = "SENT_BACK"
)

// HistoryRecord is an append-only audit entry of one workflow state change.
// DetailID is a weak reference: zero for header-level actions.
type HistoryRecord struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	HeaderID types.ID `json:"headerId" gorm:"index:history_header_index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	DetailID types.ID `json:"detailId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Action    string `json:"action"`
	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`
	Notes     string   `json:"notes" sql:"type:TEXT"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *HistoryRecord) TableName() string {
	return "workflow_histories"
}
