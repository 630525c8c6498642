package domain

import (
	"assetflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

// WorkflowHeader identifies one instantiated approval process.
// It is created by the instantiator and mutated only by approval actions.
type WorkflowHeader struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	TriggerRef  string   `json:"triggerRef"`
	CategoryKey string   `json:"categoryKey"`
	OrgID       types.ID `json:"orgId" gorm:"index:header_org_index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	BranchCode  string   `json:"branchCode"`

	Status state.HeaderStatus `json:"status"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	ChangeTime  types.Timestamp `json:"changeTime" sql:"type:DATETIME(6)"`
	ChangerID   types.ID        `json:"changerId"`
	ChangerName string          `json:"changerName"`
}

// WorkflowDetail is one required approval step of a header. Detail rows only
// exist in the context of their header and are never addressed across
// headers: sequence is unique within a header.
type WorkflowDetail struct {
	ID       types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	HeaderID types.ID `json:"headerId" gorm:"unique_index:detail_sequence_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Sequence int      `json:"sequence" gorm:"unique_index:detail_sequence_unique"`

	StepRole string             `json:"stepRole"`
	Status   state.DetailStatus `json:"status"`

	ActorID   types.ID        `json:"actorId"`
	ActorName string          `json:"actorName"`
	ActTime   types.Timestamp `json:"actTime" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type WorkflowSnapshot struct {
	Header    WorkflowHeader   `json:"header"`
	Details   []WorkflowDetail `json:"details"`
	Histories []HistoryRecord  `json:"histories"`
}

type WorkflowQuery struct {
	OrgID       types.ID           `form:"orgId"`
	TriggerRef  string             `form:"triggerRef"`
	CategoryKey string             `form:"categoryKey"`
	Status      state.HeaderStatus `form:"status"`
}
