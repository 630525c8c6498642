package approval

import (
	"assetflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

type WorkflowInstantiation struct {
	TriggerRef  string   `json:"triggerRef" binding:"required,lte=64"`
	CategoryKey string   `json:"categoryKey" binding:"required,lte=32"`
	OrgID       types.ID `json:"orgId" binding:"required"`
	BranchCode  string   `json:"branchCode" binding:"required,lte=16"`

	// Bypass skips the template lookup and completes the header directly,
	// the way a maint_required=false asset is handled. It wins over any
	// configured template.
	Bypass bool   `json:"bypass"`
	Notes  string `json:"notes" binding:"lte=512"`
}

type WorkflowAction struct {
	OrgID    types.ID `json:"orgId" binding:"required"`
	Decision string   `json:"decision" binding:"required"`
	Notes    string   `json:"notes" binding:"lte=512"`
}

type WorkflowActionResult struct {
	HeaderID     types.ID           `json:"headerId"`
	HeaderStatus state.HeaderStatus `json:"headerStatus"`
	DetailID     types.ID           `json:"detailId"`
	DetailStatus state.DetailStatus `json:"detailStatus"`
}
