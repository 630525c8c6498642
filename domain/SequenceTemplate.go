package domain

import (
	"github.com/fundwit/go-commons/types"
)

// SequenceStep is one required approval step of a sequence template.
// A template is the ordered set of rows sharing (category_key, org_id),
// with step_order contiguous from 1.
type SequenceStep struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CategoryKey string   `json:"categoryKey" gorm:"unique_index:sequence_step_unique"`
	OrgID       types.ID `json:"orgId" gorm:"unique_index:sequence_step_unique" sql:"type:BIGINT UNSIGNED NOT NULL"`
	StepOrder   int      `json:"stepOrder" gorm:"unique_index:sequence_step_unique"`

	StepRole string `json:"stepRole"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	CreatorID  types.ID        `json:"creatorId"`
}

type SequenceStepCreation struct {
	Role  string `json:"role" binding:"required,lte=32"`
	Order int    `json:"order" binding:"required,min=1"`
}

type SequenceTemplateCreation struct {
	CategoryKey string   `json:"categoryKey" binding:"required,lte=32"`
	OrgID       types.ID `json:"orgId" binding:"required"`

	Steps []SequenceStepCreation `json:"steps" binding:"required,dive"`
}

type SequenceTemplateCloning struct {
	SourceKey string   `json:"sourceKey" binding:"required,lte=32"`
	DestKey   string   `json:"destKey" binding:"required,lte=32"`
	OrgID     types.ID `json:"orgId" binding:"required"`
	Force     bool     `json:"force"`
}
