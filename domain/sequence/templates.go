package sequence

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/idgen"
	"assetflow/session"
	"assetflow/tenant"
	"sort"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	stepIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	GetTemplateFunc    = GetTemplate
	CreateTemplateFunc = CreateTemplate
	CloneTemplateFunc  = CloneTemplate
)

// GetTemplate returns the ordered approval steps configured for the
// (category, org) pair.
func GetTemplate(categoryKey string, orgId types.ID, s *session.Session) ([]domain.SequenceStep, error) {
	if !s.Perms.HasOrgViewPerm(orgId) {
		return nil, bizerror.ErrForbidden
	}

	db, err := tenant.GormDB(s.Context, orgId)
	if err != nil {
		return nil, err
	}
	steps, err := LoadTemplateSteps(categoryKey, orgId, db)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, bizerror.ErrTemplateNotFound
	}
	return steps, nil
}

// LoadTemplateSteps is the raw ordered read without the not-found guard.
// An empty result is the signal for direct mode instantiation.
func LoadTemplateSteps(categoryKey string, orgId types.ID, db *gorm.DB) ([]domain.SequenceStep, error) {
	var steps []domain.SequenceStep
	if err := db.Where(&domain.SequenceStep{CategoryKey: categoryKey, OrgID: orgId}).
		Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func CreateTemplate(c *domain.SequenceTemplateCreation, s *session.Session) ([]domain.SequenceStep, error) {
	if !s.Perms.HasRoleSuffix(domain.OrgRoleManager + "_" + c.OrgID.String()) {
		return nil, bizerror.ErrForbidden
	}
	if err := checkStepOrders(c.Steps); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	var created []domain.SequenceStep
	err := tenant.Tx(s.Context, c.OrgID, func(tx *gorm.DB) error {
		created = nil
		existing, err := LoadTemplateSteps(c.CategoryKey, c.OrgID, tx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return bizerror.ErrTemplateExisted
		}

		for _, stepCreation := range c.Steps {
			step := domain.SequenceStep{
				ID:          idgen.NextID(stepIdWorker),
				CategoryKey: c.CategoryKey,
				OrgID:       c.OrgID,
				StepOrder:   stepCreation.Order,
				StepRole:    stepCreation.Role,
				CreateTime:  now,
				CreatorID:   s.Identity.ID,
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
			created = append(created, step)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CloneTemplate copies the steps of one category key to another within the
// same org, preserving relative order. A non-empty destination is only
// overwritten when force is set; the overwrite deletes the destination rows
// in the same transaction before reinserting.
func CloneTemplate(c *domain.SequenceTemplateCloning, s *session.Session) (int, error) {
	if !s.Perms.HasRoleSuffix(domain.OrgRoleManager + "_" + c.OrgID.String()) {
		return 0, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	inserted := 0
	err := tenant.Tx(s.Context, c.OrgID, func(tx *gorm.DB) error {
		inserted = 0
		sourceSteps, err := LoadTemplateSteps(c.SourceKey, c.OrgID, tx)
		if err != nil {
			return err
		}
		if len(sourceSteps) == 0 {
			return bizerror.ErrTemplateNotFound
		}

		destSteps, err := LoadTemplateSteps(c.DestKey, c.OrgID, tx)
		if err != nil {
			return err
		}
		if len(destSteps) > 0 {
			if !c.Force {
				return bizerror.ErrTemplateExisted
			}
			if err := tx.Where(&domain.SequenceStep{CategoryKey: c.DestKey, OrgID: c.OrgID}).
				Delete(&domain.SequenceStep{}).Error; err != nil {
				return err
			}
		}

		for _, sourceStep := range sourceSteps {
			step := domain.SequenceStep{
				ID:          idgen.NextID(stepIdWorker),
				CategoryKey: c.DestKey,
				OrgID:       c.OrgID,
				StepOrder:   sourceStep.StepOrder,
				StepRole:    sourceStep.StepRole,
				CreateTime:  now,
				CreatorID:   s.Identity.ID,
			}
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func checkStepOrders(steps []domain.SequenceStepCreation) error {
	if len(steps) == 0 {
		return bizerror.ErrOrderInvalid
	}
	orders := make([]int, 0, len(steps))
	for _, s := range steps {
		orders = append(orders, s.Order)
	}
	sort.Ints(orders)
	for idx, order := range orders {
		if order != idx+1 {
			return bizerror.ErrOrderInvalid
		}
	}
	return nil
}
