package approval_test

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/domain/sequence"
	"assetflow/domain/state"
	"assetflow/persistence"
	"assetflow/session"
	"assetflow/testinfra"
	"context"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("assetflow")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(
		&domain.SequenceStep{}, &domain.WorkflowHeader{}, &domain.WorkflowDetail{}, &domain.HistoryRecord{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	approval.ClearTerminalHandlers()
	*testDatabase = db
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
	approval.ClearTerminalHandlers()
}

func seedTemplate(t *testing.T, categoryKey string, orgId types.ID, roles ...string) {
	steps := make([]domain.SequenceStepCreation, 0, len(roles))
	for idx, role := range roles {
		steps = append(steps, domain.SequenceStepCreation{Role: role, Order: idx + 1})
	}
	_, err := sequence.CreateTemplate(
		&domain.SequenceTemplateCreation{CategoryKey: categoryKey, OrgID: orgId, Steps: steps},
		testinfra.BuildSession(500, domain.OrgRoleManager+"_"+orgId.String()))
	assert.Nil(t, err)
}

func TestInstantiate(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should forbid to instantiate for an org the session has no role in", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		creation := &approval.WorkflowInstantiation{
			TriggerRef: "AST-100", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}
		snapshot, err := approval.Instantiate(creation, testinfra.BuildSession(100, domain.OrgRoleCommon+"_2"))
		Expect(snapshot).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should create one detail per template step with only the first active", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		seedTemplate(t, "TYPE_PUMP", 1, "supervisor", "manager", "director")

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		snapshot, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-100", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}, s)
		Expect(err).To(BeNil())

		Expect(snapshot.Header.ID).ToNot(BeZero())
		Expect(snapshot.Header.TriggerRef).To(Equal("AST-100"))
		Expect(snapshot.Header.CategoryKey).To(Equal("TYPE_PUMP"))
		Expect(snapshot.Header.OrgID).To(Equal(types.ID(1)))
		Expect(snapshot.Header.BranchCode).To(Equal("BR01"))
		Expect(snapshot.Header.Status).To(Equal(state.HeaderInProgress))
		Expect(snapshot.Header.CreatorID).To(Equal(types.ID(100)))

		Expect(len(snapshot.Details)).To(Equal(3))
		Expect(snapshot.Details[0].Sequence).To(Equal(1))
		Expect(snapshot.Details[0].StepRole).To(Equal("supervisor"))
		Expect(snapshot.Details[0].Status).To(Equal(state.DetailInProgress))
		Expect(snapshot.Details[1].Sequence).To(Equal(2))
		Expect(snapshot.Details[1].Status).To(Equal(state.DetailInitiated))
		Expect(snapshot.Details[2].Sequence).To(Equal(3))
		Expect(snapshot.Details[2].Status).To(Equal(state.DetailInitiated))

		// all rows are persisted
		detail, err := approval.DetailWorkflow(snapshot.Header.ID, 1, s)
		Expect(err).To(BeNil())
		Expect(detail.Header.Status).To(Equal(state.HeaderInProgress))
		Expect(len(detail.Details)).To(Equal(3))
		Expect(len(detail.Histories)).To(Equal(1))
		Expect(detail.Histories[0].Action).To(Equal(domain.HistoryActionInstantiated))
		Expect(detail.Histories[0].DetailID).To(BeZero())
	})

	t.Run("should complete directly when the org has no template for the category", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		invoked := []types.ID{}
		approval.RegisterTerminalHandler(approval.TerminalHandler{
			Name: "recorder",
			Handle: func(header *domain.WorkflowHeader, s *session.Session) error {
				invoked = append(invoked, header.ID)
				return nil
			},
		})

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		snapshot, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-101", CategoryKey: "TYPE_UNKNOWN", OrgID: 1, BranchCode: "BR01"}, s)
		Expect(err).To(BeNil())
		Expect(snapshot.Header.Status).To(Equal(state.HeaderCompleted))
		Expect(snapshot.Details).To(Equal([]domain.WorkflowDetail{}))
		Expect(invoked).To(Equal([]types.ID{snapshot.Header.ID}))

		detail, err := approval.DetailWorkflow(snapshot.Header.ID, 1, s)
		Expect(err).To(BeNil())
		Expect(len(detail.Histories)).To(Equal(1))
		Expect(detail.Histories[0].Action).To(Equal(domain.HistoryActionDirectCompleted))
	})

	t.Run("should let an explicit bypass win over a configured template", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		seedTemplate(t, "TYPE_PUMP", 1, "supervisor", "manager")

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		snapshot, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-102", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01",
			Bypass: true, Notes: "maintenance not required"}, s)
		Expect(err).To(BeNil())
		Expect(snapshot.Header.Status).To(Equal(state.HeaderCompleted))
		Expect(snapshot.Details).To(BeEmpty())

		detail, err := approval.DetailWorkflow(snapshot.Header.ID, 1, s)
		Expect(err).To(BeNil())
		Expect(len(detail.Histories)).To(Equal(1))
		Expect(detail.Histories[0].Action).To(Equal(domain.HistoryActionBypassed))
		Expect(detail.Histories[0].Notes).To(Equal("maintenance not required"))
	})

	t.Run("should not invoke terminal handlers for a workflow with pending steps", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		seedTemplate(t, "TYPE_PUMP", 1, "supervisor")

		invoked := 0
		approval.RegisterTerminalHandler(approval.TerminalHandler{
			Name: "recorder",
			Handle: func(header *domain.WorkflowHeader, s *session.Session) error {
				invoked++
				return nil
			},
		})

		_, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-103", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"},
			testinfra.BuildSession(100, domain.OrgRoleCommon+"_1"))
		Expect(err).To(BeNil())
		Expect(invoked).To(BeZero())
	})
}
