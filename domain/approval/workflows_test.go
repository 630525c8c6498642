package approval_test

import (
	"assetflow/domain"
	"assetflow/domain/approval"
	"assetflow/domain/state"
	"assetflow/testinfra"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestQueryWorkflows(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should only return workflows of visible orgs", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s1 := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		s2 := testinfra.BuildSession(200, domain.OrgRoleCommon+"_2")

		_, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-1", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}, s1)
		assert.Nil(t, err)
		_, err = approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-2", CategoryKey: "TYPE_PUMP", OrgID: 2, BranchCode: "BR02"}, s2)
		assert.Nil(t, err)

		headers, err := approval.QueryWorkflows(&domain.WorkflowQuery{OrgID: 1}, s1)
		Expect(err).To(BeNil())
		Expect(len(*headers)).To(Equal(1))
		Expect((*headers)[0].TriggerRef).To(Equal("AST-1"))

		headers, err = approval.QueryWorkflows(&domain.WorkflowQuery{OrgID: 2}, s1)
		Expect(err).To(BeNil())
		Expect(*headers).To(BeEmpty())
	})

	t.Run("should filter by trigger ref, category and status", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		seedTemplate(t, "TYPE_PUMP", 1, "supervisor")

		_, err := approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-1", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}, s)
		assert.Nil(t, err)
		_, err = approval.Instantiate(&approval.WorkflowInstantiation{
			TriggerRef: "AST-2", CategoryKey: "TYPE_VALVE", OrgID: 1, BranchCode: "BR01"}, s)
		assert.Nil(t, err)

		headers, err := approval.QueryWorkflows(&domain.WorkflowQuery{OrgID: 1, TriggerRef: "AST-2"}, s)
		Expect(err).To(BeNil())
		Expect(len(*headers)).To(Equal(1))
		Expect((*headers)[0].CategoryKey).To(Equal("TYPE_VALVE"))

		headers, err = approval.QueryWorkflows(&domain.WorkflowQuery{OrgID: 1, CategoryKey: "TYPE_PUMP"}, s)
		Expect(err).To(BeNil())
		Expect(len(*headers)).To(Equal(1))
		Expect((*headers)[0].Status).To(Equal(state.HeaderInProgress))

		headers, err = approval.QueryWorkflows(&domain.WorkflowQuery{OrgID: 1, Status: state.HeaderCompleted}, s)
		Expect(err).To(BeNil())
		Expect(len(*headers)).To(Equal(1))
		Expect((*headers)[0].TriggerRef).To(Equal("AST-2"))
	})
}

func TestLoadWorkflows(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should page over all workflows with snapshots", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		seedTemplate(t, "TYPE_PUMP", 1, "supervisor", "manager")

		for _, ref := range []string{"AST-1", "AST-2", "AST-3"} {
			_, err := approval.Instantiate(&approval.WorkflowInstantiation{
				TriggerRef: ref, CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}, s)
			assert.Nil(t, err)
		}

		snapshots, err := approval.LoadWorkflows(testDatabase.DS, 1, 2)
		Expect(err).To(BeNil())
		Expect(len(snapshots)).To(Equal(2))
		Expect(len(snapshots[0].Details)).To(Equal(2))
		Expect(len(snapshots[0].Histories)).To(Equal(1))

		snapshots, err = approval.LoadWorkflows(testDatabase.DS, 2, 2)
		Expect(err).To(BeNil())
		Expect(len(snapshots)).To(Equal(1))

		snapshots, err = approval.LoadWorkflows(testDatabase.DS, 3, 2)
		Expect(err).To(BeNil())
		Expect(snapshots).To(BeEmpty())
	})
}
