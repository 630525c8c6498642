package state_test

import (
	"assetflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ApprovalStateMachine", func() {
	var stateMachine *state.ApprovalStateMachine

	BeforeEach(func() {
		stateMachine = state.NewApprovalStateMachine()
	})

	Describe("Apply", func() {
		It("should compute defined transitions", func() {
			to, ok := stateMachine.Apply(state.DetailInProgress, state.DecisionSubmit)
			Expect(ok).To(BeTrue())
			Expect(to).To(Equal(state.DetailUnderApproval))

			to, ok = stateMachine.Apply(state.DetailUnderApproval, state.DecisionReview)
			Expect(ok).To(BeTrue())
			Expect(to).To(Equal(state.DetailUnderReview))

			for _, from := range []state.DetailStatus{
				state.DetailInProgress, state.DetailUnderApproval, state.DetailUnderReview} {
				to, ok = stateMachine.Apply(from, state.DecisionApprove)
				Expect(ok).To(BeTrue())
				Expect(to).To(Equal(state.DetailApproved))

				to, ok = stateMachine.Apply(from, state.DecisionReject)
				Expect(ok).To(BeTrue())
				Expect(to).To(Equal(state.DetailRejected))
			}

			for _, from := range []state.DetailStatus{state.DetailUnderApproval, state.DetailUnderReview} {
				to, ok = stateMachine.Apply(from, state.DecisionSendBack)
				Expect(ok).To(BeTrue())
				Expect(to).To(Equal(state.DetailInProgress))
			}
		})

		It("should refuse undefined transitions", func() {
			_, ok := stateMachine.Apply(state.DetailInProgress, state.DecisionReview)
			Expect(ok).To(BeFalse())

			_, ok = stateMachine.Apply(state.DetailInProgress, state.DecisionSendBack)
			Expect(ok).To(BeFalse())

			_, ok = stateMachine.Apply(state.DetailUnderApproval, state.DecisionSubmit)
			Expect(ok).To(BeFalse())

			for _, from := range []state.DetailStatus{
				state.DetailInitiated, state.DetailApproved, state.DetailRejected} {
				for _, decision := range []state.Decision{
					state.DecisionSubmit, state.DecisionReview, state.DecisionApprove,
					state.DecisionReject, state.DecisionSendBack} {
					_, ok := stateMachine.Apply(from, decision)
					Expect(ok).To(BeFalse())
				}
			}
		})
	})

	Describe("AvailableTransitions", func() {
		It("should list the transitions leaving a status", func() {
			Ω(stateMachine.AvailableTransitions(state.DetailInProgress)).Should(Equal([]state.Transition{
				{Decision: state.DecisionSubmit, From: state.DetailInProgress, To: state.DetailUnderApproval},
				{Decision: state.DecisionApprove, From: state.DetailInProgress, To: state.DetailApproved},
				{Decision: state.DecisionReject, From: state.DetailInProgress, To: state.DetailRejected},
			}))

			Ω(stateMachine.AvailableTransitions(state.DetailUnderReview)).Should(Equal([]state.Transition{
				{Decision: state.DecisionApprove, From: state.DetailUnderReview, To: state.DetailApproved},
				{Decision: state.DecisionReject, From: state.DetailUnderReview, To: state.DetailRejected},
				{Decision: state.DecisionSendBack, From: state.DetailUnderReview, To: state.DetailInProgress},
			}))

			Ω(stateMachine.AvailableTransitions(state.DetailApproved)).Should(BeEmpty())
			Ω(stateMachine.AvailableTransitions(state.DetailInitiated)).Should(BeEmpty())
		})
	})

	Describe("ParseDecision", func() {
		It("should accept the known decisions only", func() {
			for _, raw := range []string{"Submit", "Review", "Approve", "Reject", "SendBack"} {
				decision, ok := state.ParseDecision(raw)
				Expect(ok).To(BeTrue())
				Expect(string(decision)).To(Equal(raw))
			}

			_, ok := state.ParseDecision("approve")
			Expect(ok).To(BeFalse())
			_, ok = state.ParseDecision("")
			Expect(ok).To(BeFalse())
			_, ok = state.ParseDecision("Cancel")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("status predicates", func() {
		It("should report active detail statuses", func() {
			Expect(state.DetailInProgress.IsActive()).To(BeTrue())
			Expect(state.DetailUnderApproval.IsActive()).To(BeTrue())
			Expect(state.DetailUnderReview.IsActive()).To(BeTrue())
			Expect(state.DetailInitiated.IsActive()).To(BeFalse())
			Expect(state.DetailApproved.IsActive()).To(BeFalse())
			Expect(state.DetailRejected.IsActive()).To(BeFalse())
		})

		It("should report terminal statuses", func() {
			Expect(state.DetailApproved.IsTerminal()).To(BeTrue())
			Expect(state.DetailRejected.IsTerminal()).To(BeTrue())
			Expect(state.DetailInProgress.IsTerminal()).To(BeFalse())

			Expect(state.HeaderCompleted.IsTerminal()).To(BeTrue())
			Expect(state.HeaderCancelled.IsTerminal()).To(BeTrue())
			Expect(state.HeaderInitiated.IsTerminal()).To(BeFalse())
			Expect(state.HeaderInProgress.IsTerminal()).To(BeFalse())
			Expect(state.HeaderApprovalPending.IsTerminal()).To(BeFalse())
		})
	})

	Describe("HeaderStatusFor", func() {
		It("should pend the header while a detail waits for approval", func() {
			Expect(state.HeaderStatusFor(state.DetailUnderApproval)).To(Equal(state.HeaderApprovalPending))
			Expect(state.HeaderStatusFor(state.DetailUnderReview)).To(Equal(state.HeaderApprovalPending))
			Expect(state.HeaderStatusFor(state.DetailInProgress)).To(Equal(state.HeaderInProgress))
		})
	})
})
