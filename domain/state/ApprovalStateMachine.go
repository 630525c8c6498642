package state

type HeaderStatus string

const (
	HeaderInitiated       HeaderStatus = "INITIATED"
	HeaderInProgress      HeaderStatus = "IN_PROGRESS"
	HeaderApprovalPending HeaderStatus = "APPROVAL_PENDING"
	HeaderCompleted       HeaderStatus = "COMPLETED"
	HeaderCancelled       HeaderStatus = "CANCELLED"
)

func (s HeaderStatus) IsTerminal() bool {
	return s == HeaderCompleted || s == HeaderCancelled
}

type DetailStatus string

const (
	DetailInitiated     DetailStatus = "INITIATED"
	DetailInProgress    DetailStatus = "IN_PROGRESS"
	DetailUnderApproval DetailStatus = "UNDER_APPROVAL"
	DetailUnderReview   DetailStatus = "UNDER_REVIEW"
	DetailApproved      DetailStatus = "APPROVED"
	DetailRejected      DetailStatus = "REJECTED"
)

// IsActive reports whether a detail in this status is the step currently
// eligible for action. At most one detail of a header may be active.
func (s DetailStatus) IsActive() bool {
	return s == DetailInProgress || s == DetailUnderApproval || s == DetailUnderReview
}

func (s DetailStatus) IsTerminal() bool {
	return s == DetailApproved || s == DetailRejected
}

type Decision string

const (
	DecisionSubmit   Decision = "Submit"
	DecisionReview   Decision = "Review"
	DecisionApprove  Decision = "Approve"
	DecisionReject   Decision = "Reject"
	DecisionSendBack Decision = "SendBack"
)

func ParseDecision(raw string) (Decision, bool) {
	switch Decision(raw) {
	case DecisionSubmit, DecisionReview, DecisionApprove, DecisionReject, DecisionSendBack:
		return Decision(raw), true
	}
	return "", false
}

type Transition struct {
	Decision Decision     `json:"decision"`
	From     DetailStatus `json:"from"`
	To       DetailStatus `json:"to"`
}

// ApprovalStateMachine is a stateless object, just used for state computing.
// The transition table is fixed at construction so that an illegal transition
// can never be produced by status string comparison at call sites.
type ApprovalStateMachine struct {
	Transitions []Transition `json:"transitions"`
}

func NewApprovalStateMachine() *ApprovalStateMachine {
	return &ApprovalStateMachine{
		Transitions: []Transition{
			{Decision: DecisionSubmit, From: DetailInProgress, To: DetailUnderApproval},
			{Decision: DecisionReview, From: DetailUnderApproval, To: DetailUnderReview},

			{Decision: DecisionApprove, From: DetailInProgress, To: DetailApproved},
			{Decision: DecisionApprove, From: DetailUnderApproval, To: DetailApproved},
			{Decision: DecisionApprove, From: DetailUnderReview, To: DetailApproved},

			{Decision: DecisionReject, From: DetailInProgress, To: DetailRejected},
			{Decision: DecisionReject, From: DetailUnderApproval, To: DetailRejected},
			{Decision: DecisionReject, From: DetailUnderReview, To: DetailRejected},

			{Decision: DecisionSendBack, From: DetailUnderApproval, To: DetailInProgress},
			{Decision: DecisionSendBack, From: DetailUnderReview, To: DetailInProgress},
		},
	}
}

var DefaultApprovalStateMachine = NewApprovalStateMachine()

// Apply computes the target status of a detail for the given decision.
// The second return value is false when the transition is not defined.
func (sm *ApprovalStateMachine) Apply(from DetailStatus, decision Decision) (DetailStatus, bool) {
	for _, t := range sm.Transitions {
		if t.From == from && t.Decision == decision {
			return t.To, true
		}
	}
	return from, false
}

func (sm *ApprovalStateMachine) AvailableTransitions(from DetailStatus) []Transition {
	r := []Transition{}
	for _, t := range sm.Transitions {
		if t.From == from {
			r = append(r, t)
		}
	}
	return r
}

// HeaderStatusFor computes the header status implied by the status of the
// active detail row. Terminal header statuses are decided by the caller when
// the chain ends (Completed) or a step is rejected (Cancelled).
func HeaderStatusFor(active DetailStatus) HeaderStatus {
	if active == DetailUnderApproval || active == DetailUnderReview {
		return HeaderApprovalPending
	}
	return HeaderInProgress
}
