package proposal

// ProposalStatus represents the lifecycle state of a policy proposal
type ProposalStatus string

const (
	StatusReceived  ProposalStatus = "RECEIVED"
	StatusValidated ProposalStatus = "VALIDATED"
	StatusPending   ProposalStatus = "PENDING"
	StatusApproved  ProposalStatus = "APPROVED"
	StatusRejected  ProposalStatus = "REJECTED"
	StatusCanceled  ProposalStatus = "CANCELED"
)

// IsValid checks if the status is a valid ProposalStatus
func (s ProposalStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusValidated, StatusPending, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of ProposalStatus
func (s ProposalStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that admit no further transition
func (s ProposalStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProposalStatus) CanTransitionTo(target ProposalStatus) bool {
	switch s {
	case StatusReceived:
		return target == StatusValidated || target == StatusRejected || target == StatusCanceled
	case StatusValidated:
		return target == StatusPending || target == StatusCanceled
	case StatusPending:
		return target == StatusApproved || target == StatusRejected || target == StatusCanceled
	case StatusApproved, StatusRejected, StatusCanceled:
		return false // Terminal states
	}
	return false
}
