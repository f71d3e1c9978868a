package proposal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/shared"
	"github.com/protecta/backend/internal/domain/shared/valueobject"
)

// Verdict channels, used in history reasons and events
const (
	ChannelPayment      = "Payment"
	ChannelSubscription = "Subscription"
)

func errIllegalTransition(from, to ProposalStatus) *shared.DomainError {
	return shared.NewDomainError("ILLEGAL_TRANSITION",
		fmt.Sprintf("Cannot transition proposal from %s to %s", from, to))
}

func errDuplicateVerdict(channel string) *shared.DomainError {
	return shared.NewDomainError("DUPLICATE_VERDICT",
		fmt.Sprintf("%s verdict was already recorded for this proposal", channel))
}

func errInvalidIntake(msg string) *shared.DomainError {
	return shared.NewDomainError("INVALID_INTAKE", msg)
}

// PolicyProposal is the aggregate root for the underwriting lifecycle of a
// customer's insurance proposal. Intake fields are set once at creation; the
// lifecycle advances exclusively through the transition methods below, each
// of which appends exactly one entry to the owned audit trail.
//
// All mutating calls on one instance must be serialized by the caller (the
// repository enforces this across processes with an optimistic version check).
type PolicyProposal struct {
	shared.BaseAggregateRoot

	CustomerID     uuid.UUID
	ProductID      uuid.UUID
	Category       Category
	SalesChannel   SalesChannel
	PaymentMethod  PaymentMethod
	MonthlyPremium valueobject.Money
	InsuredAmount  valueobject.Money
	coverages      map[string]valueobject.Money
	assistances    []string

	Status     ProposalStatus
	FinishedAt *time.Time

	// Dual-confirmation slots. The *ResponseReceived flags are the
	// at-most-once guards; they flip false->true exactly once.
	PaymentResponseReceived      bool
	PaymentConfirmed             bool
	PaymentRejectionReason       string
	SubscriptionResponseReceived bool
	SubscriptionConfirmed        bool
	SubscriptionRejectionReason  string

	history historyLog
}

// NewProposalInput carries the immutable intake data for a new proposal
type NewProposalInput struct {
	CustomerID     uuid.UUID
	ProductID      uuid.UUID
	Category       Category
	SalesChannel   SalesChannel
	PaymentMethod  PaymentMethod
	MonthlyPremium valueobject.Money
	InsuredAmount  valueobject.Money
	Coverages      map[string]valueobject.Money
	Assistances    []string
}

// NewPolicyProposal creates a proposal in RECEIVED state with its history
// seeded. It fails with INVALID_INTAKE when the coverage map or assistance
// list is empty, an enum value is unknown, or currencies are inconsistent.
func NewPolicyProposal(input NewProposalInput, now time.Time) (*PolicyProposal, error) {
	if input.CustomerID == uuid.Nil {
		return nil, errInvalidIntake("Customer ID cannot be empty")
	}
	if input.ProductID == uuid.Nil {
		return nil, errInvalidIntake("Product ID cannot be empty")
	}
	if !input.Category.IsValid() {
		return nil, errInvalidIntake(fmt.Sprintf("Unknown insurance category %q", string(input.Category)))
	}
	if !input.SalesChannel.IsValid() {
		return nil, errInvalidIntake(fmt.Sprintf("Unknown sales channel %q", string(input.SalesChannel)))
	}
	if !input.PaymentMethod.IsValid() {
		return nil, errInvalidIntake(fmt.Sprintf("Unknown payment method %q", string(input.PaymentMethod)))
	}
	if len(input.Coverages) == 0 {
		return nil, errInvalidIntake("Proposal must declare at least one coverage")
	}
	if len(input.Assistances) == 0 {
		return nil, errInvalidIntake("Proposal must declare at least one assistance")
	}
	currency := input.InsuredAmount.Currency()
	if input.MonthlyPremium.Currency() != currency {
		return nil, errInvalidIntake("Monthly premium and insured amount must share a currency")
	}
	for name, amount := range input.Coverages {
		if amount.Currency() != currency {
			return nil, errInvalidIntake(fmt.Sprintf("Coverage %q currency does not match insured amount", name))
		}
	}

	coverages := make(map[string]valueobject.Money, len(input.Coverages))
	for name, amount := range input.Coverages {
		coverages[name] = amount
	}
	assistances := make([]string, len(input.Assistances))
	copy(assistances, input.Assistances)

	p := &PolicyProposal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		CustomerID:        input.CustomerID,
		ProductID:         input.ProductID,
		Category:          input.Category,
		SalesChannel:      input.SalesChannel,
		PaymentMethod:     input.PaymentMethod,
		MonthlyPremium:    input.MonthlyPremium,
		InsuredAmount:     input.InsuredAmount,
		coverages:         coverages,
		assistances:       assistances,
		Status:            StatusReceived,
	}
	p.history.append(StatusReceived, now, "")
	p.AddDomainEvent(NewProposalReceivedEvent(p, now))

	return p, nil
}

// Coverages returns a copy of the coverage map
func (p *PolicyProposal) Coverages() map[string]valueobject.Money {
	out := make(map[string]valueobject.Money, len(p.coverages))
	for name, amount := range p.coverages {
		out[name] = amount
	}
	return out
}

// Assistances returns a copy of the assistance list
func (p *PolicyProposal) Assistances() []string {
	out := make([]string, len(p.assistances))
	copy(out, p.assistances)
	return out
}

// History returns the audit trail in insertion order
func (p *PolicyProposal) History() []HistoryEntry {
	return p.history.Entries()
}

// IsTerminal returns true once the proposal reached a final decision
func (p *PolicyProposal) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// Validate runs the underwriting limit check for the given risk tier.
// An acceptable amount moves the proposal to VALIDATED; an unacceptable one
// rejects it immediately with the validator's reason on the audit trail.
func (p *PolicyProposal) Validate(tier RiskTier, now time.Time) error {
	if !tier.IsValid() {
		return shared.NewDomainError("INVALID_RISK_TIER", fmt.Sprintf("Unknown risk tier %q", string(tier)))
	}
	if !p.Status.CanTransitionTo(StatusValidated) {
		return errIllegalTransition(p.Status, StatusValidated)
	}

	result, err := IsAcceptable(p.InsuredAmount, p.Category, tier)
	if err != nil {
		return err
	}

	if !result.Acceptable {
		p.transitionTo(StatusRejected, result.Reason, now)
		p.AddDomainEvent(NewProposalRejectedEvent(p, result.Reason, now))
		return nil
	}

	p.transitionTo(StatusValidated, "", now)
	p.AddDomainEvent(NewProposalValidatedEvent(p, tier, now))
	return nil
}

// MarkAsPending moves a validated proposal to PENDING, where it waits for
// the payment and subscription verdicts.
func (p *PolicyProposal) MarkAsPending(now time.Time) error {
	if !p.Status.CanTransitionTo(StatusPending) {
		return errIllegalTransition(p.Status, StatusPending)
	}
	p.transitionTo(StatusPending, "", now)
	p.AddDomainEvent(NewProposalPendingEvent(p, now))
	return nil
}

// Cancel terminates the proposal from any non-terminal state
func (p *PolicyProposal) Cancel(reason string, now time.Time) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if !p.Status.CanTransitionTo(StatusCanceled) {
		return errIllegalTransition(p.Status, StatusCanceled)
	}
	p.transitionTo(StatusCanceled, reason, now)
	p.AddDomainEvent(NewProposalCanceledEvent(p, reason, now))
	return nil
}

// RecordPaymentVerdict records the payment authorization outcome.
// It fails with DUPLICATE_VERDICT when the payment channel already resolved
// and with ILLEGAL_TRANSITION outside PENDING. The duplicate guard is checked
// first: a redelivered verdict on a decided proposal is a duplicate, not a
// caller bug. The terminal decision is only evaluated once both channels have
// reported (symmetric wait), so the two verdicts may arrive in either order.
func (p *PolicyProposal) RecordPaymentVerdict(approved bool, reason string, now time.Time) error {
	if p.PaymentResponseReceived {
		return errDuplicateVerdict(ChannelPayment)
	}
	if p.Status != StatusPending {
		return errIllegalTransition(p.Status, StatusPending)
	}

	p.PaymentResponseReceived = true
	p.PaymentConfirmed = approved
	if !approved {
		p.PaymentRejectionReason = reason
	}
	p.UpdatedAt = now

	p.evaluateDecision(now)
	return nil
}

// RecordSubscriptionVerdict records the subscription authorization outcome,
// with the same guarantees as RecordPaymentVerdict.
func (p *PolicyProposal) RecordSubscriptionVerdict(approved bool, reason string, now time.Time) error {
	if p.SubscriptionResponseReceived {
		return errDuplicateVerdict(ChannelSubscription)
	}
	if p.Status != StatusPending {
		return errIllegalTransition(p.Status, StatusPending)
	}

	p.SubscriptionResponseReceived = true
	p.SubscriptionConfirmed = approved
	if !approved {
		p.SubscriptionRejectionReason = reason
	}
	p.UpdatedAt = now

	p.evaluateDecision(now)
	return nil
}

// evaluateDecision applies the combination rule once both verdicts are in:
// approved iff both channels confirmed, rejected otherwise with the reason
// composed from every negative channel, payment channel first.
func (p *PolicyProposal) evaluateDecision(now time.Time) {
	if !p.PaymentResponseReceived || !p.SubscriptionResponseReceived {
		return
	}

	if p.PaymentConfirmed && p.SubscriptionConfirmed {
		p.transitionTo(StatusApproved, "", now)
		p.AddDomainEvent(NewProposalApprovedEvent(p, now))
		return
	}

	reason := p.composeRejectionReason()
	p.transitionTo(StatusRejected, reason, now)
	p.AddDomainEvent(NewProposalRejectedEvent(p, reason, now))
}

// composeRejectionReason lists payment before subscription so the composed
// reason is identical regardless of verdict arrival order.
func (p *PolicyProposal) composeRejectionReason() string {
	var parts []string
	if p.PaymentResponseReceived && !p.PaymentConfirmed {
		parts = append(parts, fmt.Sprintf("%s rejected: %s", ChannelPayment, p.PaymentRejectionReason))
	}
	if p.SubscriptionResponseReceived && !p.SubscriptionConfirmed {
		parts = append(parts, fmt.Sprintf("%s rejected: %s", ChannelSubscription, p.SubscriptionRejectionReason))
	}
	return strings.Join(parts, "; ")
}

// transitionTo applies a legal transition: the status changes, exactly one
// history entry is appended, and FinishedAt is set on the first terminal
// transition. Callers must have checked legality already.
func (p *PolicyProposal) transitionTo(status ProposalStatus, reason string, now time.Time) {
	p.Status = status
	p.history.append(status, now, reason)
	if status.IsTerminal() && p.FinishedAt == nil {
		finished := now
		p.FinishedAt = &finished
	}
	p.UpdatedAt = now
}

// ProposalState is the stored form of a proposal, used by the persistence
// layer to rebuild the aggregate without going through intake validation.
type ProposalState struct {
	ID                           uuid.UUID
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
	Version                      int
	CustomerID                   uuid.UUID
	ProductID                    uuid.UUID
	Category                     Category
	SalesChannel                 SalesChannel
	PaymentMethod                PaymentMethod
	MonthlyPremium               valueobject.Money
	InsuredAmount                valueobject.Money
	Coverages                    map[string]valueobject.Money
	Assistances                  []string
	Status                       ProposalStatus
	FinishedAt                   *time.Time
	PaymentResponseReceived      bool
	PaymentConfirmed             bool
	PaymentRejectionReason       string
	SubscriptionResponseReceived bool
	SubscriptionConfirmed        bool
	SubscriptionRejectionReason  string
	History                      []HistoryEntry
}

// ReconstituteProposal rebuilds an aggregate from its stored state
func ReconstituteProposal(state ProposalState) *PolicyProposal {
	p := &PolicyProposal{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        state.ID,
				CreatedAt: state.CreatedAt,
				UpdatedAt: state.UpdatedAt,
			},
			Version: state.Version,
		},
		CustomerID:                   state.CustomerID,
		ProductID:                    state.ProductID,
		Category:                     state.Category,
		SalesChannel:                 state.SalesChannel,
		PaymentMethod:                state.PaymentMethod,
		MonthlyPremium:               state.MonthlyPremium,
		InsuredAmount:                state.InsuredAmount,
		coverages:                    state.Coverages,
		assistances:                  state.Assistances,
		Status:                       state.Status,
		FinishedAt:                   state.FinishedAt,
		PaymentResponseReceived:      state.PaymentResponseReceived,
		PaymentConfirmed:             state.PaymentConfirmed,
		PaymentRejectionReason:       state.PaymentRejectionReason,
		SubscriptionResponseReceived: state.SubscriptionResponseReceived,
		SubscriptionConfirmed:        state.SubscriptionConfirmed,
		SubscriptionRejectionReason:  state.SubscriptionRejectionReason,
	}
	p.history.entries = make([]HistoryEntry, len(state.History))
	copy(p.history.entries, state.History)
	return p
}

// Snapshot captures the aggregate's stored form for the persistence layer
func (p *PolicyProposal) Snapshot() ProposalState {
	return ProposalState{
		ID:                           p.ID,
		CreatedAt:                    p.CreatedAt,
		UpdatedAt:                    p.UpdatedAt,
		Version:                      p.Version,
		CustomerID:                   p.CustomerID,
		ProductID:                    p.ProductID,
		Category:                     p.Category,
		SalesChannel:                 p.SalesChannel,
		PaymentMethod:                p.PaymentMethod,
		MonthlyPremium:               p.MonthlyPremium,
		InsuredAmount:                p.InsuredAmount,
		Coverages:                    p.Coverages(),
		Assistances:                  p.Assistances(),
		Status:                       p.Status,
		FinishedAt:                   p.FinishedAt,
		PaymentResponseReceived:      p.PaymentResponseReceived,
		PaymentConfirmed:             p.PaymentConfirmed,
		PaymentRejectionReason:       p.PaymentRejectionReason,
		SubscriptionResponseReceived: p.SubscriptionResponseReceived,
		SubscriptionConfirmed:        p.SubscriptionConfirmed,
		SubscriptionRejectionReason:  p.SubscriptionRejectionReason,
		History:                      p.History(),
	}
}
