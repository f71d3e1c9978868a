package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePolicyProposal = "PolicyProposal"

// Event type constants
const (
	EventTypeProposalReceived  = "ProposalReceived"
	EventTypeProposalValidated = "ProposalValidated"
	EventTypeProposalPending   = "ProposalPending"
	EventTypeProposalApproved  = "ProposalApproved"
	EventTypeProposalRejected  = "ProposalRejected"
	EventTypeProposalCanceled  = "ProposalCanceled"
)

// ProposalReceivedEvent is raised when a new proposal enters the pipeline
type ProposalReceivedEvent struct {
	shared.BaseDomainEvent
	ProposalID    uuid.UUID `json:"proposal_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Category      string    `json:"category"`
	InsuredAmount string    `json:"insured_amount"`
	Currency      string    `json:"currency"`
}

// NewProposalReceivedEvent creates a new ProposalReceivedEvent
func NewProposalReceivedEvent(p *PolicyProposal, at time.Time) *ProposalReceivedEvent {
	return &ProposalReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalReceived, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
		ProductID:       p.ProductID,
		Category:        p.Category.String(),
		InsuredAmount:   p.InsuredAmount.Amount().String(),
		Currency:        string(p.InsuredAmount.Currency()),
	}
}

// EventType returns the event type name
func (e *ProposalReceivedEvent) EventType() string {
	return EventTypeProposalReceived
}

// ProposalValidatedEvent is raised when the underwriting limit check passes
type ProposalValidatedEvent struct {
	shared.BaseDomainEvent
	ProposalID uuid.UUID `json:"proposal_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	RiskTier   string    `json:"risk_tier"`
}

// NewProposalValidatedEvent creates a new ProposalValidatedEvent
func NewProposalValidatedEvent(p *PolicyProposal, tier RiskTier, at time.Time) *ProposalValidatedEvent {
	return &ProposalValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalValidated, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
		RiskTier:        tier.String(),
	}
}

// EventType returns the event type name
func (e *ProposalValidatedEvent) EventType() string {
	return EventTypeProposalValidated
}

// ProposalPendingEvent is raised when a proposal starts waiting for the
// payment and subscription verdicts
type ProposalPendingEvent struct {
	shared.BaseDomainEvent
	ProposalID uuid.UUID `json:"proposal_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewProposalPendingEvent creates a new ProposalPendingEvent
func NewProposalPendingEvent(p *PolicyProposal, at time.Time) *ProposalPendingEvent {
	return &ProposalPendingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalPending, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
	}
}

// EventType returns the event type name
func (e *ProposalPendingEvent) EventType() string {
	return EventTypeProposalPending
}

// ProposalApprovedEvent is raised when both verdicts came back positive
type ProposalApprovedEvent struct {
	shared.BaseDomainEvent
	ProposalID uuid.UUID `json:"proposal_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProductID  uuid.UUID `json:"product_id"`
}

// NewProposalApprovedEvent creates a new ProposalApprovedEvent
func NewProposalApprovedEvent(p *PolicyProposal, at time.Time) *ProposalApprovedEvent {
	return &ProposalApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalApproved, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
		ProductID:       p.ProductID,
	}
}

// EventType returns the event type name
func (e *ProposalApprovedEvent) EventType() string {
	return EventTypeProposalApproved
}

// ProposalRejectedEvent is raised on underwriting rejection or when at least
// one verdict came back negative
type ProposalRejectedEvent struct {
	shared.BaseDomainEvent
	ProposalID uuid.UUID `json:"proposal_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// NewProposalRejectedEvent creates a new ProposalRejectedEvent
func NewProposalRejectedEvent(p *PolicyProposal, reason string, at time.Time) *ProposalRejectedEvent {
	return &ProposalRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalRejected, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *ProposalRejectedEvent) EventType() string {
	return EventTypeProposalRejected
}

// ProposalCanceledEvent is raised when a proposal is canceled before a decision
type ProposalCanceledEvent struct {
	shared.BaseDomainEvent
	ProposalID uuid.UUID `json:"proposal_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// NewProposalCanceledEvent creates a new ProposalCanceledEvent
func NewProposalCanceledEvent(p *PolicyProposal, reason string, at time.Time) *ProposalCanceledEvent {
	return &ProposalCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProposalCanceled, AggregateTypePolicyProposal, p.ID, at),
		ProposalID:      p.ID,
		CustomerID:      p.CustomerID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *ProposalCanceledEvent) EventType() string {
	return EventTypeProposalCanceled
}
