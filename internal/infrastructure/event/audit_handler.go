package event

import (
	"context"

	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every proposal lifecycle event to the structured
// log, giving operators a queryable trail alongside the persisted history.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		logger: logger.Named("audit"),
	}
}

// EventTypes returns the proposal lifecycle event types
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		proposal.EventTypeProposalReceived,
		proposal.EventTypeProposalValidated,
		proposal.EventTypeProposalPending,
		proposal.EventTypeProposalApproved,
		proposal.EventTypeProposalRejected,
		proposal.EventTypeProposalCanceled,
	}
}

// Handle logs the event with its aggregate coordinates and payload details
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *proposal.ProposalReceivedEvent:
		fields = append(fields,
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("category", e.Category),
			zap.String("insured_amount", e.InsuredAmount),
			zap.String("currency", e.Currency),
		)
	case *proposal.ProposalValidatedEvent:
		fields = append(fields, zap.String("risk_tier", e.RiskTier))
	case *proposal.ProposalRejectedEvent:
		fields = append(fields, zap.String("reason", e.Reason))
	case *proposal.ProposalCanceledEvent:
		fields = append(fields, zap.String("reason", e.Reason))
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
