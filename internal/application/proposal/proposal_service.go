package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/domain/shared"
	"github.com/protecta/backend/internal/domain/shared/valueobject"
	"github.com/protecta/backend/internal/infrastructure/telemetry"
)

// ProposalService orchestrates the proposal underwriting lifecycle
type ProposalService struct {
	proposalRepo   proposal.ProposalRepository
	classifier     RiskClassifier
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewProposalService creates a new ProposalService
func NewProposalService(proposalRepo proposal.ProposalRepository, classifier RiskClassifier) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		classifier:   classifier,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProposalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source, used by tests for deterministic history
func (s *ProposalService) SetClock(now func() time.Time) {
	s.now = now
}

// Create registers a new proposal in RECEIVED state
func (s *ProposalService) Create(ctx context.Context, req CreateProposalRequest) (*ProposalResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "proposal", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		"customer_id", req.CustomerID.String(),
		"category", req.Category,
	)

	currency := valueobject.DefaultCurrency

	premium, err := valueobject.NewMoney(req.MonthlyPremium, currency)
	if err != nil {
		return nil, err
	}
	insured, err := valueobject.NewMoney(req.InsuredAmount, currency)
	if err != nil {
		return nil, err
	}
	coverages := make(map[string]valueobject.Money, len(req.Coverages))
	for name, amount := range req.Coverages {
		coverage, err := valueobject.NewMoney(amount, currency)
		if err != nil {
			return nil, err
		}
		coverages[name] = coverage
	}

	p, err := proposal.NewPolicyProposal(proposal.NewProposalInput{
		CustomerID:     req.CustomerID,
		ProductID:      req.ProductID,
		Category:       proposal.Category(req.Category),
		SalesChannel:   proposal.SalesChannel(req.SalesChannel),
		PaymentMethod:  proposal.PaymentMethod(req.PaymentMethod),
		MonthlyPremium: premium,
		InsuredAmount:  insured,
		Coverages:      coverages,
		Assistances:    req.Assistances,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.proposalRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToProposalResponse(p)
	return &response, nil
}

// GetByID retrieves a proposal by ID
func (s *ProposalService) GetByID(ctx context.Context, proposalID uuid.UUID) (*ProposalResponse, error) {
	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	response := ToProposalResponse(p)
	return &response, nil
}

// GetHistory retrieves the audit trail of a proposal
func (s *ProposalService) GetHistory(ctx context.Context, proposalID uuid.UUID) ([]HistoryEntryResponse, error) {
	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponses(p.History()), nil
}

// List retrieves proposals with filtering and pagination
func (s *ProposalService) List(ctx context.Context, filter ProposalListFilter) ([]ProposalListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Category != nil {
		domainFilter.Filters["category"] = string(*filter.Category)
	}

	proposals, err := s.proposalRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.proposalRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProposalListItemResponses(proposals), total, nil
}

// Validate runs underwriting for a received proposal: the customer's risk
// tier is fetched from the classifier, the limit matrix is applied, and an
// accepted proposal is forwarded straight to PENDING where it waits for the
// payment and subscription verdicts.
func (s *ProposalService) Validate(ctx context.Context, proposalID uuid.UUID) (*ProposalResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "proposal", "validate")
	defer span.End()

	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	tier, err := s.classifier.Classify(ctx, p.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		"proposal_id", proposalID.String(),
		"risk_tier", tier.String(),
	)

	if err := p.Validate(tier, s.now()); err != nil {
		return nil, err
	}
	if p.Status == proposal.StatusValidated {
		if err := p.MarkAsPending(s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.proposalRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToProposalResponse(p)
	return &response, nil
}

// RecordPaymentVerdict delivers the payment channel's verdict
func (s *ProposalService) RecordPaymentVerdict(ctx context.Context, proposalID uuid.UUID, req VerdictRequest) (*ProposalResponse, error) {
	return s.recordVerdict(ctx, proposalID, req, func(p *proposal.PolicyProposal, approved bool, reason string, now time.Time) error {
		return p.RecordPaymentVerdict(approved, reason, now)
	})
}

// RecordSubscriptionVerdict delivers the subscription channel's verdict
func (s *ProposalService) RecordSubscriptionVerdict(ctx context.Context, proposalID uuid.UUID, req VerdictRequest) (*ProposalResponse, error) {
	return s.recordVerdict(ctx, proposalID, req, func(p *proposal.PolicyProposal, approved bool, reason string, now time.Time) error {
		return p.RecordSubscriptionVerdict(approved, reason, now)
	})
}

func (s *ProposalService) recordVerdict(
	ctx context.Context,
	proposalID uuid.UUID,
	req VerdictRequest,
	record func(p *proposal.PolicyProposal, approved bool, reason string, now time.Time) error,
) (*ProposalResponse, error) {
	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	approved := req.Approved != nil && *req.Approved
	if err := record(p, approved, req.Reason, s.now()); err != nil {
		return nil, err
	}

	if err := s.proposalRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToProposalResponse(p)
	return &response, nil
}

// Cancel terminates a proposal before a decision is reached
func (s *ProposalService) Cancel(ctx context.Context, proposalID uuid.UUID, req CancelProposalRequest) (*ProposalResponse, error) {
	p, err := s.proposalRepo.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if err := p.Cancel(req.Reason, s.now()); err != nil {
		return nil, err
	}

	if err := s.proposalRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToProposalResponse(p)
	return &response, nil
}

// publishEvents drains the aggregate's pending events after a successful save.
// Publish failures are swallowed: the state change is already durable and the
// audit handler is best effort.
func (s *ProposalService) publishEvents(ctx context.Context, p *proposal.PolicyProposal) {
	if s.eventPublisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}
