package proposal

import (
	"context"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/shared"
)

// ProposalRepository defines the interface for policy proposal persistence
type ProposalRepository interface {
	// FindByID finds a proposal by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PolicyProposal, error)

	// FindAll finds proposals with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]*PolicyProposal, error)

	// FindByCustomer finds proposals for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]*PolicyProposal, error)

	// Save creates a new proposal
	Save(ctx context.Context, p *PolicyProposal) error

	// SaveWithLock updates a proposal with an optimistic version check.
	// It fails with CONCURRENCY_CONFLICT when the stored version changed,
	// which serializes concurrent transitions on the same proposal.
	SaveWithLock(ctx context.Context, p *PolicyProposal) error

	// Count counts proposals matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts proposals in the given status
	CountByStatus(ctx context.Context, status ProposalStatus) (int64, error)
}
