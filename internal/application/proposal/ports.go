package proposal

import (
	"context"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
)

// RiskClassifier resolves a customer's risk tier from the external
// fraud-analysis service. Implementations live in infrastructure; a caching
// decorator may wrap the raw client.
type RiskClassifier interface {
	Classify(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, error)
}
