package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// CreateProposalRequest represents the intake payload for a new proposal
type CreateProposalRequest struct {
	CustomerID     uuid.UUID                  `json:"customer_id" binding:"required"`
	ProductID      uuid.UUID                  `json:"product_id" binding:"required"`
	Category       string                     `json:"category" binding:"required"`
	SalesChannel   string                     `json:"sales_channel" binding:"required"`
	PaymentMethod  string                     `json:"payment_method" binding:"required"`
	MonthlyPremium decimal.Decimal            `json:"monthly_premium" binding:"required"`
	InsuredAmount  decimal.Decimal            `json:"insured_amount" binding:"required"`
	Coverages      map[string]decimal.Decimal `json:"coverages" binding:"required,min=1"`
	Assistances    []string                   `json:"assistances" binding:"required,min=1"`
}

// VerdictRequest represents a payment or subscription verdict delivery.
// Approved is a pointer so `"approved": false` binds without tripping the
// required check.
type VerdictRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Reason   string `json:"reason" binding:"max=500"`
}

// CancelProposalRequest represents a request to cancel a proposal
type CancelProposalRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ProposalListFilter represents filter options for the proposal list
type ProposalListFilter struct {
	CustomerID *uuid.UUID               `form:"customer_id"`
	Status     *proposal.ProposalStatus `form:"status"`
	Category   *proposal.Category       `form:"category"`
	Page       int                      `form:"page" binding:"omitempty,min=1"`
	PageSize   int                      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string                   `form:"order_by"`
	OrderDir   string                   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// ProposalResponse represents a proposal in API responses
type ProposalResponse struct {
	ID                    uuid.UUID                  `json:"id"`
	CustomerID            uuid.UUID                  `json:"customer_id"`
	ProductID             uuid.UUID                  `json:"product_id"`
	Category              string                     `json:"category"`
	SalesChannel          string                     `json:"sales_channel"`
	PaymentMethod         string                     `json:"payment_method"`
	MonthlyPremium        decimal.Decimal            `json:"monthly_premium"`
	InsuredAmount         decimal.Decimal            `json:"insured_amount"`
	Currency              string                     `json:"currency"`
	Coverages             map[string]decimal.Decimal `json:"coverages"`
	Assistances           []string                   `json:"assistances"`
	Status                string                     `json:"status"`
	PaymentConfirmed      *bool                      `json:"payment_confirmed,omitempty"`
	SubscriptionConfirmed *bool                      `json:"subscription_confirmed,omitempty"`
	CreatedAt             time.Time                  `json:"created_at"`
	UpdatedAt             time.Time                  `json:"updated_at"`
	FinishedAt            *time.Time                 `json:"finished_at,omitempty"`
}

// ProposalListItemResponse represents a proposal in list responses
type ProposalListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Category      string          `json:"category"`
	SalesChannel  string          `json:"sales_channel"`
	InsuredAmount decimal.Decimal `json:"insured_amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}

// HistoryEntryResponse represents one audit trail entry
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// ==================== Converters ====================

// ToProposalResponse converts a domain proposal to a response DTO
func ToProposalResponse(p *proposal.PolicyProposal) ProposalResponse {
	coverages := make(map[string]decimal.Decimal)
	for name, amount := range p.Coverages() {
		coverages[name] = amount.Amount()
	}

	resp := ProposalResponse{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		ProductID:      p.ProductID,
		Category:       p.Category.String(),
		SalesChannel:   p.SalesChannel.String(),
		PaymentMethod:  p.PaymentMethod.String(),
		MonthlyPremium: p.MonthlyPremium.Amount(),
		InsuredAmount:  p.InsuredAmount.Amount(),
		Currency:       string(p.InsuredAmount.Currency()),
		Coverages:      coverages,
		Assistances:    p.Assistances(),
		Status:         p.Status.String(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		FinishedAt:     p.FinishedAt,
	}

	// Verdict outcomes are only meaningful once the channel reported
	if p.PaymentResponseReceived {
		confirmed := p.PaymentConfirmed
		resp.PaymentConfirmed = &confirmed
	}
	if p.SubscriptionResponseReceived {
		confirmed := p.SubscriptionConfirmed
		resp.SubscriptionConfirmed = &confirmed
	}

	return resp
}

// ToProposalListItemResponse converts a domain proposal to a list item DTO
func ToProposalListItemResponse(p *proposal.PolicyProposal) ProposalListItemResponse {
	return ProposalListItemResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		Category:      p.Category.String(),
		SalesChannel:  p.SalesChannel.String(),
		InsuredAmount: p.InsuredAmount.Amount(),
		Currency:      string(p.InsuredAmount.Currency()),
		Status:        p.Status.String(),
		CreatedAt:     p.CreatedAt,
		FinishedAt:    p.FinishedAt,
	}
}

// ToProposalListItemResponses converts a slice of proposals to list item DTOs
func ToProposalListItemResponses(proposals []*proposal.PolicyProposal) []ProposalListItemResponse {
	responses := make([]ProposalListItemResponse, len(proposals))
	for i, p := range proposals {
		responses[i] = ToProposalListItemResponse(p)
	}
	return responses
}

// ToHistoryResponses converts the audit trail to response DTOs
func ToHistoryResponses(entries []proposal.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = HistoryEntryResponse{
			Status:    e.Status.String(),
			Timestamp: e.Timestamp,
			Reason:    e.Reason,
		}
	}
	return responses
}
