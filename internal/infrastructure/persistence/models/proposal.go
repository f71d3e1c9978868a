package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AmountMap stores named monetary amounts as a JSON document. The proposal's
// single currency column applies to every entry.
type AmountMap map[string]decimal.Decimal

// Value implements driver.Valuer
func (m AmountMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *AmountMap) Scan(value interface{}) error {
	if value == nil {
		*m = AmountMap{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AmountMap", value)
	}
	return json.Unmarshal(b, m)
}

// StringList stores a list of strings as a JSON document
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return json.Unmarshal(b, l)
}

// ProposalModel is the persistence model for the PolicyProposal aggregate root.
type ProposalModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	CreatedAt      time.Time              `gorm:"not null;index"`
	UpdatedAt      time.Time              `gorm:"not null"`
	Version        int                    `gorm:"not null;default:1"`
	CustomerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID              `gorm:"type:uuid;not null"`
	Category       string                 `gorm:"type:varchar(20);not null;index"`
	SalesChannel   string                 `gorm:"type:varchar(20);not null"`
	PaymentMethod  string                 `gorm:"type:varchar(20);not null"`
	Currency       string                 `gorm:"type:varchar(3);not null;default:'BRL'"`
	MonthlyPremium decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	InsuredAmount  decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Coverages      AmountMap              `gorm:"type:jsonb;not null"`
	Assistances    StringList             `gorm:"type:jsonb;not null"`
	Status         string                 `gorm:"type:varchar(20);not null;index"`
	FinishedAt     *time.Time             `gorm:"index"`
	History        []ProposalHistoryModel `gorm:"foreignKey:ProposalID;references:ID"`

	PaymentResponseReceived      bool   `gorm:"not null;default:false"`
	PaymentConfirmed             bool   `gorm:"not null;default:false"`
	PaymentRejectionReason       string `gorm:"type:varchar(500)"`
	SubscriptionResponseReceived bool   `gorm:"not null;default:false"`
	SubscriptionConfirmed        bool   `gorm:"not null;default:false"`
	SubscriptionRejectionReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProposalModel) TableName() string {
	return "proposals"
}

// ProposalHistoryModel is one row of the append-only audit trail. Rows are
// keyed by (proposal_id, seq) and are never updated or deleted.
type ProposalHistoryModel struct {
	ProposalID uuid.UUID `gorm:"type:uuid;primary_key"`
	Seq        int       `gorm:"primary_key;autoIncrement:false"`
	Status     string    `gorm:"type:varchar(20);not null"`
	OccurredAt time.Time `gorm:"not null"`
	Reason     string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProposalHistoryModel) TableName() string {
	return "proposal_history"
}

// ToDomain converts the persistence model to a domain PolicyProposal aggregate.
func (m *ProposalModel) ToDomain() (*proposal.PolicyProposal, error) {
	currency := valueobject.Currency(m.Currency)

	premium, err := valueobject.NewMoney(m.MonthlyPremium, currency)
	if err != nil {
		return nil, fmt.Errorf("stored monthly premium is invalid: %w", err)
	}
	insured, err := valueobject.NewMoney(m.InsuredAmount, currency)
	if err != nil {
		return nil, fmt.Errorf("stored insured amount is invalid: %w", err)
	}
	coverages := make(map[string]valueobject.Money, len(m.Coverages))
	for name, amount := range m.Coverages {
		coverage, err := valueobject.NewMoney(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("stored coverage %q is invalid: %w", name, err)
		}
		coverages[name] = coverage
	}

	history := make([]proposal.HistoryEntry, len(m.History))
	for i, entry := range m.History {
		history[i] = proposal.HistoryEntry{
			Status:    proposal.ProposalStatus(entry.Status),
			Timestamp: entry.OccurredAt,
			Reason:    entry.Reason,
		}
	}

	return proposal.ReconstituteProposal(proposal.ProposalState{
		ID:                           m.ID,
		CreatedAt:                    m.CreatedAt,
		UpdatedAt:                    m.UpdatedAt,
		Version:                      m.Version,
		CustomerID:                   m.CustomerID,
		ProductID:                    m.ProductID,
		Category:                     proposal.Category(m.Category),
		SalesChannel:                 proposal.SalesChannel(m.SalesChannel),
		PaymentMethod:                proposal.PaymentMethod(m.PaymentMethod),
		MonthlyPremium:               premium,
		InsuredAmount:                insured,
		Coverages:                    coverages,
		Assistances:                  m.Assistances,
		Status:                       proposal.ProposalStatus(m.Status),
		FinishedAt:                   m.FinishedAt,
		PaymentResponseReceived:      m.PaymentResponseReceived,
		PaymentConfirmed:             m.PaymentConfirmed,
		PaymentRejectionReason:       m.PaymentRejectionReason,
		SubscriptionResponseReceived: m.SubscriptionResponseReceived,
		SubscriptionConfirmed:        m.SubscriptionConfirmed,
		SubscriptionRejectionReason:  m.SubscriptionRejectionReason,
		History:                      history,
	}), nil
}

// FromDomain populates the persistence model from a domain PolicyProposal.
func (m *ProposalModel) FromDomain(p *proposal.PolicyProposal) {
	state := p.Snapshot()

	m.ID = state.ID
	m.CreatedAt = state.CreatedAt
	m.UpdatedAt = state.UpdatedAt
	m.Version = state.Version
	m.CustomerID = state.CustomerID
	m.ProductID = state.ProductID
	m.Category = string(state.Category)
	m.SalesChannel = string(state.SalesChannel)
	m.PaymentMethod = string(state.PaymentMethod)
	m.Currency = string(state.InsuredAmount.Currency())
	m.MonthlyPremium = state.MonthlyPremium.Amount()
	m.InsuredAmount = state.InsuredAmount.Amount()
	m.Status = string(state.Status)
	m.FinishedAt = state.FinishedAt
	m.PaymentResponseReceived = state.PaymentResponseReceived
	m.PaymentConfirmed = state.PaymentConfirmed
	m.PaymentRejectionReason = state.PaymentRejectionReason
	m.SubscriptionResponseReceived = state.SubscriptionResponseReceived
	m.SubscriptionConfirmed = state.SubscriptionConfirmed
	m.SubscriptionRejectionReason = state.SubscriptionRejectionReason

	m.Coverages = make(AmountMap, len(state.Coverages))
	for name, amount := range state.Coverages {
		m.Coverages[name] = amount.Amount()
	}
	m.Assistances = StringList(state.Assistances)

	m.History = make([]ProposalHistoryModel, len(state.History))
	for i, entry := range state.History {
		m.History[i] = ProposalHistoryModel{
			ProposalID: state.ID,
			Seq:        i,
			Status:     string(entry.Status),
			OccurredAt: entry.Timestamp,
			Reason:     entry.Reason,
		}
	}
}

// ProposalModelFromDomain creates a new persistence model from a domain PolicyProposal.
func ProposalModelFromDomain(p *proposal.PolicyProposal) *ProposalModel {
	m := &ProposalModel{}
	m.FromDomain(p)
	return m
}
