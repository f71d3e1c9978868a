package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/domain/shared"
	"github.com/protecta/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProposalRepository implements ProposalRepository using GORM
type GormProposalRepository struct {
	db *gorm.DB
}

// NewGormProposalRepository creates a new GormProposalRepository
func NewGormProposalRepository(db *gorm.DB) *GormProposalRepository {
	return &GormProposalRepository{db: db}
}

// FindByID finds a proposal by its ID, history included
func (r *GormProposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*proposal.PolicyProposal, error) {
	var model models.ProposalModel
	if err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds proposals with filtering and pagination
func (r *GormProposalRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*proposal.PolicyProposal, error) {
	var found []models.ProposalModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ProposalModel{}),
		filter,
	)

	if err := query.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Find(&found).Error; err != nil {
		return nil, err
	}
	return toDomainProposals(found)
}

// FindByCustomer finds proposals for a customer
func (r *GormProposalRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]*proposal.PolicyProposal, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["customer_id"] = customerID
	return r.FindAll(ctx, filter)
}

// Save persists a new proposal together with its seeded history
func (r *GormProposalRepository) Save(ctx context.Context, p *proposal.PolicyProposal) error {
	model := models.ProposalModelFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := model.History
		model.History = nil
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock updates a proposal with an optimistic version check. A version
// mismatch fails with CONCURRENCY_CONFLICT, which serializes concurrent
// transitions on the same proposal. New history rows are appended; existing
// rows are never touched.
func (r *GormProposalRepository) SaveWithLock(ctx context.Context, p *proposal.PolicyProposal) error {
	model := models.ProposalModelFromDomain(p)
	loadedVersion := model.Version

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model.Version = loadedVersion + 1
		model.UpdatedAt = time.Now()

		result := tx.Model(&models.ProposalModel{}).
			Where("id = ? AND version = ?", model.ID, loadedVersion).
			Updates(map[string]interface{}{
				"status":                         model.Status,
				"finished_at":                    model.FinishedAt,
				"payment_response_received":      model.PaymentResponseReceived,
				"payment_confirmed":              model.PaymentConfirmed,
				"payment_rejection_reason":       model.PaymentRejectionReason,
				"subscription_response_received": model.SubscriptionResponseReceived,
				"subscription_confirmed":         model.SubscriptionConfirmed,
				"subscription_rejection_reason":  model.SubscriptionRejectionReason,
				"version":                        model.Version,
				"updated_at":                     model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.ProposalModel{}).
				Where("id = ?", model.ID).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return shared.ErrNotFound
			}
			return shared.NewDomainError("CONCURRENCY_CONFLICT",
				"The proposal was modified concurrently, reload and retry")
		}

		// Append-only: rows already present keep their (proposal_id, seq) key
		if len(model.History) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "seq"}},
				DoNothing: true,
			}).Create(&model.History).Error; err != nil {
				return err
			}
		}

		p.IncrementVersion()
		return nil
	})
}

// Count counts proposals matching the filter
func (r *GormProposalRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ProposalModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts proposals in the given status
func (r *GormProposalRepository) CountByStatus(ctx context.Context, status proposal.ProposalStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProposalModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filters, sorting and pagination to a query
func (r *GormProposalRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ProposalSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyFilterWithoutPagination applies only the field filters
func (r *GormProposalRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		}
	}
	return query
}

func toDomainProposals(found []models.ProposalModel) ([]*proposal.PolicyProposal, error) {
	result := make([]*proposal.PolicyProposal, len(found))
	for i := range found {
		p, err := found[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

var _ proposal.ProposalRepository = (*GormProposalRepository)(nil)
