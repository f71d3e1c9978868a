package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/domain/shared"
	"github.com/protecta/backend/internal/domain/shared/valueobject"
	"github.com/protecta/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProposalTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ProposalModel{}, &models.ProposalHistoryModel{})
	require.NoError(t, err)

	return db
}

func newRepoProposal(t *testing.T, customerID uuid.UUID) *proposal.PolicyProposal {
	t.Helper()
	p, err := proposal.NewPolicyProposal(proposal.NewProposalInput{
		CustomerID:     customerID,
		ProductID:      uuid.New(),
		Category:       proposal.CategoryAuto,
		SalesChannel:   proposal.ChannelMobile,
		PaymentMethod:  proposal.PaymentCreditCard,
		MonthlyPremium: valueobject.NewMoneyBRL(decimal.NewFromInt(150)),
		InsuredAmount:  valueobject.NewMoneyBRL(decimal.NewFromInt(200_000)),
		Coverages: map[string]valueobject.Money{
			"Collision": valueobject.NewMoneyBRL(decimal.NewFromInt(180_000)),
			"Theft":     valueobject.NewMoneyBRL(decimal.NewFromInt(20_000)),
		},
		Assistances: []string{"Towing", "Glass protection"},
	}, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestGormProposalRepository_SaveAndFindByID(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	p := newRepoProposal(t, uuid.New())
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, proposal.StatusReceived, found.Status)
	assert.Equal(t, proposal.CategoryAuto, found.Category)
	assert.True(t, found.InsuredAmount.Amount().Equal(decimal.NewFromInt(200_000)))
	assert.Equal(t, valueobject.BRL, found.InsuredAmount.Currency())
	assert.Len(t, found.Coverages(), 2)
	assert.True(t, found.Coverages()["Theft"].Amount().Equal(decimal.NewFromInt(20_000)))
	assert.Equal(t, []string{"Towing", "Glass protection"}, found.Assistances())

	history := found.History()
	require.Len(t, history, 1)
	assert.Equal(t, proposal.StatusReceived, history[0].Status)
}

func TestGormProposalRepository_FindByID_NotFound(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProposalRepository_SaveWithLock_PersistsTransition(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	p := newRepoProposal(t, uuid.New())
	require.NoError(t, repo.Save(ctx, p))

	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	now := time.Date(2026, 6, 1, 10, 5, 0, 0, time.UTC)
	require.NoError(t, loaded.Validate(proposal.RiskTierRegular, now))
	require.NoError(t, loaded.MarkAsPending(now))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusPending, reloaded.Status)
	assert.Equal(t, loaded.Version, reloaded.Version)

	history := reloaded.History()
	require.Len(t, history, 3)
	assert.Equal(t, proposal.StatusReceived, history[0].Status)
	assert.Equal(t, proposal.StatusValidated, history[1].Status)
	assert.Equal(t, proposal.StatusPending, history[2].Status)
}

func TestGormProposalRepository_SaveWithLock_VersionConflict(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	p := newRepoProposal(t, uuid.New())
	require.NoError(t, repo.Save(ctx, p))

	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)

	first, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, first.Cancel("customer asked to stop", now))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.Validate(proposal.RiskTierRegular, now))
	err = repo.SaveWithLock(ctx, second)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)

	// The first writer's state stands
	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusCanceled, reloaded.Status)
}

func TestGormProposalRepository_SaveWithLock_NotFound(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)

	p := newRepoProposal(t, uuid.New())
	err := repo.SaveWithLock(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProposalRepository_HistoryIsAppendOnly(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	p := newRepoProposal(t, uuid.New())
	require.NoError(t, repo.Save(ctx, p))

	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(proposal.RiskTierRegular, now))
	require.NoError(t, loaded.MarkAsPending(now))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	loaded, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.RecordPaymentVerdict(true, "", now.Add(time.Minute)))
	require.NoError(t, loaded.RecordSubscriptionVerdict(true, "", now.Add(2*time.Minute)))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	var rows []models.ProposalHistoryModel
	require.NoError(t, db.Where("proposal_id = ?", p.ID).Order("seq ASC").Find(&rows).Error)
	require.Len(t, rows, 4)
	assert.Equal(t, "RECEIVED", rows[0].Status)
	assert.Equal(t, "VALIDATED", rows[1].Status)
	assert.Equal(t, "PENDING", rows[2].Status)
	assert.Equal(t, "APPROVED", rows[3].Status)
	for i, row := range rows {
		assert.Equal(t, i, row.Seq)
	}
}

func TestGormProposalRepository_FindAll(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newRepoProposal(t, customerID)))
	}
	require.NoError(t, repo.Save(ctx, newRepoProposal(t, uuid.New())))

	t.Run("filters by customer", func(t *testing.T) {
		found, err := repo.FindByCustomer(ctx, customerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "RECEIVED"
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 4)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Page = 1
		filter.PageSize = 2
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("ignores unknown sort field", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "evil; DROP TABLE proposals"
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 4)
	})
}

func TestGormProposalRepository_Counts(t *testing.T) {
	db := setupProposalTestDB(t)
	repo := NewGormProposalRepository(db)
	ctx := context.Background()

	p := newRepoProposal(t, uuid.New())
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Save(ctx, newRepoProposal(t, uuid.New())))

	now := time.Date(2026, 6, 3, 8, 0, 0, 0, time.UTC)
	loaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel("duplicate request", now))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	total, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	canceled, err := repo.CountByStatus(ctx, proposal.StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), canceled)
}
