package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/model"
)

// AccountRepository implements persistence.AccountRepository using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts an account model to a domain entity
func (r *AccountRepository) modelToEntity(m *model.Account) (*entity.Account, error) {
	acct, err := entity.NewAccount(m.ID, r.timeProvider)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build account entity: %s", errs.ErrInternalServer, err.Error())
	}

	acct.SetBalance(m.Balance, r.timeProvider)
	acct.TotalEarned = m.TotalEarned
	acct.TotalSpent = m.TotalSpent
	acct.TotalPurchased = m.TotalPurchased
	acct.CreatedAt = m.CreatedAt
	acct.UpdatedAt = m.UpdatedAt

	return acct, nil
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, accountID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Account not found", map[string]any{
			"account_id": accountID,
			"operation":  operation,
		})
		return errs.ErrAccountNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"account_id": accountID,
		"error":      err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrDuplicateAccount
	}

	return fmt.Errorf("%w: %s", errs.ErrStorage, err.Error())
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var m model.Account
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting account", result.Error, id)
	}

	return r.modelToEntity(&m)
}

// GetForUpdate retrieves an account under an exclusive row lock. Only
// meaningful inside a unit of work; the lock is held until commit or
// rollback.
func (r *AccountRepository) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	var m model.Account
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking account", result.Error, id)
	}

	return r.modelToEntity(&m)
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	m := model.Account{
		ID:             account.ID,
		Balance:        account.Balance(),
		TotalEarned:    account.TotalEarned,
		TotalSpent:     account.TotalSpent,
		TotalPurchased: account.TotalPurchased,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&m)
	if result.Error != nil {
		return r.handleDatabaseError("creating account", result.Error, account.ID)
	}

	r.logger.Info("Account created", map[string]any{
		"account_id": account.ID,
	})
	return nil
}

// Ensure idempotently creates a zero-balance account. ON CONFLICT DO NOTHING
// makes concurrent first-login races harmless.
func (r *AccountRepository) Ensure(ctx context.Context, id string) error {
	now := r.timeProvider.Now()
	m := model.Account{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if result.Error != nil {
		return r.handleDatabaseError("ensuring account", result.Error, id)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Account created on first use", map[string]any{
			"account_id": id,
		})
	}
	return nil
}

// Save persists the account's balance, aggregates and timestamp
func (r *AccountRepository) Save(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"balance":         account.Balance(),
			"total_earned":    account.TotalEarned,
			"total_spent":     account.TotalSpent,
			"total_purchased": account.TotalPurchased,
			"updated_at":      account.UpdatedAt,
		})

	if result.Error != nil {
		return r.handleDatabaseError("saving account", result.Error, account.ID)
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("Account not found during save", map[string]any{
			"account_id": account.ID,
		})
		return errs.ErrAccountNotFound
	}

	return nil
}
