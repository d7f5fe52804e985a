package database

import (
	"context"

	"gorm.io/gorm"

	domainerror "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/domain/port/persistence"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/repository"
)

type contextKey string

const txKey contextKey = "ledger_tx"

// UnitOfWork implements persistence.UnitOfWork on top of a GORM transaction.
// The transaction handle travels in the context so nested calls share it.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a transaction coordinator over the given connection
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin starts a transaction and stores it in the returned context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return nil, domainerror.ErrInvalidOperation
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{
			"error": tx.Error.Error(),
		})
		return nil, domainerror.ErrStorage
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the transaction carried by the context
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok {
		return domainerror.ErrInvalidOperation
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{
			"error": err.Error(),
		})
		return domainerror.ErrStorage
	}

	return nil
}

// Rollback rolls back the transaction carried by the context
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok {
		return domainerror.ErrInvalidOperation
	}

	if err := tx.Rollback().Error; err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return domainerror.ErrStorage
	}

	return nil
}

// GetAccountRepository returns an account repository bound to the transaction
// in ctx, or to the base connection when no transaction is active.
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return repository.NewAccountRepository(u.dbFromContext(ctx), u.timeProvider, u.logger)
}

// GetEntryRepository returns a ledger entry repository bound to the transaction in ctx
func (u *UnitOfWork) GetEntryRepository(ctx context.Context) persistence.EntryRepository {
	return repository.NewEntryRepository(u.dbFromContext(ctx), u.logger)
}

// GetItemRepository returns an item repository bound to the transaction in ctx
func (u *UnitOfWork) GetItemRepository(ctx context.Context) persistence.ItemRepository {
	return repository.NewItemRepository(u.dbFromContext(ctx), u.logger)
}

// GetUnlockRepository returns an unlock repository bound to the transaction in ctx
func (u *UnitOfWork) GetUnlockRepository(ctx context.Context) persistence.UnlockRepository {
	return repository.NewUnlockRepository(u.dbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) dbFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return u.db
}
