package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/model"
)

// EntryRepository implements persistence.EntryRepository using GORM.
// The entry log is append-only; there is no update or delete path.
type EntryRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewEntryRepository creates a new EntryRepository instance
func NewEntryRepository(db *gorm.DB, logger coreport.Logger) *EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EntryRepository) entityToModel(entry *entity.LedgerEntry) model.LedgerEntry {
	return model.LedgerEntry{
		ID:          entry.ID,
		AccountID:   entry.AccountID,
		Amount:      entry.Amount,
		Kind:        string(entry.Kind),
		ReferenceID: entry.ReferenceID,
		CreatedAt:   entry.CreatedAt,
	}
}

func (r *EntryRepository) modelToEntity(m *model.LedgerEntry) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:          m.ID,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		Kind:        entity.EntryKind(m.Kind),
		ReferenceID: m.ReferenceID,
		CreatedAt:   m.CreatedAt,
	}
}

// Append persists a new ledger entry
func (r *EntryRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	m := r.entityToModel(entry)

	result := r.db.WithContext(ctx).Create(&m)
	if result.Error != nil {
		r.logger.Error("Failed to append ledger entry", map[string]any{
			"entry_id":   entry.ID,
			"account_id": entry.AccountID,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	return nil
}

// ListByAccount returns the account's most recent entries, newest first
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.LedgerEntry, error) {
	var rows []model.LedgerEntry
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		r.logger.Error("Failed to list ledger entries", map[string]any{
			"account_id": accountID,
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	entries := make([]*entity.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, r.modelToEntity(&rows[i]))
	}
	return entries, nil
}

// SumByAccount returns the signed sum of all entry amounts for an account
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	var sum *int64
	result := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Select("SUM(amount)").
		Scan(&sum)
	if result.Error != nil {
		r.logger.Error("Failed to sum ledger entries", map[string]any{
			"account_id": accountID,
			"error":      result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrStorage, result.Error.Error())
	}

	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
