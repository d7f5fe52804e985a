package entity

import (
	"math"
	"time"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// Account represents a token-holding ledger account
type Account struct {
	ID             string    // Opaque, stable account identifier
	balance        int64     // Current token balance (private, never negative)
	TotalEarned    int64     // Lifetime tokens received, never decreases
	TotalSpent     int64     // Lifetime tokens spent, never decreases
	TotalPurchased int64     // Lifetime tokens bought with real money, never decreases
	CreatedAt      time.Time // When the account was created
	UpdatedAt      time.Time // When the account was last updated
}

// NewAccount creates a new zero-balance account with the given ID
func NewAccount(id string, timeProvider coreport.TimeProvider) (*Account, error) {
	if id == "" {
		return nil, errs.ErrInvalidAccountID
	}

	now := timeProvider.Now()
	return &Account{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Balance returns the current token balance
func (a *Account) Balance() int64 {
	return a.balance
}

// SetBalance updates the balance directly (for internal use, like repositories)
func (a *Account) SetBalance(balance int64, timeProvider coreport.TimeProvider) {
	a.balance = balance
	a.UpdatedAt = timeProvider.Now()
}

// CanDeduct checks if the account holds enough tokens for a deduction
func (a *Account) CanDeduct(amount int64) bool {
	return amount > 0 && a.balance >= amount
}

// Credit adds tokens earned from another account to the balance
func (a *Account) Credit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if a.balance > math.MaxInt64-amount {
		return errs.ErrAmountOverflow
	}

	a.balance += amount
	a.TotalEarned += amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// Debit removes tokens from the balance if sufficient funds exist.
// Returns a detailed insufficient funds error otherwise.
func (a *Account) Debit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if a.balance < amount {
		return errs.NewInsufficientFundsError(a.ID, amount, a.balance)
	}

	a.balance -= amount
	a.TotalSpent += amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// CreditPurchased adds tokens bought through a token-pack purchase.
// Unlike Credit it advances TotalPurchased rather than TotalEarned.
func (a *Account) CreditPurchased(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if a.balance > math.MaxInt64-amount {
		return errs.ErrAmountOverflow
	}

	a.balance += amount
	a.TotalPurchased += amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// CreditRefund returns previously spent tokens to the balance. Lifetime
// counters are left untouched so the audit trail stays monotone.
func (a *Account) CreditRefund(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if a.balance > math.MaxInt64-amount {
		return errs.ErrAmountOverflow
	}

	a.balance += amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}
