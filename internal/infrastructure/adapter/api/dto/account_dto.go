package dto

import "time"

// BalanceResponse represents the API response for an account's balance
type BalanceResponse struct {
	AccountID      string `json:"accountId"`
	Balance        int64  `json:"balance"`
	TotalEarned    int64  `json:"totalEarned"`
	TotalSpent     int64  `json:"totalSpent"`
	TotalPurchased int64  `json:"totalPurchased"`
}

// EnsureAccountResponse acknowledges an idempotent account creation
type EnsureAccountResponse struct {
	AccountID string `json:"accountId"`
}

// CreditRequest represents a token-pack purchase or refund credit
type CreditRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	ReferenceID string `json:"referenceId" binding:"required"`
	Refund      bool   `json:"refund"`
}

// StatementEntry is one ledger entry in a statement response
type StatementEntry struct {
	EntryID     string    `json:"entryId"`
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatementResponse represents the API response for an account statement
type StatementResponse struct {
	AccountID string           `json:"accountId"`
	Entries   []StatementEntry `json:"entries"`
}

// ReconciliationResponse reports whether an account's balance matches the
// sum of its ledger entries
type ReconciliationResponse struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
	EntrySum  int64  `json:"entrySum"`
	Balanced  bool   `json:"balanced"`
}
