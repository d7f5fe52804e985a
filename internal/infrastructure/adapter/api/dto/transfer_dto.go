package dto

import "time"

// TransferRequest represents the API request for a direct token transfer
type TransferRequest struct {
	PayerID     string `json:"payerId" binding:"required"`
	PayeeID     string `json:"payeeId" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Kind        string `json:"kind" binding:"required,oneof=tip ppv_unlock ticket"`
	ReferenceID string `json:"referenceId"`
}

// TransferResponse represents the API response for a completed transfer
type TransferResponse struct {
	PayerID      string    `json:"payerId"`
	PayeeID      string    `json:"payeeId"`
	Amount       int64     `json:"amount"`
	Fee          int64     `json:"fee,omitempty"`
	PayerBalance int64     `json:"payerBalance"`
	PayeeBalance int64     `json:"payeeBalance"`
	EntryIDs     []string  `json:"entryIds"`
	CompletedAt  time.Time `json:"completedAt"`
}
