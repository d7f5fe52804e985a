package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientFunds = 4001
	CodeInvalidOperation  = 4002
	CodeInvalidAccountID  = 4003
	CodeAlreadyUnlocked   = 4004
	CodeExpired           = 4005
	CodeSoldOut           = 4006
	CodeNotPurchasable    = 4007
	CodeAmountOverflow    = 4008
	CodeDuplicateAccount  = 4009
	CodeInvalidRequest    = 4000
	CodeAccountNotFound   = 4040
	CodeItemNotFound      = 4041
	CodeUnlockNotFound    = 4042

	// 5xxx - Server errors
	CodeStorage        = 5001
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrInsufficientFunds is returned when a payer does not hold enough tokens
	ErrInsufficientFunds = errors.New("insufficient token balance")

	// ErrInvalidOperation is returned for malformed operations such as
	// non-positive amounts or self-transfers
	ErrInvalidOperation = errors.New("invalid ledger operation")

	// ErrInvalidAccountID is returned when the account identifier is empty
	ErrInvalidAccountID = errors.New("account ID cannot be empty")

	// ErrInvalidAmount is returned when the token amount is not a positive integer
	ErrInvalidAmount = errors.New("amount must be a positive number of tokens")

	// ErrAmountOverflow is returned when a credit would overflow the balance counter
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrAccountNotFound is returned when the requested account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrItemNotFound is returned when the requested purchasable item doesn't exist
	ErrItemNotFound = errors.New("item not found")

	// ErrUnlockNotFound is returned when the requested unlock receipt doesn't exist
	ErrUnlockNotFound = errors.New("unlock not found")

	// ErrAlreadyUnlocked is returned when the buyer already holds a receipt for the item
	ErrAlreadyUnlocked = errors.New("item already unlocked by this account")

	// ErrExpired is returned when the item's expiry has passed
	ErrExpired = errors.New("item is no longer available")

	// ErrSoldOut is returned when the item's quantity limit has been reached
	ErrSoldOut = errors.New("item is sold out")

	// ErrNotPurchasable is returned when the item's status does not accept purchases
	ErrNotPurchasable = errors.New("item is not open for purchase")

	// ErrDuplicateAccount is returned when creating an account that already exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrStorage is returned when the storage layer fails; the operation is
	// guaranteed to have left no partial state
	ErrStorage = errors.New("storage error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrInvalidAmount):
		return CodeInvalidOperation
	case errors.Is(err, ErrInvalidAccountID):
		return CodeInvalidAccountID
	case errors.Is(err, ErrAlreadyUnlocked):
		return CodeAlreadyUnlocked
	case errors.Is(err, ErrExpired):
		return CodeExpired
	case errors.Is(err, ErrSoldOut):
		return CodeSoldOut
	case errors.Is(err, ErrNotPurchasable):
		return CodeNotPurchasable
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrDuplicateAccount):
		return CodeDuplicateAccount
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrItemNotFound):
		return CodeItemNotFound
	case errors.Is(err, ErrUnlockNotFound):
		return CodeUnlockNotFound
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError provides detailed error information for a failed debit
type InsufficientFundsError struct {
	AccountID string
	Required  int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient tokens for account %s: required %d, available %d",
		e.AccountID, e.Required, e.Available)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_funds",
		"account_id": e.AccountID,
		"required":   e.Required,
		"available":  e.Available,
		"error_code": CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(accountID string, required, available int64) error {
	return &InsufficientFundsError{
		AccountID: accountID,
		Required:  required,
		Available: available,
	}
}

// TransferError represents an error raised while moving tokens between accounts
type TransferError struct {
	PayerID     string
	PayeeID     string
	Amount      int64
	ReferenceID string
	Reason      string
	Err         error
}

// Error implements the error interface for TransferError
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed (payer: %s, payee: %s, amount: %d, ref: %s): %s - %v",
		e.PayerID, e.PayeeID, e.Amount, e.ReferenceID, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *TransferError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransferError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "transfer_error",
		"payer_id":     e.PayerID,
		"payee_id":     e.PayeeID,
		"amount":       e.Amount,
		"reference_id": e.ReferenceID,
		"reason":       e.Reason,
		"error":        e.Err.Error(),
		"error_code":   ErrorCode(e.Err),
	}
}

// NewTransferError creates a detailed transfer error
func NewTransferError(payerID, payeeID string, amount int64, referenceID, reason string, err error) error {
	return &TransferError{
		PayerID:     payerID,
		PayeeID:     payeeID,
		Amount:      amount,
		ReferenceID: referenceID,
		Reason:      reason,
		Err:         err,
	}
}

// PurchaseError represents an error raised by the unlock/purchase coordinator
type PurchaseError struct {
	BuyerID string
	ItemID  string
	Reason  string
	Err     error
}

// Error implements the error interface for PurchaseError
func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase failed (buyer: %s, item: %s): %s - %v",
		e.BuyerID, e.ItemID, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *PurchaseError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "purchase_error",
		"buyer_id":   e.BuyerID,
		"item_id":    e.ItemID,
		"reason":     e.Reason,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewPurchaseError creates a detailed purchase error
func NewPurchaseError(buyerID, itemID, reason string, err error) error {
	return &PurchaseError{
		BuyerID: buyerID,
		ItemID:  itemID,
		Reason:  reason,
		Err:     err,
	}
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsAlreadyUnlockedError checks if the error is a duplicate unlock error
func IsAlreadyUnlockedError(err error) bool {
	return errors.Is(err, ErrAlreadyUnlocked)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrUnlockNotFound)
}

// IsStorageError checks if the error is an infrastructure storage fault
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsNotPurchasableError checks if the error is any purchase-window rejection
func IsNotPurchasableError(err error) bool {
	return errors.Is(err, ErrNotPurchasable) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrSoldOut)
}
