package ledger

import (
	"math"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

// maxTransferAmount keeps amount * feeBps inside int64. Larger transfers
// would wrap the fee product negative and break the double-entry sums.
const maxTransferAmount = math.MaxInt64 / feeBpsDenominator

// validate rejects malformed transfer requests before any storage work
func (s *Service) validate(req TransferRequest) error {
	if req.PayerID == "" || req.PayeeID == "" {
		return errs.ErrInvalidAccountID
	}
	if req.PayerID == req.PayeeID {
		return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"self-transfer is not allowed", errs.ErrInvalidOperation)
	}
	if req.Amount <= 0 {
		return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"amount must be positive", errs.ErrInvalidOperation)
	}
	if req.Amount > maxTransferAmount {
		return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"amount exceeds the transfer limit", errs.ErrInvalidOperation)
	}
	if !isValidTransferKind(req.Kind) {
		return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"unknown transfer kind", errs.ErrInvalidOperation)
	}
	if req.FeeBps < 0 || req.FeeBps >= feeBpsDenominator {
		return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
			"fee basis points out of range", errs.ErrInvalidOperation)
	}
	if req.FeeBps > 0 {
		if s.platformAccountID == "" {
			return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"fee requested but no platform account configured", errs.ErrInvalidOperation)
		}
		if s.platformAccountID == req.PayerID || s.platformAccountID == req.PayeeID {
			return errs.NewTransferError(req.PayerID, req.PayeeID, req.Amount, req.ReferenceID,
				"platform account cannot be a transfer party", errs.ErrInvalidOperation)
		}
	}
	return nil
}
