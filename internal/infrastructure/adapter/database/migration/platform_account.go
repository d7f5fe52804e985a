package migration

import (
	"context"

	accountUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/account"
)

// SeedPlatformAccount makes sure the platform commission account exists so
// fee entries always have a valid target. Safe to call on every startup.
func SeedPlatformAccount(ctx context.Context, accountService *accountUseCase.Service, platformAccountID string) error {
	return accountService.EnsureAccount(ctx, platformAccountID)
}
