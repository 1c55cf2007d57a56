package bunq

import (
	"context"

	"github.com/vanshika/bunqdash/internal/domain"
)

// AccountDataSource is the capability behind the Client: a demo implementation serving fixtures
// and a live implementation talking to the bunq API. It is chosen once, at construction.
type AccountDataSource interface {
	Authenticate(ctx context.Context) error
	GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error)
	GetAccounts(ctx context.Context) ([]domain.MonetaryAccountEnvelope, error)
	GetTransactions(ctx context.Context, accountID int64) ([]domain.PaymentEnvelope, error)
	GetBalance(ctx context.Context, accountID int64) (domain.Balance, error)
}
