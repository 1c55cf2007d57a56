package bunq

import (
	"context"
	"time"

	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/generator"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

// MockSessionToken is the session token stored by a demo login.
const MockSessionToken = "test_session_token"

// Delays simulates network latency per operation in demo mode.
type Delays struct {
	UserInfo     time.Duration
	Accounts     time.Duration
	Transactions time.Duration
	Balance      time.Duration
}

// DefaultDelays mirrors the latency of the hosted API closely enough for the UI spinners to show.
func DefaultDelays() Delays {
	return Delays{
		UserInfo:     500 * time.Millisecond,
		Accounts:     700 * time.Millisecond,
		Transactions: 800 * time.Millisecond,
		Balance:      300 * time.Millisecond,
	}
}

// MockSource serves the generated demo fixtures.
type MockSource struct {
	fixtures generator.Fixtures
	store    tokenstore.Store
	delays   Delays
}

// NewMockSource builds a demo source over fixtures. Pass a zero Delays to answer immediately.
func NewMockSource(fixtures generator.Fixtures, store tokenstore.Store, delays Delays) *MockSource {
	return &MockSource{
		fixtures: fixtures,
		store:    store,
		delays:   delays,
	}
}

// Authenticate always succeeds and stores the fixed demo token.
func (m *MockSource) Authenticate(context.Context) error {
	return m.store.Set(tokenstore.KeySessionToken, MockSessionToken)
}

func (m *MockSource) GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error) {
	if err := sleep(ctx, m.delays.UserInfo); err != nil {
		return nil, err
	}
	return []domain.UserEnvelope{cloneUser(m.fixtures.User)}, nil
}

func (m *MockSource) GetAccounts(ctx context.Context) ([]domain.MonetaryAccountEnvelope, error) {
	if err := sleep(ctx, m.delays.Accounts); err != nil {
		return nil, err
	}
	out := make([]domain.MonetaryAccountEnvelope, 0, len(m.fixtures.Accounts))
	for _, env := range m.fixtures.Accounts {
		out = append(out, cloneAccount(env))
	}
	return out, nil
}

// GetTransactions returns the fixture set of the account, or an empty collection for unknown ids.
func (m *MockSource) GetTransactions(ctx context.Context, accountID int64) ([]domain.PaymentEnvelope, error) {
	if err := sleep(ctx, m.delays.Transactions); err != nil {
		return nil, err
	}
	txs := m.fixtures.Transactions[accountID]
	out := make([]domain.PaymentEnvelope, 0, len(txs))
	for _, env := range txs {
		out = append(out, clonePayment(env))
	}
	return out, nil
}

// GetBalance returns the fixture balance, or a zero EUR balance for unknown ids.
func (m *MockSource) GetBalance(ctx context.Context, accountID int64) (domain.Balance, error) {
	if err := sleep(ctx, m.delays.Balance); err != nil {
		return domain.Balance{}, err
	}
	acc, ok := m.fixtures.Account(accountID)
	if !ok || acc.Balance == nil {
		return zeroBalance(), nil
	}
	return *acc.Balance, nil
}

// cloneUser and the helpers below hand out deep copies, since the fixtures live for the whole process.
func cloneUser(env domain.UserEnvelope) domain.UserEnvelope {
	if env.UserPerson != nil {
		p := *env.UserPerson
		env.UserPerson = &p
	}
	if env.UserCompany != nil {
		c := *env.UserCompany
		env.UserCompany = &c
	}
	if env.UserApiKey != nil {
		k := *env.UserApiKey
		env.UserApiKey = &k
	}
	return env
}

func cloneAccount(env domain.MonetaryAccountEnvelope) domain.MonetaryAccountEnvelope {
	if env.MonetaryAccountBank == nil {
		return env
	}
	acc := *env.MonetaryAccountBank
	acc.Alias = append([]domain.Alias(nil), acc.Alias...)
	acc.Balance = cloneBalance(acc.Balance)
	acc.DailyLimit = cloneBalance(acc.DailyLimit)
	acc.OverdraftLimit = cloneBalance(acc.OverdraftLimit)
	return domain.MonetaryAccountEnvelope{MonetaryAccountBank: &acc}
}

func clonePayment(env domain.PaymentEnvelope) domain.PaymentEnvelope {
	if env.Payment == nil {
		return env
	}
	p := *env.Payment
	return domain.PaymentEnvelope{Payment: &p}
}

func cloneBalance(b *domain.Balance) *domain.Balance {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func zeroBalance() domain.Balance {
	return domain.Balance{Value: "0", Currency: "EUR"}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
