package bunq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vanshika/bunqdash/internal/generator"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

func newTestMock(store tokenstore.Store) *MockSource {
	gen := generator.New(generator.DefaultConfig().WithSeed(11)).WithClock(func() time.Time {
		return time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	})
	return NewMockSource(generator.NewFixtures(gen), store, Delays{})
}

func TestMockSource_Authenticate(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	src := newTestMock(store)
	if err := src.Authenticate(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := tokenstore.Lookup(store, tokenstore.KeySessionToken); got != MockSessionToken {
		t.Fatalf("expected mock token stored, got %q", got)
	}
}

func TestMockSource_Transactions(t *testing.T) {
	src := newTestMock(tokenstore.NewMemoryStore())
	ctx := context.Background()

	for id, want := range map[int64]int{1: 30, 2: 15, 3: 10, 999: 0} {
		txs, err := src.GetTransactions(ctx, id)
		if err != nil {
			t.Fatalf("account %d: %v", id, err)
		}
		if len(txs) != want {
			t.Fatalf("account %d: expected %d payments, got %d", id, want, len(txs))
		}
		if txs == nil {
			t.Fatalf("account %d: expected non-nil collection", id)
		}
	}
}

func TestMockSource_FixturesSurviveCallerMutation(t *testing.T) {
	src := newTestMock(tokenstore.NewMemoryStore())
	ctx := context.Background()

	first, _ := src.GetTransactions(ctx, 2)
	want := first[0].Payment.Amount.Value
	first[0].Payment.Amount.Value = "999999.00"
	first[1].Payment = nil
	second, _ := src.GetTransactions(ctx, 2)
	if second[0].Payment.Amount.Value != want || second[1].Payment == nil {
		t.Fatalf("expected payment fixtures unchanged, got %+v", second[0].Payment)
	}

	accs, _ := src.GetAccounts(ctx)
	accs[0].MonetaryAccountBank.Balance.Value = "-1"
	accs[0].MonetaryAccountBank.Alias[0].Value = "NL99EVIL"
	if got, _ := src.GetBalance(ctx, 1); got.Value != "2458.32" {
		t.Fatalf("expected fixture balance unchanged, got %q", got.Value)
	}
	again, _ := src.GetAccounts(ctx)
	if again[0].MonetaryAccountBank.Alias[0].Value == "NL99EVIL" {
		t.Fatalf("expected fixture aliases unchanged")
	}

	users, _ := src.GetUserInfo(ctx)
	users[0].UserPerson.Email = "changed@example.com"
	if users, _ = src.GetUserInfo(ctx); users[0].UserPerson.Email != "test@example.com" {
		t.Fatalf("expected fixture user unchanged, got %q", users[0].UserPerson.Email)
	}
}

func TestMockSource_Balance(t *testing.T) {
	src := newTestMock(tokenstore.NewMemoryStore())
	ctx := context.Background()

	got, err := src.GetBalance(ctx, 3)
	if err != nil || got.Value != "543.21" || got.Currency != "EUR" {
		t.Fatalf("unexpected balance %+v (%v)", got, err)
	}
	got, err = src.GetBalance(ctx, 99)
	if err != nil || got.Value != "0" || got.Currency != "EUR" {
		t.Fatalf("expected zero balance for unknown account, got %+v (%v)", got, err)
	}
}

func TestMockSource_UserAndAccounts(t *testing.T) {
	src := newTestMock(tokenstore.NewMemoryStore())
	ctx := context.Background()

	users, err := src.GetUserInfo(ctx)
	if err != nil || len(users) != 1 || users[0].UserPerson.DisplayName != "Test User" {
		t.Fatalf("unexpected users %+v (%v)", users, err)
	}
	accounts, err := src.GetAccounts(ctx)
	if err != nil || len(accounts) != 3 {
		t.Fatalf("unexpected accounts %+v (%v)", accounts, err)
	}
}

func TestMockSource_DelayHonoursContext(t *testing.T) {
	gen := generator.New(generator.DefaultConfig().WithSeed(1))
	src := NewMockSource(generator.NewFixtures(gen), tokenstore.NewMemoryStore(), Delays{Accounts: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := src.GetAccounts(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
