package bunq

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vanshika/bunqdash/internal/config"
	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/logging"
	"github.com/vanshika/bunqdash/internal/metrics"
	"github.com/vanshika/bunqdash/internal/normalize"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

type stubSource struct {
	authErr  error
	fetchErr error
}

func (s *stubSource) Authenticate(context.Context) error { return s.authErr }
func (s *stubSource) GetUserInfo(context.Context) ([]domain.UserEnvelope, error) {
	return nil, s.fetchErr
}
func (s *stubSource) GetAccounts(context.Context) ([]domain.MonetaryAccountEnvelope, error) {
	return nil, s.fetchErr
}
func (s *stubSource) GetTransactions(context.Context, int64) ([]domain.PaymentEnvelope, error) {
	return nil, s.fetchErr
}
func (s *stubSource) GetBalance(context.Context, int64) (domain.Balance, error) {
	return domain.Balance{}, s.fetchErr
}

func TestClient_AuthenticateNeverErrors(t *testing.T) {
	m := metrics.New()
	client := NewClient(&stubSource{authErr: errors.New("disk full")}, tokenstore.NewMemoryStore(), logging.Discard(), m)

	res := client.Authenticate(context.Background())
	if res.Success {
		t.Fatalf("expected failure")
	}
	if !errors.Is(res.Err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", res.Err)
	}
	if got := testutil.ToFloat64(m.UpstreamCalls.WithLabelValues(OpAuthenticate, metrics.OutcomeError)); got != 1 {
		t.Fatalf("expected failed authenticate counted, got %v", got)
	}
}

func TestClient_ReadErrorsBecomeFetchErrors(t *testing.T) {
	cause := context.Canceled
	client := NewClient(&stubSource{fetchErr: cause}, tokenstore.NewMemoryStore(), logging.Discard(), nil)
	ctx := context.Background()

	checks := map[string]func() error{
		OpGetUserInfo:     func() error { _, err := client.GetUserInfo(ctx); return err },
		OpGetAccounts:     func() error { _, err := client.GetAccounts(ctx); return err },
		OpGetTransactions: func() error { _, err := client.GetTransactions(ctx, 1); return err },
		OpGetBalance:      func() error { _, err := client.GetBalance(ctx, 1); return err },
	}
	for op, call := range checks {
		err := call()
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: expected FetchError, got %v", op, err)
		}
		if fe.Op != op || !errors.Is(err, cause) {
			t.Fatalf("%s: unexpected error %v", op, err)
		}
	}
}

func TestClient_FetchErrorPassesThrough(t *testing.T) {
	original := &FetchError{Op: "get user", Status: http.StatusUnauthorized, Err: errors.New("nope")}
	client := NewClient(&stubSource{fetchErr: original}, tokenstore.NewMemoryStore(), logging.Discard(), nil)

	_, err := client.GetUserInfo(context.Background())
	if err != original {
		t.Fatalf("expected original FetchError, got %v", err)
	}
}

func TestClient_LogoutIsIdempotent(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	_ = store.Set(tokenstore.KeySessionToken, "s")
	_ = store.Set(tokenstore.KeyInstallationToken, "i")
	_ = store.Set(tokenstore.KeyAPIKey, "k")
	client := NewClient(newTestMock(store), store, logging.Discard(), nil)

	for i := 0; i < 2; i++ {
		if err := client.Logout(); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
	if client.HasSession() {
		t.Fatalf("expected no session after logout")
	}
	if tokenstore.Lookup(store, tokenstore.KeyInstallationToken) != "" {
		t.Fatalf("expected installation token cleared")
	}
	if tokenstore.Lookup(store, tokenstore.KeyAPIKey) != "k" {
		t.Fatalf("expected api key kept")
	}
}

func TestClient_DemoScenario(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	client := NewClient(newTestMock(store), store, logging.Discard(), nil)
	ctx := context.Background()

	if !client.Demo() {
		t.Fatalf("expected demo client")
	}
	if res := client.Authenticate(ctx); !res.Success {
		t.Fatalf("expected demo login to succeed, got %v", res.Err)
	}
	if !client.HasSession() {
		t.Fatalf("expected session after demo login")
	}

	envs, err := client.GetAccounts(ctx)
	if err != nil {
		t.Fatalf("get accounts: %v", err)
	}
	var selected domain.Account
	for _, env := range envs {
		if acc := client.MapEnvelopeToAccount(env); acc.ID == 1 {
			selected = acc
		}
	}
	if selected.ID != 1 || selected.IBAN != "NL00BUNQ0000000000" {
		t.Fatalf("expected account 1, got %+v", selected)
	}

	payments, err := client.GetTransactions(ctx, selected.ID)
	if err != nil {
		t.Fatalf("get transactions: %v", err)
	}
	txs := normalize.Transactions(payments)
	if len(txs) != 30 {
		t.Fatalf("expected 30 transactions, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.ID < 1000 || tx.ID > 1029 {
			t.Fatalf("transaction id %d outside [1000, 1029]", tx.ID)
		}
	}

	balance, err := client.GetBalance(ctx, 99)
	if err != nil || balance != (domain.Balance{Value: "0", Currency: "EUR"}) {
		t.Fatalf("expected zero balance, got %+v (%v)", balance, err)
	}
}

func TestClient_LiveLogoutThenUserInfoFails(t *testing.T) {
	fake := newFakeBunq()
	store := tokenstore.NewMemoryStore()
	client := NewClient(newTestHTTPSource(t, fake, store), store, logging.Discard(), nil)
	ctx := context.Background()

	if res := client.Authenticate(ctx); !res.Success {
		t.Fatalf("authenticate: %v", res.Err)
	}
	if _, err := client.GetUserInfo(ctx); err != nil {
		t.Fatalf("expected user info while logged in, got %v", err)
	}
	if client.Demo() {
		t.Fatalf("expected live client")
	}

	if err := client.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err := client.GetUserInfo(ctx)
	if !IsFetchError(err) {
		t.Fatalf("expected FetchError after logout, got %v", err)
	}
}

func TestClient_SetAPIKey(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	client := NewClient(newTestMock(store), store, logging.Discard(), nil)
	if err := client.SetAPIKey(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if err := client.SetAPIKey("abc"); err != nil {
		t.Fatalf("set api key: %v", err)
	}
	if tokenstore.Lookup(store, tokenstore.KeyAPIKey) != "abc" {
		t.Fatalf("expected key stored")
	}
}

func TestNewSource(t *testing.T) {
	store := tokenstore.NewMemoryStore()

	src, err := NewSource(config.BunqConfig{Mode: config.ModeDemo, DemoSeed: 5}, store)
	if err != nil {
		t.Fatalf("demo source: %v", err)
	}
	mock, ok := src.(*MockSource)
	if !ok {
		t.Fatalf("expected MockSource, got %T", src)
	}
	if mock.delays != (Delays{}) {
		t.Fatalf("expected no delays when latency disabled, got %+v", mock.delays)
	}

	src, err = NewSource(config.BunqConfig{Mode: config.ModeLive, BaseURL: "https://example.test"}, store)
	if err != nil {
		t.Fatalf("live source: %v", err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Fatalf("expected HTTPSource, got %T", src)
	}

	_, err = NewSource(config.BunqConfig{Mode: config.ModeLive, PublicKeyFile: filepath.Join(t.TempDir(), "missing.pem")}, store)
	if err == nil {
		t.Fatalf("expected error for missing public key file")
	}
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	key, err := GeneratePublicKeyPEM()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pub.pem")
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadPublicKeyPEM(path)
	if err != nil || loaded != key {
		t.Fatalf("expected key to load back, got err %v", err)
	}

	if err := os.WriteFile(path, []byte("not pem"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPublicKeyPEM(path); err == nil {
		t.Fatalf("expected error for non-PEM file")
	}
}
