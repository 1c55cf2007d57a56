package bunq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vanshika/bunqdash/internal/config"
	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/generator"
	"github.com/vanshika/bunqdash/internal/metrics"
	"github.com/vanshika/bunqdash/internal/normalize"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

// Operation names used in logs, metrics and FetchError.Op.
const (
	OpAuthenticate    = "authenticate"
	OpGetUserInfo     = "get_user_info"
	OpGetAccounts     = "get_accounts"
	OpGetTransactions = "get_transactions"
	OpGetBalance      = "get_balance"
)

// AuthResult is the outcome of Authenticate. Err is set only when Success is false.
type AuthResult struct {
	Success bool
	Err     error
}

// Client is the single entry point the rest of the application uses to reach account data.
type Client struct {
	source  AccountDataSource
	store   tokenstore.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient wraps source. logger and m may be nil.
func NewClient(source AccountDataSource, store tokenstore.Store, logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		source:  source,
		store:   store,
		logger:  logger.With("component", "bunq"),
		metrics: m,
	}
}

// NewSource selects the data source described by cfg.
func NewSource(cfg config.BunqConfig, store tokenstore.Store) (AccountDataSource, error) {
	if cfg.Demo() {
		gen := generator.New(generator.DefaultConfig().WithSeed(cfg.DemoSeed))
		var delays Delays
		if cfg.DemoLatency {
			delays = DefaultDelays()
		}
		return NewMockSource(generator.NewFixtures(gen), store, delays), nil
	}

	var publicKey string
	if cfg.PublicKeyFile != "" {
		key, err := LoadPublicKeyPEM(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		publicKey = key
	}
	return NewHTTPSource(HTTPOptions{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		PublicKey:         publicKey,
		DeviceDescription: cfg.DeviceDescription,
		Timeout:           cfg.RequestTimeout,
	}, store), nil
}

// Demo reports whether the client serves fixtures.
func (c *Client) Demo() bool {
	_, ok := c.source.(*MockSource)
	return ok
}

// Authenticate acquires a session. It never returns an error; failures are reported in the result.
func (c *Client) Authenticate(ctx context.Context) AuthResult {
	err := c.source.Authenticate(ctx)
	c.metrics.ObserveUpstream(OpAuthenticate, err)
	if err != nil {
		if !errors.Is(err, ErrAuthenticationFailed) {
			err = authError("handshake", err)
		}
		c.logger.Error("authentication failed", "error", err)
		return AuthResult{Success: false, Err: err}
	}
	c.logger.Info("authenticated", "demo", c.Demo())
	return AuthResult{Success: true}
}

// GetUserInfo returns the raw user collection. Normalization is left to the caller.
func (c *Client) GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error) {
	users, err := c.source.GetUserInfo(ctx)
	if err = c.observe(OpGetUserInfo, err); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetAccounts(ctx context.Context) ([]domain.MonetaryAccountEnvelope, error) {
	accounts, err := c.source.GetAccounts(ctx)
	if err = c.observe(OpGetAccounts, err); err != nil {
		return nil, err
	}
	c.logger.Debug("fetched accounts", "count", len(accounts))
	return accounts, nil
}

func (c *Client) GetTransactions(ctx context.Context, accountID int64) ([]domain.PaymentEnvelope, error) {
	txs, err := c.source.GetTransactions(ctx, accountID)
	if err = c.observe(OpGetTransactions, err, "accountId", accountID); err != nil {
		return nil, err
	}
	c.logger.Debug("fetched transactions", "accountId", accountID, "count", len(txs))
	return txs, nil
}

func (c *Client) GetBalance(ctx context.Context, accountID int64) (domain.Balance, error) {
	balance, err := c.source.GetBalance(ctx, accountID)
	if err = c.observe(OpGetBalance, err, "accountId", accountID); err != nil {
		return domain.Balance{}, err
	}
	return balance, nil
}

// Logout forgets the session and installation tokens. The API key is kept.
func (c *Client) Logout() error {
	if err := c.store.Delete(tokenstore.KeySessionToken, tokenstore.KeyInstallationToken); err != nil {
		c.logger.Error("clearing tokens failed", "error", err)
		return fmt.Errorf("clear tokens: %w", err)
	}
	c.logger.Info("logged out")
	return nil
}

// HasSession reports whether a session token is persisted.
func (c *Client) HasSession() bool {
	return tokenstore.Lookup(c.store, tokenstore.KeySessionToken) != ""
}

// SetAPIKey persists a user-supplied API key; it takes precedence over the configured one.
func (c *Client) SetAPIKey(key string) error {
	if key == "" {
		return ErrMissingAPIKey
	}
	if err := c.store.Set(tokenstore.KeyAPIKey, key); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	return nil
}

// MapEnvelopeToAccount is normalize.Account, exposed for callers holding only the client.
func (c *Client) MapEnvelopeToAccount(env domain.MonetaryAccountEnvelope) domain.Account {
	return normalize.Account(env)
}

// observe records the call and turns any failure into a logged *FetchError.
func (c *Client) observe(op string, err error, attrs ...any) error {
	c.metrics.ObserveUpstream(op, err)
	if err == nil {
		return nil
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		err = &FetchError{Op: op, Err: err}
	}
	c.logger.Error("fetch failed", append([]any{"op", op, "error", err}, attrs...)...)
	return err
}
