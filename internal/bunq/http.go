package bunq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Request headers understood by the bunq API.
const (
	HeaderAuthentication = "X-Bunq-Client-Authentication"
	HeaderRequestID      = "X-Bunq-Client-Request-Id"
	HeaderLanguage       = "X-Bunq-Language"
)

const (
	defaultUserAgent   = "BunqDashboard"
	defaultDescription = "Bunq Dashboard"
	maxErrorBody       = 4 << 10
)

// HTTPOptions configures the live data source.
type HTTPOptions struct {
	BaseURL           string
	APIKey            string
	PublicKey         string // PEM; generated on first handshake when empty
	DeviceDescription string
	PermittedIPs      []string
	UserAgent         string
	HTTPClient        *http.Client
	Timeout           time.Duration
}

// HTTPSource talks to the bunq API. Tokens live in the store; the resolved user id is cached
// in memory per session token.
type HTTPSource struct {
	opts      HTTPOptions
	store     tokenstore.Store
	client    *http.Client
	requestID func() string

	mu        sync.Mutex
	publicKey string
	userToken string
	userID    int64
}

// NewHTTPSource builds the live source.
func NewHTTPSource(opts HTTPOptions, store tokenstore.Store) *HTTPSource {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.DeviceDescription == "" {
		opts.DeviceDescription = defaultDescription
	}
	if len(opts.PermittedIPs) == 0 {
		opts.PermittedIPs = []string{"*"}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPSource{
		opts:      opts,
		store:     store,
		client:    client,
		requestID: uuid.NewString,
		publicKey: opts.PublicKey,
	}
}

type installationRequest struct {
	ClientPublicKey string `json:"client_public_key"`
}

type deviceServerRequest struct {
	Description  string   `json:"description"`
	Secret       string   `json:"secret"`
	PermittedIPs []string `json:"permitted_ips"`
}

type sessionServerRequest struct {
	Secret string `json:"secret"`
}

// Authenticate runs installation, device registration and session creation in order. Tokens
// persisted by completed steps are kept when a later step fails.
func (s *HTTPSource) Authenticate(ctx context.Context) error {
	apiKey := s.apiKey()
	if apiKey == "" {
		return authError("configuration", ErrMissingAPIKey)
	}
	publicKey, err := s.clientPublicKey()
	if err != nil {
		return authError("installation", err)
	}

	var installation domain.APIResponse[domain.TokenEnvelope]
	err = s.do(ctx, "installation", http.MethodPost, "/installation", s.credential(),
		installationRequest{ClientPublicKey: publicKey}, &installation)
	if err != nil {
		return authError("installation", err)
	}
	installationToken, err := handshakeToken(installation)
	if err != nil {
		return authError("installation", err)
	}
	if err := s.store.Set(tokenstore.KeyInstallationToken, installationToken); err != nil {
		return authError("installation", fmt.Errorf("persist token: %w", err))
	}

	device := deviceServerRequest{
		Description:  s.opts.DeviceDescription,
		Secret:       apiKey,
		PermittedIPs: s.opts.PermittedIPs,
	}
	if err := s.do(ctx, "device-server", http.MethodPost, "/device-server", installationToken, device, nil); err != nil {
		return authError("device-server", err)
	}

	var session domain.APIResponse[domain.TokenEnvelope]
	err = s.do(ctx, "session-server", http.MethodPost, "/session-server", installationToken,
		sessionServerRequest{Secret: apiKey}, &session)
	if err != nil {
		return authError("session-server", err)
	}
	sessionToken, err := handshakeToken(session)
	if err != nil {
		return authError("session-server", err)
	}
	if err := s.store.Set(tokenstore.KeySessionToken, sessionToken); err != nil {
		return authError("session-server", fmt.Errorf("persist token: %w", err))
	}

	for _, env := range session.Response {
		if id, ok := env.User().UserID(); ok {
			s.cacheUser(sessionToken, id)
			break
		}
	}
	return nil
}

// GetUserInfo returns the GET /user collection verbatim.
func (s *HTTPSource) GetUserInfo(ctx context.Context) ([]domain.UserEnvelope, error) {
	var res domain.APIResponse[domain.UserEnvelope]
	if err := s.do(ctx, "get user", http.MethodGet, "/user", s.credential(), nil, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Response), nil
}

func (s *HTTPSource) GetAccounts(ctx context.Context) ([]domain.MonetaryAccountEnvelope, error) {
	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	var res domain.APIResponse[domain.MonetaryAccountEnvelope]
	path := fmt.Sprintf("/user/%d/monetary-account", userID)
	if err := s.do(ctx, "get accounts", http.MethodGet, path, s.credential(), nil, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Response), nil
}

func (s *HTTPSource) GetTransactions(ctx context.Context, accountID int64) ([]domain.PaymentEnvelope, error) {
	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	var res domain.APIResponse[domain.PaymentEnvelope]
	path := fmt.Sprintf("/user/%d/monetary-account/%d/payment", userID, accountID)
	if err := s.do(ctx, "get transactions", http.MethodGet, path, s.credential(), nil, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Response), nil
}

// GetBalance reads the balance of the account detail. An account without a balance reports zero.
func (s *HTTPSource) GetBalance(ctx context.Context, accountID int64) (domain.Balance, error) {
	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return domain.Balance{}, err
	}
	var res domain.APIResponse[domain.MonetaryAccountEnvelope]
	path := fmt.Sprintf("/user/%d/monetary-account/%d", userID, accountID)
	if err := s.do(ctx, "get balance", http.MethodGet, path, s.credential(), nil, &res); err != nil {
		return domain.Balance{}, err
	}
	if len(res.Response) == 0 {
		return domain.Balance{}, &FetchError{Op: "get balance", Err: ErrEmptyResponse}
	}
	acc := res.Response[0].MonetaryAccountBank
	if acc == nil || acc.Balance == nil {
		return zeroBalance(), nil
	}
	return *acc.Balance, nil
}

// apiKey prefers the key the user entered over the configured one.
func (s *HTTPSource) apiKey() string {
	if key := tokenstore.Lookup(s.store, tokenstore.KeyAPIKey); key != "" {
		return key
	}
	return s.opts.APIKey
}

// credential is the session token once there is one, the API key before that.
func (s *HTTPSource) credential() string {
	if token := tokenstore.Lookup(s.store, tokenstore.KeySessionToken); token != "" {
		return token
	}
	return s.apiKey()
}

func (s *HTTPSource) clientPublicKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicKey != "" {
		return s.publicKey, nil
	}
	key, err := GeneratePublicKeyPEM()
	if err != nil {
		return "", err
	}
	s.publicKey = key
	return key, nil
}

func (s *HTTPSource) cacheUser(token string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userToken = token
	s.userID = id
}

// resolveUserID returns the id to scope account paths with, asking GET /user when the current
// session token has not been seen yet.
func (s *HTTPSource) resolveUserID(ctx context.Context) (int64, error) {
	token := tokenstore.Lookup(s.store, tokenstore.KeySessionToken)
	s.mu.Lock()
	if token != "" && token == s.userToken && s.userID != 0 {
		id := s.userID
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	users, err := s.GetUserInfo(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		if id, ok := u.UserID(); ok {
			s.cacheUser(token, id)
			return id, nil
		}
	}
	return 0, &FetchError{Op: "resolve user", Err: ErrNoUser}
}

type errorResponse struct {
	Error []struct {
		ErrorDescription string `json:"error_description"`
	} `json:"Error"`
}

func (s *HTTPSource) do(ctx context.Context, op, method, path, credential string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := jsonAPI.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set(HeaderLanguage, "en_US")
	req.Header.Set(HeaderRequestID, s.requestID())
	if credential != "" {
		req.Header.Set(HeaderAuthentication, credential)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: upstreamError(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := jsonAPI.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func upstreamError(body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var parsed errorResponse
	if err := jsonAPI.Unmarshal(raw, &parsed); err == nil && len(parsed.Error) > 0 && parsed.Error[0].ErrorDescription != "" {
		return errors.New(parsed.Error[0].ErrorDescription)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = "unexpected status"
	}
	return errors.New(msg)
}

// handshakeToken reads the token bunq places at Response[1].Token.token.
func handshakeToken(res domain.APIResponse[domain.TokenEnvelope]) (string, error) {
	if len(res.Response) < 2 || res.Response[1].Token == nil || res.Response[1].Token.Token == "" {
		return "", ErrMissingToken
	}
	return res.Response[1].Token.Token, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
