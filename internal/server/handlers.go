package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vanshika/bunqdash/internal/auth"
	"github.com/vanshika/bunqdash/internal/bunq"
	"github.com/vanshika/bunqdash/internal/config"
	"github.com/vanshika/bunqdash/internal/domain"
	"github.com/vanshika/bunqdash/internal/normalize"
	"github.com/vanshika/bunqdash/internal/repository"
)

// CounterpartyReader answers counterparty rollups from the graph mirror.
type CounterpartyReader interface {
	TopCounterparties(ctx context.Context, accountID int64, limit int) ([]repository.CounterpartySummary, error)
}

// APIHandlers exposes the dashboard endpoints.
type APIHandlers struct {
	logger  *slog.Logger
	client  *bunq.Client
	session *auth.Session
	mirror  CounterpartyReader
}

// NewAPIHandlers constructs an APIHandlers instance. mirror may be nil when no graph is configured.
func NewAPIHandlers(logger *slog.Logger, client *bunq.Client, session *auth.Session, mirror CounterpartyReader) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		client:  client,
		session: session,
		mirror:  mirror,
	}
}

// Register mounts the handlers on r.
func (h *APIHandlers) Register(r *mux.Router) {
	r.HandleFunc("/mode", h.handleMode).Methods(http.MethodGet)
	r.HandleFunc("/auth/state", h.handleAuthState).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.handleLogout).Methods(http.MethodPost)

	data := r.NewRoute().Subrouter()
	data.Use(h.requireSession)
	data.HandleFunc("/accounts", h.handleAccounts).Methods(http.MethodGet)
	data.HandleFunc("/accounts/{id:[0-9]+}", h.handleAccount).Methods(http.MethodGet)
	data.HandleFunc("/accounts/{id:[0-9]+}/balance", h.handleBalance).Methods(http.MethodGet)
	data.HandleFunc("/accounts/{id:[0-9]+}/transactions", h.handleTransactions).Methods(http.MethodGet)
	data.HandleFunc("/accounts/{id:[0-9]+}/counterparties", h.handleCounterparties).Methods(http.MethodGet)
}

type modeResponse struct {
	Mode string `json:"mode"`
}

type loginRequest struct {
	APIKey string `json:"apiKey"`
}

// transactionView adds the incoming flag the dashboard colors amounts by.
type transactionView struct {
	domain.Transaction
	Incoming bool `json:"incoming"`
}

func (h *APIHandlers) handleMode(w http.ResponseWriter, _ *http.Request) {
	mode := config.ModeLive
	if h.client.Demo() {
		mode = config.ModeDemo
	}
	respondJSON(w, http.StatusOK, modeResponse{Mode: string(mode)})
}

func (h *APIHandlers) handleAuthState(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.session.State())
}

func (h *APIHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login request")
		return
	}
	if req.APIKey != "" && !h.client.Demo() {
		if err := h.client.SetAPIKey(req.APIKey); err != nil {
			h.logger.Error("storing api key failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store api key")
			return
		}
	}

	status := http.StatusOK
	if !h.session.Login(r.Context()) {
		status = http.StatusUnauthorized
	}
	respondJSON(w, status, h.session.State())
}

func (h *APIHandlers) handleLogout(w http.ResponseWriter, _ *http.Request) {
	h.session.Logout()
	respondJSON(w, http.StatusOK, h.session.State())
}

func (h *APIHandlers) handleAccounts(w http.ResponseWriter, r *http.Request) {
	envs, err := h.client.GetAccounts(r.Context())
	if err != nil {
		h.writeFetchError(w, err, "failed to fetch accounts")
		return
	}
	respondJSON(w, http.StatusOK, normalize.Accounts(envs))
}

func (h *APIHandlers) handleAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	envs, err := h.client.GetAccounts(r.Context())
	if err != nil {
		h.writeFetchError(w, err, "failed to fetch accounts")
		return
	}
	for _, acc := range normalize.Accounts(envs) {
		if acc.ID == id {
			respondJSON(w, http.StatusOK, acc)
			return
		}
	}
	writeError(w, http.StatusNotFound, "account not found")
}

func (h *APIHandlers) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	balance, err := h.client.GetBalance(r.Context(), id)
	if err != nil {
		h.writeFetchError(w, err, "failed to fetch balance")
		return
	}
	respondJSON(w, http.StatusOK, balance)
}

func (h *APIHandlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	envs, err := h.client.GetTransactions(r.Context(), id)
	if err != nil {
		h.writeFetchError(w, err, "failed to fetch transactions")
		return
	}
	txs := normalize.Transactions(envs)
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, transactionView{Transaction: tx, Incoming: tx.Incoming()})
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *APIHandlers) handleCounterparties(w http.ResponseWriter, r *http.Request) {
	if h.mirror == nil {
		writeError(w, http.StatusNotImplemented, "graph mirror is not configured")
		return
	}
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	summaries, err := h.mirror.TopCounterparties(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("counterparty rollup failed", "error", err, "accountId", id)
		writeError(w, http.StatusInternalServerError, "failed to load counterparties")
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (h *APIHandlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.session.IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeFetchError maps upstream rejections of the session to 401 and everything else to 502.
func (h *APIHandlers) writeFetchError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusBadGateway
	var fe *bunq.FetchError
	if errors.As(err, &fe) && (fe.Status == http.StatusUnauthorized || fe.Status == http.StatusForbidden) {
		status = http.StatusUnauthorized
	}
	writeError(w, status, msg)
}

func accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	err := jsonAPI.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
